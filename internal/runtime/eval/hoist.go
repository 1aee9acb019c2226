package eval

import (
	"github.com/meko-tech/jsengine/internal/ast"
	"github.com/meko-tech/jsengine/internal/runtime/env"
)

// hoistProgram and hoistFunctionBody implement the scoping hoisting
// pass: before a program or function body runs a single
// statement, every `var` name anywhere in it (including inside nested
// blocks, but not nested functions) is declared undefined at the
// function/program scope, and every top-level `function` declaration is
// declared and bound to its closure immediately - which is why
// functions can be called from code written before their declaration
// while `let`/`const` cannot.
func hoistProgram(scope *env.Environment, body []ast.Statement) {
	hoistBody(scope, body)
}

func hoistFunctionBody(scope *env.Environment, body []ast.Statement) {
	hoistBody(scope, body)
}

func hoistBody(scope *env.Environment, body []ast.Statement) {
	for _, s := range body {
		hoistVars(scope, s)
	}
	for _, s := range body {
		if fd, ok := s.(*ast.FunctionDeclaration); ok {
			scope.Declare(fd.Name, env.SlotFunction, true)
		}
	}
}

// hoistVars walks s for `var` declarations and nested block/control
// statements (but never descends into a nested function/class body,
// whose own vars belong to that function's scope instead).
func hoistVars(scope *env.Environment, s ast.Statement) {
	switch st := s.(type) {
	case *ast.VariableDeclaration:
		if st.Kind == ast.VarVar {
			for _, b := range st.Bindings {
				hoistPattern(scope, b.Target)
			}
		}
	case *ast.Block:
		for _, inner := range st.Body {
			hoistVars(scope, inner)
		}
	case *ast.If:
		hoistVars(scope, st.Then)
		if st.Else != nil {
			hoistVars(scope, st.Else)
		}
	case *ast.For:
		if init, ok := st.Init.(*ast.VariableDeclaration); ok {
			hoistVars(scope, init)
		}
		hoistVars(scope, st.Body)
	case *ast.ForIn:
		if st.Kind == ast.VarVar {
			hoistPattern(scope, st.Left)
		}
		hoistVars(scope, st.Body)
	case *ast.ForOf:
		if st.Kind == ast.VarVar {
			hoistPattern(scope, st.Left)
		}
		hoistVars(scope, st.Body)
	case *ast.While:
		hoistVars(scope, st.Body)
	case *ast.DoWhile:
		hoistVars(scope, st.Body)
	case *ast.Switch:
		for _, c := range st.Cases {
			for _, inner := range c.Body {
				hoistVars(scope, inner)
			}
		}
	case *ast.Try:
		for _, inner := range st.Block.Body {
			hoistVars(scope, inner)
		}
		if st.CatchBody != nil {
			for _, inner := range st.CatchBody.Body {
				hoistVars(scope, inner)
			}
		}
		if st.Finally != nil {
			for _, inner := range st.Finally.Body {
				hoistVars(scope, inner)
			}
		}
	case *ast.Labeled:
		hoistVars(scope, st.Body)
	}
}

func hoistPattern(scope *env.Environment, p ast.Pattern) {
	switch pp := p.(type) {
	case *ast.IdentifierPattern:
		scope.DeclareVar(pp.Name)
	case *ast.ArrayPattern:
		for _, el := range pp.Elements {
			if el != nil {
				hoistPattern(scope, el)
			}
		}
		if pp.Rest != nil {
			hoistPattern(scope, pp.Rest)
		}
	case *ast.ObjectPattern:
		for _, prop := range pp.Properties {
			hoistPattern(scope, prop.Value)
		}
		if pp.Rest != nil {
			hoistPattern(scope, pp.Rest)
		}
	case *ast.AssignmentPattern:
		hoistPattern(scope, pp.Target)
	}
}
