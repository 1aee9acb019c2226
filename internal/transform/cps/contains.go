package cps

import "github.com/meko-tech/jsengine/internal/ast"

// containsAwaitStmt reports whether s syntactically contains an `await`
// expression that belongs to the enclosing function - it does not
// descend into nested function/arrow/class-member bodies, since those
// introduce their own (independently rewritten) await scope.
func containsAwaitStmt(s ast.Statement) bool {
	if s == nil {
		return false
	}
	switch n := s.(type) {
	case *ast.Block:
		for _, st := range n.Body {
			if containsAwaitStmt(st) {
				return true
			}
		}
	case *ast.ExpressionStatement:
		return containsAwaitExpr(n.Expr)
	case *ast.VariableDeclaration:
		for _, b := range n.Bindings {
			if b.Init != nil && containsAwaitExpr(b.Init) {
				return true
			}
		}
	case *ast.If:
		return containsAwaitExpr(n.Cond) || containsAwaitStmt(n.Then) || containsAwaitStmt(n.Else)
	case *ast.For:
		return containsAwaitStmt(n.Init) || (n.Cond != nil && containsAwaitExpr(n.Cond)) ||
			(n.Update != nil && containsAwaitExpr(n.Update)) || containsAwaitStmt(n.Body)
	case *ast.ForIn:
		return containsAwaitExpr(n.Right) || containsAwaitStmt(n.Body)
	case *ast.ForOf:
		return n.IsAwait || containsAwaitExpr(n.Right) || containsAwaitStmt(n.Body)
	case *ast.While:
		return containsAwaitExpr(n.Cond) || containsAwaitStmt(n.Body)
	case *ast.DoWhile:
		return containsAwaitExpr(n.Cond) || containsAwaitStmt(n.Body)
	case *ast.Switch:
		if containsAwaitExpr(n.Disc) {
			return true
		}
		for _, c := range n.Cases {
			if c.Test != nil && containsAwaitExpr(c.Test) {
				return true
			}
			for _, st := range c.Body {
				if containsAwaitStmt(st) {
					return true
				}
			}
		}
	case *ast.Try:
		if containsAwaitStmt(n.Block) {
			return true
		}
		if n.CatchBody != nil && containsAwaitStmt(n.CatchBody) {
			return true
		}
		return n.Finally != nil && containsAwaitStmt(n.Finally)
	case *ast.Throw:
		return containsAwaitExpr(n.Arg)
	case *ast.Return:
		return n.Arg != nil && containsAwaitExpr(n.Arg)
	case *ast.Labeled:
		return containsAwaitStmt(n.Body)
	}
	return false
}

// containsAwaitExpr is containsAwaitStmt's expression-level counterpart;
// it likewise does not descend into nested function-like expressions.
func containsAwaitExpr(e ast.Expression) bool {
	if e == nil {
		return false
	}
	switch n := e.(type) {
	case *ast.Await:
		return true
	case *ast.Binary:
		return containsAwaitExpr(n.Left) || containsAwaitExpr(n.Right)
	case *ast.Logical:
		return containsAwaitExpr(n.Left) || containsAwaitExpr(n.Right)
	case *ast.Unary:
		return containsAwaitExpr(n.Arg)
	case *ast.Update:
		return containsAwaitExpr(n.Arg)
	case *ast.Conditional:
		return containsAwaitExpr(n.Cond) || containsAwaitExpr(n.Then) || containsAwaitExpr(n.Else)
	case *ast.Sequence:
		for _, e := range n.Exprs {
			if containsAwaitExpr(e) {
				return true
			}
		}
	case *ast.Assignment:
		return containsAwaitExpr(n.Value)
	case *ast.Call:
		if containsAwaitExpr(n.Callee) {
			return true
		}
		for _, a := range n.Args {
			if containsAwaitExpr(a) {
				return true
			}
		}
	case *ast.New:
		if containsAwaitExpr(n.Callee) {
			return true
		}
		for _, a := range n.Args {
			if containsAwaitExpr(a) {
				return true
			}
		}
	case *ast.Member:
		return containsAwaitExpr(n.Object) || (n.Computed && containsAwaitExpr(n.Property))
	case *ast.ArrayExpr:
		for _, el := range n.Elements {
			if containsAwaitExpr(el) {
				return true
			}
		}
	case *ast.ObjectExpr:
		for _, p := range n.Properties {
			if containsAwaitExpr(p.Value) {
				return true
			}
		}
	case *ast.Spread:
		return containsAwaitExpr(n.Arg)
	case *ast.Template:
		for _, e := range n.Expressions {
			if containsAwaitExpr(e) {
				return true
			}
		}
	case *ast.TaggedTemplate:
		return containsAwaitExpr(n.Quasi)
	}
	return false
}

// containsTopLevelAwait reports an await directly in the program body,
// outside any function declaration/expression/arrow.
func containsTopLevelAwait(stmts []ast.Statement) bool {
	for _, s := range stmts {
		if containsAwaitStmt(s) {
			return true
		}
	}
	return false
}
