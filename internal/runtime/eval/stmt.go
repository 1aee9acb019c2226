package eval

import (
	"github.com/meko-tech/jsengine/internal/ast"
	"github.com/meko-tech/jsengine/internal/runtime/env"
	"github.com/meko-tech/jsengine/internal/runtime/values"
)

// evalStatement dispatches over every *ast.Statement variant, returning
// a Completion for break/continue/return propagation and a Go error
// only for a guest throw.
func (it *Interpreter) evalStatement(s ast.Statement, scope *env.Environment) (Completion, error) {
	switch st := s.(type) {
	case *ast.Block:
		return it.evalBlock(st, scope)
	case *ast.ExpressionStatement:
		v, err := it.evalExpr(st.Expr, scope)
		if err != nil {
			return Completion{}, err
		}
		return normal(v), nil
	case *ast.VariableDeclaration:
		return it.evalVariableDeclaration(st, scope)
	case *ast.FunctionDeclaration:
		// Already bound by hoisting; nothing to do at the statement site.
		return normalUndefined, nil
	case *ast.ClassDeclaration:
		classVal, err := it.evalClass(st.Name, st.SuperClass, st.Body, scope)
		if err != nil {
			return Completion{}, err
		}
		scope.Declare(st.Name, env.SlotLet, true)
		scope.Initialize(st.Name, classVal)
		return normalUndefined, nil
	case *ast.If:
		return it.evalIf(st, scope)
	case *ast.For:
		return it.evalFor(st, scope, "")
	case *ast.ForIn:
		return it.evalForIn(st, scope, "")
	case *ast.ForOf:
		return it.evalForOf(st, scope, "")
	case *ast.While:
		return it.evalWhile(st, scope, "")
	case *ast.DoWhile:
		return it.evalDoWhile(st, scope, "")
	case *ast.Switch:
		return it.evalSwitch(st, scope)
	case *ast.Try:
		return it.evalTry(st, scope)
	case *ast.Throw:
		v, err := it.evalExpr(st.Arg, scope)
		if err != nil {
			return Completion{}, err
		}
		return Completion{}, Throw(v)
	case *ast.Return:
		var v values.Value = values.TheUndefined
		if st.Arg != nil {
			rv, err := it.evalExpr(st.Arg, scope)
			if err != nil {
				return Completion{}, err
			}
			v = rv
		}
		return returnSignal(v), nil
	case *ast.Break:
		return breakSignal(st.Label), nil
	case *ast.Continue:
		return continueSignal(st.Label), nil
	case *ast.Labeled:
		return it.evalLabeled(st, scope)
	case *ast.Empty:
		return normalUndefined, nil
	case *ast.Unknown:
		return it.evalUnknown(st.Raw, scope)
	}
	return Completion{}, it.NewThrow("SyntaxError", "Unsupported statement")
}

func (it *Interpreter) evalBlock(b *ast.Block, parent *env.Environment) (Completion, error) {
	scope := env.NewBlock(parent)
	hoistBlockFunctions(scope, b.Body)
	return it.evalStatements(b.Body, scope)
}

func (it *Interpreter) evalStatements(body []ast.Statement, scope *env.Environment) (Completion, error) {
	result := normalUndefined
	for _, s := range body {
		c, err := it.evalStatement(s, scope)
		if err != nil {
			return Completion{}, err
		}
		if c.Type != CompletionNormal {
			return c, nil
		}
		if c.Value != nil {
			result = c
		}
	}
	return result, nil
}

// hoistBlockFunctions binds function declarations written directly inside
// a block to that block's own scope (block-scoped function hoisting),
// distinct from hoistProgram/hoistFunctionBody's function-frame hoisting.
func hoistBlockFunctions(scope *env.Environment, body []ast.Statement) {
	for _, s := range body {
		if fd, ok := s.(*ast.FunctionDeclaration); ok {
			scope.Declare(fd.Name, env.SlotFunction, true)
		}
	}
}

func (it *Interpreter) evalVariableDeclaration(d *ast.VariableDeclaration, scope *env.Environment) (Completion, error) {
	for _, b := range d.Bindings {
		var v values.Value = values.TheUndefined
		if b.Init != nil {
			iv, err := it.evalExpr(b.Init, scope)
			if err != nil {
				return Completion{}, err
			}
			v = iv
		}
		kind := env.SlotLet
		switch d.Kind {
		case ast.VarVar:
			kind = env.SlotVar
		case ast.VarConst:
			kind = env.SlotConst
		}
		if err := it.bindPattern(scope, b.Target, v, kind); err != nil {
			return Completion{}, err
		}
	}
	return normalUndefined, nil
}

func (it *Interpreter) evalIf(s *ast.If, scope *env.Environment) (Completion, error) {
	cond, err := it.evalExpr(s.Cond, scope)
	if err != nil {
		return Completion{}, err
	}
	if ToBoolean(cond) {
		return it.evalStatement(s.Then, scope)
	}
	if s.Else != nil {
		return it.evalStatement(s.Else, scope)
	}
	return normalUndefined, nil
}

// loopResult interprets a body's completion in the context of a loop with
// the given label: (stop, completion-to-propagate, error).
func loopResult(c Completion, label string) (stop bool, out Completion) {
	switch c.Type {
	case CompletionBreak:
		if c.Label == "" || c.Label == label {
			return true, normalUndefined
		}
		return true, c
	case CompletionContinue:
		if c.Label == "" || c.Label == label {
			return false, normalUndefined
		}
		return true, c
	case CompletionReturn:
		return true, c
	}
	return false, normalUndefined
}

func (it *Interpreter) evalFor(s *ast.For, parent *env.Environment, label string) (Completion, error) {
	scope := env.NewBlock(parent)
	if s.Init != nil {
		if _, err := it.evalStatement(s.Init, scope); err != nil {
			return Completion{}, err
		}
	}
	for {
		if s.Cond != nil {
			cond, err := it.evalExpr(s.Cond, scope)
			if err != nil {
				return Completion{}, err
			}
			if !ToBoolean(cond) {
				break
			}
		}
		iter := env.NewBlock(scope)
		c, err := it.evalStatement(s.Body, iter)
		if err != nil {
			return Completion{}, err
		}
		if stop, out := loopResult(c, label); stop {
			return out, nil
		}
		if s.Update != nil {
			if _, err := it.evalExpr(s.Update, scope); err != nil {
				return Completion{}, err
			}
		}
	}
	return normalUndefined, nil
}

func (it *Interpreter) evalWhile(s *ast.While, scope *env.Environment, label string) (Completion, error) {
	for {
		cond, err := it.evalExpr(s.Cond, scope)
		if err != nil {
			return Completion{}, err
		}
		if !ToBoolean(cond) {
			break
		}
		c, err := it.evalStatement(s.Body, env.NewBlock(scope))
		if err != nil {
			return Completion{}, err
		}
		if stop, out := loopResult(c, label); stop {
			return out, nil
		}
	}
	return normalUndefined, nil
}

func (it *Interpreter) evalDoWhile(s *ast.DoWhile, scope *env.Environment, label string) (Completion, error) {
	for {
		c, err := it.evalStatement(s.Body, env.NewBlock(scope))
		if err != nil {
			return Completion{}, err
		}
		if stop, out := loopResult(c, label); stop {
			return out, nil
		}
		cond, err := it.evalExpr(s.Cond, scope)
		if err != nil {
			return Completion{}, err
		}
		if !ToBoolean(cond) {
			break
		}
	}
	return normalUndefined, nil
}

func (it *Interpreter) evalForIn(s *ast.ForIn, parent *env.Environment, label string) (Completion, error) {
	rv, err := it.evalExpr(s.Right, parent)
	if err != nil {
		return Completion{}, err
	}
	if values.IsNullish(rv) {
		return normalUndefined, nil
	}
	o, err := it.ToObject(rv)
	if err != nil {
		return Completion{}, err
	}
	for _, name := range it.EnumerableStringKeys(o) {
		iter := env.NewBlock(parent)
		if s.Kind != "" {
			kind := env.SlotLet
			if s.Kind == ast.VarVar {
				kind = env.SlotVar
			} else if s.Kind == ast.VarConst {
				kind = env.SlotConst
			}
			if err := it.bindPattern(iter, s.Left, values.String(name), kind); err != nil {
				return Completion{}, err
			}
		} else {
			if err := it.assignPattern(iter, s.Left, values.String(name)); err != nil {
				return Completion{}, err
			}
		}
		c, err := it.evalStatement(s.Body, iter)
		if err != nil {
			return Completion{}, err
		}
		if stop, out := loopResult(c, label); stop {
			return out, nil
		}
	}
	return normalUndefined, nil
}

func (it *Interpreter) evalForOf(s *ast.ForOf, parent *env.Environment, label string) (Completion, error) {
	rv, err := it.evalExpr(s.Right, parent)
	if err != nil {
		return Completion{}, err
	}
	bodyFn := func(val values.Value) (Completion, error) {
		if s.IsAwait {
			// for-await-of: wrap each value as though awaited. The CPS
			// transform does not rewrite for-await-of (it reports
			// *Unsupported and the un-rewritten tree is evaluated), so
			// each value is awaited synchronously here, draining the
			// microtask queue inline.
			resolved, err := it.awaitSynchronously(val)
			if err != nil {
				return Completion{}, err
			}
			val = resolved
		}
		iter := env.NewBlock(parent)
		if s.Kind != "" {
			kind := env.SlotLet
			if s.Kind == ast.VarVar {
				kind = env.SlotVar
			} else if s.Kind == ast.VarConst {
				kind = env.SlotConst
			}
			if err := it.bindPattern(iter, s.Left, val, kind); err != nil {
				return Completion{}, err
			}
		} else {
			if err := it.assignPattern(iter, s.Left, val); err != nil {
				return Completion{}, err
			}
		}
		return it.evalStatement(s.Body, iter)
	}
	return it.forEachOf(rv, bodyFn)
}

func (it *Interpreter) evalSwitch(s *ast.Switch, parent *env.Environment) (Completion, error) {
	disc, err := it.evalExpr(s.Disc, parent)
	if err != nil {
		return Completion{}, err
	}
	scope := env.NewBlock(parent)
	matched := -1
	defaultIdx := -1
	for i, c := range s.Cases {
		if c.Test == nil {
			defaultIdx = i
			continue
		}
		tv, err := it.evalExpr(c.Test, scope)
		if err != nil {
			return Completion{}, err
		}
		if StrictEquals(disc, tv) {
			matched = i
			break
		}
	}
	if matched == -1 {
		matched = defaultIdx
	}
	if matched == -1 {
		return normalUndefined, nil
	}
	for i := matched; i < len(s.Cases); i++ {
		c, err := it.evalStatements(s.Cases[i].Body, scope)
		if err != nil {
			return Completion{}, err
		}
		if c.Type == CompletionBreak && c.Label == "" {
			return normalUndefined, nil
		}
		if c.Type != CompletionNormal {
			return c, nil
		}
	}
	return normalUndefined, nil
}

func (it *Interpreter) evalTry(s *ast.Try, parent *env.Environment) (Completion, error) {
	runFinally := func(c Completion, err error) (Completion, error) {
		if s.Finally == nil {
			return c, err
		}
		fc, ferr := it.evalBlock(s.Finally, parent)
		if ferr != nil {
			return Completion{}, ferr
		}
		if fc.Type != CompletionNormal {
			// The finally block's own completion overrides try/catch's.
			return fc, nil
		}
		return c, err
	}

	c, err := it.evalBlock(s.Block, parent)
	if err == nil {
		return runFinally(c, nil)
	}
	tv, ok := err.(*ThrownValue)
	if !ok || s.CatchBody == nil {
		return runFinally(Completion{}, err)
	}
	catchScope := env.NewBlock(parent)
	if s.CatchParam != nil {
		if err := it.bindPattern(catchScope, s.CatchParam, tv.Value, env.SlotLet); err != nil {
			return runFinally(Completion{}, err)
		}
	}
	hoistBlockFunctions(catchScope, s.CatchBody.Body)
	cc, cerr := it.evalStatements(s.CatchBody.Body, catchScope)
	return runFinally(cc, cerr)
}

func (it *Interpreter) evalLabeled(s *ast.Labeled, scope *env.Environment) (Completion, error) {
	var c Completion
	var err error
	switch body := s.Body.(type) {
	case *ast.For:
		c, err = it.evalFor(body, scope, s.Label)
	case *ast.ForIn:
		c, err = it.evalForIn(body, scope, s.Label)
	case *ast.ForOf:
		c, err = it.evalForOf(body, scope, s.Label)
	case *ast.While:
		c, err = it.evalWhile(body, scope, s.Label)
	case *ast.DoWhile:
		c, err = it.evalDoWhile(body, scope, s.Label)
	default:
		c, err = it.evalStatement(s.Body, scope)
	}
	if err != nil {
		return Completion{}, err
	}
	if c.Type == CompletionBreak && c.Label == s.Label {
		return normalUndefined, nil
	}
	return c, nil
}

// evalUnknown interprets a raw, untyped ir.Cell statement the typed
// builder declined to translate. This path is a safety net, not a
// primary execution strategy: every
// shape internal/astbuilder recognizes never reaches here. The cell is
// logged at Warn and otherwise treated as a no-op: nothing in it is
// evaluated, and the statement completes normally with undefined.
func (it *Interpreter) evalUnknown(raw interface{ String() string }, scope *env.Environment) (Completion, error) {
	it.Log.WithField("cell", raw.String()).Warn("evaluating unrecognized IR shape as a no-op")
	return normalUndefined, nil
}
