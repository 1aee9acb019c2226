package eval

import (
	"github.com/meko-tech/jsengine/internal/ast"
	"github.com/meko-tech/jsengine/internal/runtime/env"
	"github.com/meko-tech/jsengine/internal/runtime/values"
)

// Call implements the Call internal method. this has already been
// resolved by the caller (plain call, method call, or explicitly via
// Function.prototype call/apply/bind).
func (it *Interpreter) Call(fn *values.Object, this values.Value, args []values.Value) (values.Value, error) {
	fd := fn.FunctionData()
	if fd == nil {
		return nil, it.NewThrow("TypeError", "value is not a function")
	}
	if fd.BoundTarget != nil {
		return it.Call(fd.BoundTarget, fd.BoundThis, append(append([]values.Value(nil), fd.BoundArgs...), args...))
	}
	if fd.Native != nil {
		if err := it.pushFrame(fd.Name, 0, 0); err != nil {
			return nil, err
		}
		defer it.popFrame()
		return fd.Native(this, args)
	}
	if fd.Kind == values.FuncGenerator {
		return it.makeGeneratorObject(fn, fd, this, args), nil
	}
	return it.callUserFunction(fn, fd, this, args)
}

func (it *Interpreter) callUserFunction(fn *values.Object, fd *values.FunctionData, this values.Value, args []values.Value) (values.Value, error) {
	if err := it.pushFrame(fd.Name, 0, 0); err != nil {
		return nil, err
	}
	defer it.popFrame()

	closureEnv, _ := fd.Closure.(*env.Environment)

	var scope *env.Environment
	if fd.Kind == values.FuncArrow {
		scope = env.NewArrowScope(closureEnv)
	} else {
		boundThis := this
		if values.IsNullish(boundThis) && !it.Options.StrictByDefault {
			boundThis = it.Realm.Global
		}
		argsObj := it.makeArgumentsObject(args)
		scope = env.NewFunctionScope(closureEnv, boundThis, argsObj)
		if fd.Name != "" {
			// A named function expression can refer to itself by name from
			// within its own body even when not otherwise bound in scope.
			scope.Declare(fd.Name, env.SlotConst, true)
			scope.Initialize(fd.Name, fn)
		}
	}

	if err := it.bindParams(scope, fd.Params, fd.RestParam, args); err != nil {
		return nil, err
	}

	if fd.ArrowExprBody != nil {
		return it.evalExpr(fd.ArrowExprBody, scope)
	}

	hoistFunctionBody(scope, fd.Body.Body)
	for _, stmt := range fd.Body.Body {
		c, err := it.evalStatement(stmt, scope)
		if err != nil {
			return nil, err
		}
		if c.Type == CompletionReturn {
			return c.Value, nil
		}
	}
	return values.TheUndefined, nil
}

func (it *Interpreter) makeArgumentsObject(args []values.Value) *values.Object {
	o := values.NewObject(it.Realm.ObjectProto)
	o.Class = "Arguments"
	for i, a := range args {
		o.SetElement(uint32(i), a)
	}
	o.DefineOwn(values.StringKey("length"), &values.PropertyDescriptor{Value: values.Number(len(args)), Writable: true, Configurable: true})
	return o
}

// bindParams binds fd's declared parameters (with defaults and
// destructuring) and the rest parameter, if any, against args. Defaults
// apply only when the bound value is undefined.
func (it *Interpreter) bindParams(scope *env.Environment, params []ast.Pattern, rest ast.Pattern, args []values.Value) error {
	for i, p := range params {
		var v values.Value = values.TheUndefined
		if i < len(args) {
			v = args[i]
		}
		if err := it.bindPattern(scope, p, v, env.SlotParam); err != nil {
			return err
		}
	}
	if rest != nil {
		restArr := values.NewArray(it.Realm.ArrayProto, 0)
		for i := len(params); i < len(args); i++ {
			restArr.AppendElement(args[i])
		}
		if err := it.bindPattern(scope, rest, restArr, env.SlotParam); err != nil {
			return err
		}
	}
	return nil
}

// Construct implements the Construct internal method for `new F(...)`.
func (it *Interpreter) Construct(fn *values.Object, args []values.Value) (values.Value, error) {
	fd := fn.FunctionData()
	if fd == nil {
		return nil, it.NewThrow("TypeError", "value is not a constructor")
	}
	if fd.NotConstructible {
		return nil, it.NewThrow("TypeError", "%s is not a constructor", fd.Name)
	}
	if fd.BoundTarget != nil {
		return it.Construct(fd.BoundTarget, append(append([]values.Value(nil), fd.BoundArgs...), args...))
	}
	if fd.NativeConstruct != nil {
		return fd.NativeConstruct(args)
	}

	proto := it.Realm.ObjectProto
	if d, ok := fn.GetOwn(values.StringKey("prototype")); ok {
		if p, ok := d.Value.(*values.Object); ok {
			proto = p
		}
	}
	inst := values.NewObject(proto)

	var result values.Value
	var err error
	if fd.Native != nil {
		result, err = fd.Native(inst, args)
	} else {
		result, err = it.callUserFunction(fn, fd, inst, args)
	}
	if err != nil {
		return nil, err
	}
	if ro, ok := result.(*values.Object); ok {
		return ro, nil
	}
	return inst, nil
}

// callExpression invokes an already-evaluated callee with the `this`
// value the call site resolved (the receiver object for a method call,
// undefined otherwise), throwing a TypeError if fn is not callable - the
// shared final step of the evaluator's *ast.Call and tagged-template
// handling.
func (it *Interpreter) callExpression(fn values.Value, this values.Value, args []values.Value) (values.Value, error) {
	o, ok := fn.(*values.Object)
	if !ok || !o.IsCallable() {
		return nil, it.NewThrow("TypeError", "%s is not a function", describeForError(fn))
	}
	return it.Call(o, this, args)
}

func describeForError(v values.Value) string {
	if v == nil {
		return "value"
	}
	return v.String()
}
