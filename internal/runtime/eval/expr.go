package eval

import (
	"math"
	"strings"

	"github.com/meko-tech/jsengine/internal/ast"
	"github.com/meko-tech/jsengine/internal/runtime/env"
	"github.com/meko-tech/jsengine/internal/runtime/values"
)

// evalExpr dispatches over every *ast.Expression variant.
func (it *Interpreter) evalExpr(e ast.Expression, scope *env.Environment) (values.Value, error) {
	switch ex := e.(type) {
	case *ast.Literal:
		return evalLiteral(ex)
	case *ast.Identifier:
		if ex.Name == "undefined" && !scope.Has("undefined") {
			return values.TheUndefined, nil
		}
		v, err := scope.Get(ex.Name)
		if err != nil {
			return nil, asGuestError(err)
		}
		return v, nil
	case *ast.ThisExpr:
		return scope.This(), nil
	case *ast.SuperExpr:
		// Bare `super` only appears as the object of a Member/Call the
		// evaluator special-cases below; reaching here directly is a
		// malformed tree.
		return nil, it.NewThrow("SyntaxError", "'super' keyword is only valid inside a class")
	case *ast.ArrayExpr:
		return it.evalArrayExpr(ex, scope)
	case *ast.ObjectExpr:
		return it.evalObjectExpr(ex, scope)
	case *ast.FunctionExpr:
		return it.makeFunctionExpr(ex, scope), nil
	case *ast.Arrow:
		return it.makeArrow(ex, scope), nil
	case *ast.ClassExpr:
		return it.evalClass(ex.Name, ex.SuperClass, ex.Body, scope)
	case *ast.Member:
		return it.evalMemberExpr(ex, scope)
	case *ast.Call:
		return it.evalCall(ex, scope)
	case *ast.New:
		return it.evalNew(ex, scope)
	case *ast.Unary:
		return it.evalUnary(ex, scope)
	case *ast.Update:
		return it.evalUpdate(ex, scope)
	case *ast.Binary:
		return it.evalBinary(ex, scope)
	case *ast.Logical:
		return it.evalLogical(ex, scope)
	case *ast.Assignment:
		return it.evalAssignment(ex, scope)
	case *ast.Conditional:
		cond, err := it.evalExpr(ex.Cond, scope)
		if err != nil {
			return nil, err
		}
		if ToBoolean(cond) {
			return it.evalExpr(ex.Then, scope)
		}
		return it.evalExpr(ex.Else, scope)
	case *ast.Sequence:
		var v values.Value = values.TheUndefined
		for _, inner := range ex.Exprs {
			rv, err := it.evalExpr(inner, scope)
			if err != nil {
				return nil, err
			}
			v = rv
		}
		return v, nil
	case *ast.Template:
		return it.evalTemplate(ex, scope)
	case *ast.TaggedTemplate:
		return it.evalTaggedTemplate(ex, scope)
	case *ast.Spread:
		// A bare spread outside an argument/array/object-literal position
		// is malformed; evalArguments/evalArrayExpr handle the real cases.
		return it.evalExpr(ex.Arg, scope)
	case *ast.Yield:
		return it.evalYield(ex, scope)
	case *ast.Await:
		v, err := it.evalExpr(ex.Arg, scope)
		if err != nil {
			return nil, err
		}
		return it.awaitSynchronously(v)
	case *ast.RegExpLit:
		return it.makeRegExp(ex.Pattern, ex.Flags)
	case *ast.Unknown:
		return it.evalUnknownExpr(ex.Raw, scope)
	}
	return nil, it.NewThrow("SyntaxError", "Unsupported expression")
}

func evalLiteral(l *ast.Literal) (values.Value, error) {
	switch l.Kind {
	case ast.LitNumber:
		return values.Number(l.Value.(float64)), nil
	case ast.LitString:
		return values.String(l.Value.(string)), nil
	case ast.LitBigInt:
		bi, ok := values.ParseBigInt(l.Value.(string))
		if !ok {
			return nil, &ThrownValue{Value: values.String("invalid BigInt literal")}
		}
		return bi, nil
	case ast.LitBool:
		return values.NewBoolean(l.Value.(bool)), nil
	case ast.LitNull:
		return values.TheNull, nil
	case ast.LitUndefined:
		return values.TheUndefined, nil
	}
	return values.TheUndefined, nil
}

// evalArguments evaluates a call/new/array-literal argument list,
// expanding any *ast.Spread entries in place.
func (it *Interpreter) evalArguments(exprs []ast.Expression, scope *env.Environment) ([]values.Value, error) {
	out := make([]values.Value, 0, len(exprs))
	for _, a := range exprs {
		if sp, ok := a.(*ast.Spread); ok {
			v, err := it.evalExpr(sp.Arg, scope)
			if err != nil {
				return nil, err
			}
			items, err := it.iterateToSlice(v)
			if err != nil {
				return nil, err
			}
			out = append(out, items...)
			continue
		}
		v, err := it.evalExpr(a, scope)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (it *Interpreter) evalArrayExpr(ex *ast.ArrayExpr, scope *env.Environment) (values.Value, error) {
	arr := values.NewArray(it.Realm.ArrayProto, 0)
	idx := uint32(0)
	for _, el := range ex.Elements {
		if el == nil {
			idx++
			continue
		}
		if sp, ok := el.(*ast.Spread); ok {
			v, err := it.evalExpr(sp.Arg, scope)
			if err != nil {
				return nil, err
			}
			items, err := it.iterateToSlice(v)
			if err != nil {
				return nil, err
			}
			for _, item := range items {
				arr.SetElement(idx, item)
				idx++
			}
			continue
		}
		v, err := it.evalExpr(el, scope)
		if err != nil {
			return nil, err
		}
		arr.SetElement(idx, v)
		idx++
	}
	if idx > arr.Length() {
		arr.SetLength(idx)
	}
	return arr, nil
}

func (it *Interpreter) evalObjectExpr(ex *ast.ObjectExpr, scope *env.Environment) (values.Value, error) {
	obj := values.NewObject(it.Realm.ObjectProto)
	for _, prop := range ex.Properties {
		if prop.Kind == "spread" {
			v, err := it.evalExpr(prop.Value, scope)
			if err != nil {
				return nil, err
			}
			if src, ok := v.(*values.Object); ok {
				for _, k := range src.OwnKeys() {
					d, _ := src.GetOwn(k)
					if !d.Enumerable {
						continue
					}
					pv, err := it.getProperty(src, k)
					if err != nil {
						return nil, err
					}
					obj.DefineOwn(k, values.DataProperty(pv))
				}
			}
			continue
		}
		key, err := it.resolvePropertyKey(prop.Key, prop.Computed, scope)
		if err != nil {
			return nil, err
		}
		switch prop.Kind {
		case "get", "set":
			fnExpr := prop.Value.(*ast.FunctionExpr)
			fn := it.makeFunctionExpr(fnExpr, scope)
			fn.FunctionData().HomeObject = obj
			existing, _ := obj.GetOwn(key)
			desc := &values.PropertyDescriptor{IsAccessor: true, Enumerable: true, Configurable: true}
			if existing != nil && existing.IsAccessor {
				desc.Get, desc.Set = existing.Get, existing.Set
			}
			if prop.Kind == "get" {
				desc.Get = fn
			} else {
				desc.Set = fn
			}
			obj.DefineOwn(key, desc)
		case "method":
			fnExpr := prop.Value.(*ast.FunctionExpr)
			fn := it.makeFunctionExpr(fnExpr, scope)
			fn.FunctionData().Kind = values.FuncMethod
			fn.FunctionData().NotConstructible = true
			fn.FunctionData().HomeObject = obj
			obj.DefineOwn(key, &values.PropertyDescriptor{Value: fn, Writable: true, Enumerable: true, Configurable: true})
		default:
			v, err := it.evalExpr(prop.Value, scope)
			if err != nil {
				return nil, err
			}
			obj.DefineOwn(key, &values.PropertyDescriptor{Value: v, Writable: true, Enumerable: true, Configurable: true})
		}
	}
	return obj, nil
}

func (it *Interpreter) makeFunctionExpr(fx *ast.FunctionExpr, scope *env.Environment) *values.Object {
	kind := values.FuncNormal
	if fx.IsAsync && fx.IsGenerator {
		kind = values.FuncGenerator // async generators share the generator machinery
	} else if fx.IsAsync {
		kind = values.FuncAsync
	} else if fx.IsGenerator {
		kind = values.FuncGenerator
	}
	fd := &values.FunctionData{
		Kind: kind, Name: fx.Name, Params: fx.Params, RestParam: fx.RestParam,
		Body: fx.Body, Closure: scope, Length: arity(fx.Params),
		NotConstructible: kind == values.FuncGenerator || kind == values.FuncAsync,
	}
	return values.NewFunctionObject(it.Realm.FunctionProto, fd, true, it.Realm.ObjectProto)
}

func (it *Interpreter) makeArrow(ax *ast.Arrow, scope *env.Environment) *values.Object {
	fd := &values.FunctionData{
		Kind: values.FuncArrow, Params: ax.Params, RestParam: ax.RestParam,
		Closure: scope, Length: arity(ax.Params), NotConstructible: true,
	}
	if b, ok := ax.Body.(*ast.Block); ok {
		fd.Body = b
	} else {
		fd.ArrowExprBody = ax.Body.(ast.Expression)
	}
	return values.NewFunctionObject(it.Realm.FunctionProto, fd, false, nil)
}

func arity(params []ast.Pattern) int {
	n := 0
	for _, p := range params {
		if _, ok := p.(*ast.AssignmentPattern); ok {
			break
		}
		n++
	}
	return n
}

func (it *Interpreter) evalMemberExpr(m *ast.Member, scope *env.Environment) (values.Value, error) {
	if _, ok := m.Object.(*ast.SuperExpr); ok {
		home := currentHomeObject(scope)
		if home == nil || home.Proto == nil {
			return values.TheUndefined, nil
		}
		key, err := it.memberKey(m, scope)
		if err != nil {
			return nil, err
		}
		return it.getProperty(home.Proto, key)
	}
	obj, err := it.evalExpr(m.Object, scope)
	if err != nil {
		return nil, err
	}
	if m.Optional && values.IsNullish(obj) {
		return values.TheUndefined, nil
	}
	key, err := it.memberKey(m, scope)
	if err != nil {
		return nil, err
	}
	return it.GetMember(obj, key)
}

// currentHomeObject is a placeholder resolved through the nearest
// function-scope frame's stored home object; methods install it via a
// reserved binding name so `super` can find the object it was defined on
// without threading an extra parameter through every evalExpr call.
func currentHomeObject(scope *env.Environment) *values.Object {
	if scope.Has(homeObjectBinding) {
		v, err := scope.Get(homeObjectBinding)
		if err == nil {
			if o, ok := v.(*values.Object); ok {
				return o
			}
		}
	}
	return nil
}

const homeObjectBinding = "%homeObject"

func (it *Interpreter) evalCall(c *ast.Call, scope *env.Environment) (values.Value, error) {
	if sup, ok := c.Callee.(*ast.SuperExpr); ok {
		_ = sup
		return it.evalSuperCall(c, scope)
	}
	if id, ok := c.Callee.(*ast.Identifier); ok && id.Name == "eval" {
		args, err := it.evalArguments(c.Args, scope)
		if err != nil {
			return nil, err
		}
		src, ok := firstArgOr(args, values.TheUndefined).(values.String)
		if !ok {
			return firstArgOr(args, values.TheUndefined), nil
		}
		// A bare `eval(...)` call site is a direct eval: declarations
		// introduced by the evaluated text land in scope, the caller's
		// own lexical frame.
		return it.EvalSource(string(src), scope, true)
	}
	var this values.Value = values.TheUndefined
	var calleeVal values.Value
	var err error
	if m, ok := c.Callee.(*ast.Member); ok {
		if _, isSuper := m.Object.(*ast.SuperExpr); isSuper {
			home := currentHomeObject(scope)
			this = scope.This()
			key, kerr := it.memberKey(m, scope)
			if kerr != nil {
				return nil, kerr
			}
			if home == nil || home.Proto == nil {
				return nil, it.NewThrow("TypeError", "'super' keyword is only valid inside a class")
			}
			calleeVal, err = it.getProperty(home.Proto, key)
		} else {
			objVal, oerr := it.evalExpr(m.Object, scope)
			if oerr != nil {
				return nil, oerr
			}
			if m.Optional && values.IsNullish(objVal) {
				return values.TheUndefined, nil
			}
			key, kerr := it.memberKey(m, scope)
			if kerr != nil {
				return nil, kerr
			}
			this = objVal
			calleeVal, err = it.GetMember(objVal, key)
		}
	} else {
		calleeVal, err = it.evalExpr(c.Callee, scope)
	}
	if err != nil {
		return nil, err
	}
	if c.Optional && values.IsNullish(calleeVal) {
		return values.TheUndefined, nil
	}
	args, err := it.evalArguments(c.Args, scope)
	if err != nil {
		return nil, err
	}
	return it.callExpression(calleeVal, this, args)
}

func (it *Interpreter) evalSuperCall(c *ast.Call, scope *env.Environment) (values.Value, error) {
	if !scope.Has(superCtorBinding) {
		return nil, it.NewThrow("SyntaxError", "'super' keyword is only valid inside a derived class constructor")
	}
	v, err := scope.Get(superCtorBinding)
	if err != nil {
		return nil, err
	}
	superCtor, ok := v.(*values.Object)
	if !ok || !superCtor.IsCallable() {
		return nil, it.NewThrow("TypeError", "Super constructor is not a constructor")
	}
	args, err := it.evalArguments(c.Args, scope)
	if err != nil {
		return nil, err
	}
	this := scope.This()
	thisObj, _ := this.(*values.Object)
	fd := superCtor.FunctionData()
	if fd.NativeConstruct != nil {
		built, err := fd.NativeConstruct(args)
		if err != nil {
			return nil, err
		}
		if bo, ok := built.(*values.Object); ok && thisObj != nil {
			for _, k := range bo.OwnKeys() {
				d, _ := bo.GetOwn(k)
				thisObj.DefineOwn(k, d)
			}
		}
		return values.TheUndefined, nil
	}
	_, err = it.Call(superCtor, this, args)
	return values.TheUndefined, err
}

const superCtorBinding = "%superConstructor"

func (it *Interpreter) evalNew(n *ast.New, scope *env.Environment) (values.Value, error) {
	calleeVal, err := it.evalExpr(n.Callee, scope)
	if err != nil {
		return nil, err
	}
	fn, ok := calleeVal.(*values.Object)
	if !ok || !fn.IsCallable() {
		return nil, it.NewThrow("TypeError", "%s is not a constructor", describeForError(calleeVal))
	}
	args, err := it.evalArguments(n.Args, scope)
	if err != nil {
		return nil, err
	}
	return it.Construct(fn, args)
}

func (it *Interpreter) evalUnary(u *ast.Unary, scope *env.Environment) (values.Value, error) {
	if u.Op == "typeof" {
		if id, ok := u.Arg.(*ast.Identifier); ok && !scope.Has(id.Name) {
			return values.String("undefined"), nil
		}
	}
	if u.Op == "delete" {
		m, ok := u.Arg.(*ast.Member)
		if !ok {
			return values.NewBoolean(true), nil
		}
		obj, key, err := it.evalMemberTarget(m, scope)
		if err != nil {
			return nil, err
		}
		o, ok := obj.(*values.Object)
		if !ok {
			return values.NewBoolean(true), nil
		}
		ok2, err := it.DeleteProperty(o, key)
		return values.NewBoolean(ok2), err
	}
	v, err := it.evalExpr(u.Arg, scope)
	if err != nil {
		return nil, err
	}
	switch u.Op {
	case "!":
		return values.NewBoolean(!ToBoolean(v)), nil
	case "-":
		n, err := it.ToNumber(v)
		if err != nil {
			return nil, err
		}
		return values.Number(-n), nil
	case "+":
		n, err := it.ToNumber(v)
		if err != nil {
			return nil, err
		}
		return values.Number(n), nil
	case "~":
		n, err := it.ToNumber(v)
		if err != nil {
			return nil, err
		}
		return values.Number(float64(^values.ToInt32(n))), nil
	case "typeof":
		return values.String(values.TypeOf(v)), nil
	case "void":
		return values.TheUndefined, nil
	}
	return nil, it.NewThrow("SyntaxError", "Unsupported unary operator %s", u.Op)
}

func (it *Interpreter) evalUpdate(u *ast.Update, scope *env.Environment) (values.Value, error) {
	old, err := it.evalExpr(u.Arg, scope)
	if err != nil {
		return nil, err
	}
	n, err := it.ToNumber(old)
	if err != nil {
		return nil, err
	}
	var next float64
	if u.Op == "++" {
		next = n + 1
	} else {
		next = n - 1
	}
	if err := it.assignPattern(scope, u.Arg, values.Number(next)); err != nil {
		return nil, err
	}
	if u.Prefix {
		return values.Number(next), nil
	}
	return values.Number(n), nil
}

func (it *Interpreter) evalBinary(b *ast.Binary, scope *env.Environment) (values.Value, error) {
	left, err := it.evalExpr(b.Left, scope)
	if err != nil {
		return nil, err
	}
	right, err := it.evalExpr(b.Right, scope)
	if err != nil {
		return nil, err
	}
	return it.applyBinary(b.Op, left, right)
}

func (it *Interpreter) applyBinary(op string, left, right values.Value) (values.Value, error) {
	switch op {
	case "+":
		lp, err := it.ToPrimitive(left, "")
		if err != nil {
			return nil, err
		}
		rp, err := it.ToPrimitive(right, "")
		if err != nil {
			return nil, err
		}
		if _, ok := lp.(values.String); ok {
			rs, err := it.ToString(rp)
			if err != nil {
				return nil, err
			}
			ls, _ := it.ToString(lp)
			return values.String(ls + rs), nil
		}
		if _, ok := rp.(values.String); ok {
			ls, err := it.ToString(lp)
			if err != nil {
				return nil, err
			}
			rs, _ := it.ToString(rp)
			return values.String(ls + rs), nil
		}
		ln, err := it.ToNumber(lp)
		if err != nil {
			return nil, err
		}
		rn, err := it.ToNumber(rp)
		if err != nil {
			return nil, err
		}
		return values.Number(ln + rn), nil
	case "-", "*", "/", "%", "**":
		ln, err := it.ToNumber(left)
		if err != nil {
			return nil, err
		}
		rn, err := it.ToNumber(right)
		if err != nil {
			return nil, err
		}
		return values.Number(arith(op, ln, rn)), nil
	case "==":
		eq, err := it.LooseEquals(left, right)
		return values.NewBoolean(eq), err
	case "!=":
		eq, err := it.LooseEquals(left, right)
		return values.NewBoolean(!eq), err
	case "===":
		return values.NewBoolean(StrictEquals(left, right)), nil
	case "!==":
		return values.NewBoolean(!StrictEquals(left, right)), nil
	case "<", ">", "<=", ">=":
		return it.compare(op, left, right)
	case "&", "|", "^", "<<", ">>", ">>>":
		return it.bitwise(op, left, right)
	case "instanceof":
		return it.instanceOf(left, right)
	case "in":
		o, ok := right.(*values.Object)
		if !ok {
			return nil, it.NewThrow("TypeError", "Cannot use 'in' operator to search for a key in a non-object")
		}
		s, err := it.ToString(left)
		if err != nil {
			return nil, err
		}
		return values.NewBoolean(it.HasProperty(o, values.StringKey(s))), nil
	}
	return nil, it.NewThrow("SyntaxError", "Unsupported binary operator %s", op)
}

func arith(op string, a, b float64) float64 {
	switch op {
	case "-":
		return a - b
	case "*":
		return a * b
	case "/":
		return a / b
	case "%":
		return mod(a, b)
	case "**":
		return pow(a, b)
	}
	return 0
}

func (it *Interpreter) compare(op string, left, right values.Value) (values.Value, error) {
	lp, err := it.ToPrimitive(left, "number")
	if err != nil {
		return nil, err
	}
	rp, err := it.ToPrimitive(right, "number")
	if err != nil {
		return nil, err
	}
	ls, lIsStr := lp.(values.String)
	rs, rIsStr := rp.(values.String)
	if lIsStr && rIsStr {
		c := strings.Compare(string(ls), string(rs))
		return values.NewBoolean(cmpOp(op, float64(c))), nil
	}
	ln, err := it.ToNumber(lp)
	if err != nil {
		return nil, err
	}
	rn, err := it.ToNumber(rp)
	if err != nil {
		return nil, err
	}
	if ln != ln || rn != rn { // NaN
		return values.NewBoolean(false), nil
	}
	var c float64
	if ln < rn {
		c = -1
	} else if ln > rn {
		c = 1
	}
	return values.NewBoolean(cmpOp(op, c)), nil
}

func cmpOp(op string, c float64) bool {
	switch op {
	case "<":
		return c < 0
	case ">":
		return c > 0
	case "<=":
		return c <= 0
	case ">=":
		return c >= 0
	}
	return false
}

func (it *Interpreter) bitwise(op string, left, right values.Value) (values.Value, error) {
	ln, err := it.ToNumber(left)
	if err != nil {
		return nil, err
	}
	rn, err := it.ToNumber(right)
	if err != nil {
		return nil, err
	}
	a, b := values.ToInt32(ln), values.ToInt32(rn)
	switch op {
	case "&":
		return values.Number(float64(a & b)), nil
	case "|":
		return values.Number(float64(a | b)), nil
	case "^":
		return values.Number(float64(a ^ b)), nil
	case "<<":
		return values.Number(float64(a << (uint32(b) & 31))), nil
	case ">>":
		return values.Number(float64(a >> (uint32(b) & 31))), nil
	case ">>>":
		return values.Number(float64(values.ToUint32(ln) >> (values.ToUint32(rn) & 31))), nil
	}
	return nil, it.NewThrow("SyntaxError", "Unsupported bitwise operator %s", op)
}

func (it *Interpreter) instanceOf(left, right values.Value) (values.Value, error) {
	ctor, ok := right.(*values.Object)
	if !ok || !ctor.IsCallable() {
		return nil, it.NewThrow("TypeError", "Right-hand side of 'instanceof' is not callable")
	}
	protoVal, err := it.getProperty(ctor, values.StringKey("prototype"))
	if err != nil {
		return nil, err
	}
	proto, ok := protoVal.(*values.Object)
	if !ok {
		return nil, it.NewThrow("TypeError", "Function has non-object prototype in instanceof check")
	}
	lo, ok := left.(*values.Object)
	if !ok {
		return values.NewBoolean(false), nil
	}
	for cur := lo.Proto; cur != nil; cur = cur.Proto {
		if cur == proto {
			return values.NewBoolean(true), nil
		}
	}
	return values.NewBoolean(false), nil
}

func (it *Interpreter) evalLogical(l *ast.Logical, scope *env.Environment) (values.Value, error) {
	left, err := it.evalExpr(l.Left, scope)
	if err != nil {
		return nil, err
	}
	switch l.Op {
	case "&&":
		if !ToBoolean(left) {
			return left, nil
		}
	case "||":
		if ToBoolean(left) {
			return left, nil
		}
	case "??":
		if !values.IsNullish(left) {
			return left, nil
		}
	}
	return it.evalExpr(l.Right, scope)
}

func (it *Interpreter) evalAssignment(a *ast.Assignment, scope *env.Environment) (values.Value, error) {
	if a.Op == "=" {
		v, err := it.evalExpr(a.Value, scope)
		if err != nil {
			return nil, err
		}
		if err := it.assignPattern(scope, a.Target, v); err != nil {
			return nil, err
		}
		return v, nil
	}
	binOp := strings.TrimSuffix(a.Op, "=")
	targetExpr, ok := a.Target.(ast.Expression)
	if !ok {
		return nil, it.NewThrow("SyntaxError", "Invalid compound assignment target")
	}
	if binOp == "&&" || binOp == "||" || binOp == "??" {
		cur, err := it.evalExpr(targetExpr, scope)
		if err != nil {
			return nil, err
		}
		switch binOp {
		case "&&":
			if !ToBoolean(cur) {
				return cur, nil
			}
		case "||":
			if ToBoolean(cur) {
				return cur, nil
			}
		case "??":
			if !values.IsNullish(cur) {
				return cur, nil
			}
		}
		v, err := it.evalExpr(a.Value, scope)
		if err != nil {
			return nil, err
		}
		if err := it.assignPattern(scope, a.Target, v); err != nil {
			return nil, err
		}
		return v, nil
	}
	cur, err := it.evalExpr(targetExpr, scope)
	if err != nil {
		return nil, err
	}
	rhs, err := it.evalExpr(a.Value, scope)
	if err != nil {
		return nil, err
	}
	result, err := it.applyBinary(binOp, cur, rhs)
	if err != nil {
		return nil, err
	}
	if err := it.assignPattern(scope, a.Target, result); err != nil {
		return nil, err
	}
	return result, nil
}

func (it *Interpreter) evalTemplate(t *ast.Template, scope *env.Environment) (values.Value, error) {
	var sb strings.Builder
	for i, q := range t.Quasis {
		sb.WriteString(q.Cooked)
		if i < len(t.Expressions) {
			v, err := it.evalExpr(t.Expressions[i], scope)
			if err != nil {
				return nil, err
			}
			s, err := it.ToString(v)
			if err != nil {
				return nil, err
			}
			sb.WriteString(s)
		}
	}
	return values.String(sb.String()), nil
}

// evalTaggedTemplate builds the {strings, raw} arrays and calls tag(...)
// the way String.raw and other tag functions expect.
func (it *Interpreter) evalTaggedTemplate(tt *ast.TaggedTemplate, scope *env.Environment) (values.Value, error) {
	strs := values.NewArray(it.Realm.ArrayProto, 0)
	raw := values.NewArray(it.Realm.ArrayProto, 0)
	for i, q := range tt.Quasi.Quasis {
		strs.SetElement(uint32(i), values.String(q.Cooked))
		raw.SetElement(uint32(i), values.String(q.Raw))
	}
	strs.DefineOwn(values.StringKey("raw"), values.DataProperty(raw))

	args := []values.Value{strs}
	for _, e := range tt.Quasi.Expressions {
		v, err := it.evalExpr(e, scope)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}

	var this values.Value = values.TheUndefined
	var tagVal values.Value
	var err error
	if m, ok := tt.Tag.(*ast.Member); ok {
		objVal, oerr := it.evalExpr(m.Object, scope)
		if oerr != nil {
			return nil, oerr
		}
		key, kerr := it.memberKey(m, scope)
		if kerr != nil {
			return nil, kerr
		}
		this = objVal
		tagVal, err = it.GetMember(objVal, key)
	} else {
		tagVal, err = it.evalExpr(tt.Tag, scope)
	}
	if err != nil {
		return nil, err
	}
	return it.callExpression(tagVal, this, args)
}

func mod(a, b float64) float64 { return math.Mod(a, b) }

func pow(a, b float64) float64 { return math.Pow(a, b) }

func (it *Interpreter) makeRegExp(pattern, flags string) (values.Value, error) {
	if it.Realm.NewRegExp == nil {
		return nil, it.NewThrow("TypeError", "RegExp support is not installed on this realm")
	}
	return it.Realm.NewRegExp(pattern, flags)
}

// evalUnknownExpr mirrors evalUnknown's statement-position fallback: a
// shape internal/astbuilder declined to translate, evaluated as
// undefined rather than rejected outright.
func (it *Interpreter) evalUnknownExpr(raw interface{ String() string }, scope *env.Environment) (values.Value, error) {
	it.Log.WithField("cell", raw.String()).Warn("evaluating unrecognized IR shape as undefined")
	return values.TheUndefined, nil
}
