package eval

import (
	"math"
	"strconv"
	"strings"

	"github.com/meko-tech/jsengine/internal/runtime/values"
)

// ToBoolean implements ToBoolean: falsy values are 0, NaN, "", null,
// undefined, false; every object is truthy.
func ToBoolean(v values.Value) bool {
	switch vv := v.(type) {
	case values.Undefined, values.Null:
		return false
	case values.Boolean:
		return bool(vv)
	case values.Number:
		f := float64(vv)
		return f != 0 && !math.IsNaN(f)
	case values.String:
		return len(vv) > 0
	case *values.BigInt:
		return vv.V.Sign() != 0
	default:
		return true
	}
}

// ToPrimitive implements the ToPrimitive abstract operation: objects
// convert via Symbol.toPrimitive if present, else try valueOf/toString
// (preferring valueOf unless hint is "string"), which is why this lives
// in eval rather than values - both can invoke arbitrary user code.
func (it *Interpreter) ToPrimitive(v values.Value, hint string) (values.Value, error) {
	o, ok := v.(*values.Object)
	if !ok {
		return v, nil
	}
	if sym, err := it.getProperty(o, values.SymbolKey(values.SymbolToPrimitive)); err == nil {
		if fn, ok := sym.(*values.Object); ok && fn.IsCallable() {
			h := hint
			if h == "" {
				h = "default"
			}
			res, err := it.Call(fn, o, []values.Value{values.String(h)})
			if err != nil {
				return nil, err
			}
			if _, isObj := res.(*values.Object); isObj {
				return nil, it.NewThrow("TypeError", "Cannot convert object to primitive value")
			}
			return res, nil
		}
	}
	methods := []string{"valueOf", "toString"}
	if hint == "string" {
		methods = []string{"toString", "valueOf"}
	}
	for _, name := range methods {
		m, err := it.getProperty(o, values.StringKey(name))
		if err != nil {
			return nil, err
		}
		fn, ok := m.(*values.Object)
		if !ok || !fn.IsCallable() {
			continue
		}
		res, err := it.Call(fn, o, nil)
		if err != nil {
			return nil, err
		}
		if _, isObj := res.(*values.Object); !isObj {
			return res, nil
		}
	}
	return nil, it.NewThrow("TypeError", "Cannot convert object to primitive value")
}

// ToNumber implements ToNumber, including the object path through
// ToPrimitive.
func (it *Interpreter) ToNumber(v values.Value) (float64, error) {
	switch vv := v.(type) {
	case values.Undefined:
		return math.NaN(), nil
	case values.Null:
		return 0, nil
	case values.Boolean:
		if vv {
			return 1, nil
		}
		return 0, nil
	case values.Number:
		return float64(vv), nil
	case values.String:
		return stringToNumber(string(vv)), nil
	case *values.BigInt:
		return 0, it.NewThrow("TypeError", "Cannot convert a BigInt value to a number")
	case *values.Symbol:
		return 0, it.NewThrow("TypeError", "Cannot convert a Symbol value to a number")
	case *values.Object:
		prim, err := it.ToPrimitive(vv, "number")
		if err != nil {
			return 0, err
		}
		return it.ToNumber(prim)
	}
	return math.NaN(), nil
}

func stringToNumber(s string) float64 {
	t := strings.TrimSpace(s)
	if t == "" {
		return 0
	}
	if t == "Infinity" || t == "+Infinity" {
		return math.Inf(1)
	}
	if t == "-Infinity" {
		return math.Inf(-1)
	}
	if strings.HasPrefix(t, "0x") || strings.HasPrefix(t, "0X") {
		n, err := strconv.ParseUint(t[2:], 16, 64)
		if err != nil {
			return math.NaN()
		}
		return float64(n)
	}
	f, err := strconv.ParseFloat(t, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// ToString implements ToString for all kinds; `+` relies on this when it
// prefers string concatenation over numeric addition.
func (it *Interpreter) ToString(v values.Value) (string, error) {
	switch vv := v.(type) {
	case values.Undefined:
		return "undefined", nil
	case values.Null:
		return "null", nil
	case values.Boolean:
		return vv.String(), nil
	case values.Number:
		return values.FormatNumber(float64(vv)), nil
	case values.String:
		return string(vv), nil
	case *values.BigInt:
		return vv.String(), nil
	case *values.Symbol:
		return "", it.NewThrow("TypeError", "Cannot convert a Symbol value to a string")
	case *values.Object:
		prim, err := it.ToPrimitive(vv, "string")
		if err != nil {
			return "", err
		}
		return it.ToString(prim)
	}
	return "", nil
}

// ToObject implements ToObject (boxing a primitive), used for member
// access on a primitive receiver (`"abc".length`) and for-in/Object
// static methods called on a primitive.
func (it *Interpreter) ToObject(v values.Value) (*values.Object, error) {
	switch vv := v.(type) {
	case *values.Object:
		return vv, nil
	case values.Undefined, values.Null:
		return nil, it.NewThrow("TypeError", "Cannot convert undefined or null to object")
	case values.String:
		o := values.NewObject(it.Realm.StringProto)
		o.Class = "String"
		o.PrimitiveValue = vv
		lenDesc := PropertyLen(len([]rune(string(vv))))
		o.DefineOwn(values.StringKey("length"), &lenDesc)
		for i, r := range []rune(string(vv)) {
			o.DefineOwn(values.StringKey(strconv.Itoa(i)), &values.PropertyDescriptor{Value: values.String(string(r)), Enumerable: true})
		}
		return o, nil
	case values.Number:
		o := values.NewObject(it.Realm.NumberProto)
		o.Class = "Number"
		o.PrimitiveValue = vv
		return o, nil
	case values.Boolean:
		o := values.NewObject(it.Realm.BooleanProto)
		o.Class = "Boolean"
		o.PrimitiveValue = vv
		return o, nil
	case *values.BigInt:
		o := values.NewObject(it.Realm.BigIntProto)
		o.Class = "BigInt"
		o.PrimitiveValue = vv
		return o, nil
	case *values.Symbol:
		o := values.NewObject(it.Realm.SymbolProto)
		o.Class = "Symbol"
		o.PrimitiveValue = vv
		return o, nil
	}
	return nil, it.NewThrow("TypeError", "Cannot convert value to object")
}

// PropertyLen is a tiny helper so ToObject's string-boxing can build a
// non-writable `length` descriptor inline.
func PropertyLen(n int) values.PropertyDescriptor {
	return values.PropertyDescriptor{Value: values.Number(n)}
}

// StrictEquals implements === (no coercion).
func StrictEquals(a, b values.Value) bool {
	switch av := a.(type) {
	case values.Undefined:
		_, ok := b.(values.Undefined)
		return ok
	case values.Null:
		_, ok := b.(values.Null)
		return ok
	case values.Boolean:
		bv, ok := b.(values.Boolean)
		return ok && av == bv
	case values.Number:
		bv, ok := b.(values.Number)
		return ok && float64(av) == float64(bv)
	case values.String:
		bv, ok := b.(values.String)
		return ok && av == bv
	case *values.BigInt:
		bv, ok := b.(*values.BigInt)
		return ok && av.V.Cmp(bv.V) == 0
	case *values.Symbol:
		bv, ok := b.(*values.Symbol)
		return ok && av == bv
	case *values.Object:
		bv, ok := b.(*values.Object)
		return ok && av == bv
	}
	return false
}

// LooseEquals implements == (type-coercing equality).
func (it *Interpreter) LooseEquals(a, b values.Value) (bool, error) {
	ak, bk := a.Kind(), b.Kind()
	if ak == bk {
		return StrictEquals(a, b), nil
	}
	if values.IsNullish(a) && values.IsNullish(b) {
		return true, nil
	}
	if values.IsNullish(a) || values.IsNullish(b) {
		return false, nil
	}
	numeric := func(k values.Kind) bool {
		return k == values.KindNumber || k == values.KindString || k == values.KindBoolean || k == values.KindBigInt
	}
	if ak == values.KindObject && numeric(bk) {
		prim, err := it.ToPrimitive(a, "")
		if err != nil {
			return false, err
		}
		return it.LooseEquals(prim, b)
	}
	if bk == values.KindObject && numeric(ak) {
		prim, err := it.ToPrimitive(b, "")
		if err != nil {
			return false, err
		}
		return it.LooseEquals(a, prim)
	}
	if ak == values.KindBoolean {
		n, err := it.ToNumber(a)
		if err != nil {
			return false, err
		}
		return it.LooseEquals(values.Number(n), b)
	}
	if bk == values.KindBoolean {
		n, err := it.ToNumber(b)
		if err != nil {
			return false, err
		}
		return it.LooseEquals(a, values.Number(n))
	}
	if numeric(ak) && numeric(bk) {
		an, err := it.ToNumber(a)
		if err != nil {
			return false, err
		}
		bn, err := it.ToNumber(b)
		if err != nil {
			return false, err
		}
		return an == bn, nil
	}
	return false, nil
}

// SameValueZero implements the SameValueZero algorithm used by
// Array.prototype.includes, Map/Set key comparison, and generally any
// "===, but NaN equals NaN" comparison.
func SameValueZero(a, b values.Value) bool {
	an, aok := a.(values.Number)
	bn, bok := b.(values.Number)
	if aok && bok {
		if math.IsNaN(float64(an)) && math.IsNaN(float64(bn)) {
			return true
		}
		return float64(an) == float64(bn)
	}
	return StrictEquals(a, b)
}
