// Package numberobj builds the Number constructor, Number.prototype
// (toFixed/toPrecision/toString/valueOf), and Number's static constants
// and predicates.
package numberobj

import (
	"math"
	"strconv"

	"github.com/meko-tech/jsengine/internal/runtime/eval"
	"github.com/meko-tech/jsengine/internal/runtime/values"
)

func Install(it *eval.Interpreter, realm *eval.Realm, global *values.Object) {
	proto := values.NewObject(realm.ObjectProto)
	proto.Class = "Number"
	proto.PrimitiveValue = values.Number(0)
	realm.NumberProto = proto

	def := func(name string, length int, fn values.NativeFunc) {
		proto.DefineOwn(values.StringKey(name), values.DataProperty(values.NewNativeFunction(realm.FunctionProto, name, length, fn)))
	}

	def("valueOf", 0, func(this values.Value, args []values.Value) (values.Value, error) { return thisNumber(it, this) })
	def("toString", 1, func(this values.Value, args []values.Value) (values.Value, error) {
		n, err := thisNumber(it, this)
		if err != nil {
			return nil, err
		}
		radix := 10
		if len(args) > 0 && args[0] != values.TheUndefined {
			r, err := it.ToNumber(args[0])
			if err != nil {
				return nil, err
			}
			radix = int(r)
		}
		f := float64(n.(values.Number))
		if radix == 10 {
			return values.String(values.FormatNumber(f)), nil
		}
		return values.String(strconv.FormatInt(int64(f), radix)), nil
	})
	def("toFixed", 1, func(this values.Value, args []values.Value) (values.Value, error) {
		n, err := thisNumber(it, this)
		if err != nil {
			return nil, err
		}
		digits := 0
		if len(args) > 0 {
			d, err := it.ToNumber(args[0])
			if err != nil {
				return nil, err
			}
			digits = int(d)
		}
		return values.String(strconv.FormatFloat(float64(n.(values.Number)), 'f', digits, 64)), nil
	})
	def("toPrecision", 1, func(this values.Value, args []values.Value) (values.Value, error) {
		n, err := thisNumber(it, this)
		if err != nil {
			return nil, err
		}
		if len(args) == 0 || args[0] == values.TheUndefined {
			return values.String(values.FormatNumber(float64(n.(values.Number)))), nil
		}
		p, err := it.ToNumber(args[0])
		if err != nil {
			return nil, err
		}
		return values.String(strconv.FormatFloat(float64(n.(values.Number)), 'g', int(p), 64)), nil
	})

	fd := &values.FunctionData{
		Kind: values.FuncHost, Name: "Number", Length: 1,
		Native: func(this values.Value, args []values.Value) (values.Value, error) {
			if len(args) == 0 {
				return values.Number(0), nil
			}
			n, err := it.ToNumber(args[0])
			if err != nil {
				return nil, err
			}
			return values.Number(n), nil
		},
		NativeConstruct: func(args []values.Value) (values.Value, error) {
			n := 0.0
			if len(args) > 0 {
				v, err := it.ToNumber(args[0])
				if err != nil {
					return nil, err
				}
				n = v
			}
			o := values.NewObject(proto)
			o.Class = "Number"
			o.PrimitiveValue = values.Number(n)
			return o, nil
		},
	}
	ctor := values.NewFunctionObject(realm.FunctionProto, fd, true, proto)
	ctor.DefineOwn(values.StringKey("prototype"), &values.PropertyDescriptor{Value: proto})

	consts := map[string]float64{
		"MAX_SAFE_INTEGER":  9007199254740991,
		"MIN_SAFE_INTEGER":  -9007199254740991,
		"MAX_VALUE":         math.MaxFloat64,
		"MIN_VALUE":         5e-324,
		"EPSILON":           2.220446049250313e-16,
		"POSITIVE_INFINITY": math.Inf(1),
		"NEGATIVE_INFINITY": math.Inf(-1),
		"NaN":               math.NaN(),
	}
	for name, v := range consts {
		ctor.DefineOwn(values.StringKey(name), &values.PropertyDescriptor{Value: values.Number(v)})
	}

	ctor.DefineOwn(values.StringKey("isInteger"), values.DataProperty(values.NewNativeFunction(realm.FunctionProto, "isInteger", 1, func(this values.Value, args []values.Value) (values.Value, error) {
		n, ok := argAt(args, 0).(values.Number)
		return values.Boolean(ok && float64(n) == math.Trunc(float64(n)) && !math.IsInf(float64(n), 0)), nil
	})))
	ctor.DefineOwn(values.StringKey("isSafeInteger"), values.DataProperty(values.NewNativeFunction(realm.FunctionProto, "isSafeInteger", 1, func(this values.Value, args []values.Value) (values.Value, error) {
		n, ok := argAt(args, 0).(values.Number)
		if !ok {
			return values.Boolean(false), nil
		}
		f := float64(n)
		return values.Boolean(f == math.Trunc(f) && math.Abs(f) <= 9007199254740991), nil
	})))
	ctor.DefineOwn(values.StringKey("isFinite"), values.DataProperty(values.NewNativeFunction(realm.FunctionProto, "isFinite", 1, func(this values.Value, args []values.Value) (values.Value, error) {
		n, ok := argAt(args, 0).(values.Number)
		return values.Boolean(ok && !math.IsNaN(float64(n)) && !math.IsInf(float64(n), 0)), nil
	})))
	ctor.DefineOwn(values.StringKey("isNaN"), values.DataProperty(values.NewNativeFunction(realm.FunctionProto, "isNaN", 1, func(this values.Value, args []values.Value) (values.Value, error) {
		n, ok := argAt(args, 0).(values.Number)
		return values.Boolean(ok && math.IsNaN(float64(n))), nil
	})))

	global.DefineOwn(values.StringKey("Number"), values.DataProperty(ctor))
}

func thisNumber(it *eval.Interpreter, this values.Value) (values.Value, error) {
	if n, ok := this.(values.Number); ok {
		return n, nil
	}
	if o, ok := this.(*values.Object); ok {
		if n, ok := o.PrimitiveValue.(values.Number); ok {
			return n, nil
		}
	}
	return nil, it.NewThrow("TypeError", "Number.prototype method called on incompatible receiver")
}

func argAt(args []values.Value, i int) values.Value {
	if i < len(args) {
		return args[i]
	}
	return values.TheUndefined
}
