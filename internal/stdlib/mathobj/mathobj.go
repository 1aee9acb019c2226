// Package mathobj builds the Math global object: a plain object (not a
// constructor) whose own properties are numeric constants and native
// functions wrapping Go's math package, each a thin wrapper that
// validates its arguments up front.
package mathobj

import (
	"math"
	"math/rand"

	"github.com/meko-tech/jsengine/internal/runtime/eval"
	"github.com/meko-tech/jsengine/internal/runtime/values"
)

// Install builds the Math object and attaches it to global under the
// name "Math".
func Install(it *eval.Interpreter, global *values.Object) *values.Object {
	m := values.NewObject(it.Realm.ObjectProto)
	m.Class = "Math"

	constants := map[string]float64{
		"E":       math.E,
		"LN2":     math.Ln2,
		"LN10":    math.Ln10,
		"LOG2E":   1 / math.Ln2,
		"LOG10E":  1 / math.Ln10,
		"PI":      math.Pi,
		"SQRT1_2": math.Sqrt(0.5),
		"SQRT2":   math.Sqrt2,
	}
	for name, v := range constants {
		m.DefineOwn(values.StringKey(name), &values.PropertyDescriptor{Value: values.Number(v)})
	}

	unary := map[string]func(float64) float64{
		"abs":   math.Abs,
		"floor": math.Floor,
		"ceil":  math.Ceil,
		"round": func(f float64) float64 { return math.Floor(f + 0.5) },
		"trunc": math.Trunc,
		"sqrt":  math.Sqrt,
		"cbrt":  math.Cbrt,
		"sign": func(f float64) float64 {
			switch {
			case math.IsNaN(f):
				return math.NaN()
			case f > 0:
				return 1
			case f < 0:
				return -1
			default:
				return f
			}
		},
		"sin": math.Sin, "cos": math.Cos, "tan": math.Tan,
		"asin": math.Asin, "acos": math.Acos, "atan": math.Atan,
		"sinh": math.Sinh, "cosh": math.Cosh, "tanh": math.Tanh,
		"asinh": math.Asinh, "acosh": math.Acosh, "atanh": math.Atanh,
		"exp":   math.Exp,
		"log":   math.Log,
		"log2":  math.Log2,
		"log10": math.Log10,
	}
	for name, fn := range unary {
		fn := fn
		m.DefineOwn(values.StringKey(name), values.DataProperty(values.NewNativeFunction(it.Realm.FunctionProto, name, 1, func(this values.Value, args []values.Value) (values.Value, error) {
			n, err := it.ToNumber(firstArg(args))
			if err != nil {
				return nil, err
			}
			return values.Number(fn(n)), nil
		})))
	}

	m.DefineOwn(values.StringKey("pow"), values.DataProperty(values.NewNativeFunction(it.Realm.FunctionProto, "pow", 2, func(this values.Value, args []values.Value) (values.Value, error) {
		base, err := it.ToNumber(firstArg(args))
		if err != nil {
			return nil, err
		}
		exp, err := it.ToNumber(argAt(args, 1))
		if err != nil {
			return nil, err
		}
		return values.Number(math.Pow(base, exp)), nil
	})))

	m.DefineOwn(values.StringKey("atan2"), values.DataProperty(values.NewNativeFunction(it.Realm.FunctionProto, "atan2", 2, func(this values.Value, args []values.Value) (values.Value, error) {
		y, err := it.ToNumber(firstArg(args))
		if err != nil {
			return nil, err
		}
		x, err := it.ToNumber(argAt(args, 1))
		if err != nil {
			return nil, err
		}
		return values.Number(math.Atan2(y, x)), nil
	})))

	m.DefineOwn(values.StringKey("hypot"), values.DataProperty(values.NewNativeFunction(it.Realm.FunctionProto, "hypot", 2, func(this values.Value, args []values.Value) (values.Value, error) {
		sum := 0.0
		for _, a := range args {
			n, err := it.ToNumber(a)
			if err != nil {
				return nil, err
			}
			sum += n * n
		}
		return values.Number(math.Sqrt(sum)), nil
	})))

	m.DefineOwn(values.StringKey("max"), values.DataProperty(values.NewNativeFunction(it.Realm.FunctionProto, "max", 2, func(this values.Value, args []values.Value) (values.Value, error) {
		return minMax(it, args, false)
	})))
	m.DefineOwn(values.StringKey("min"), values.DataProperty(values.NewNativeFunction(it.Realm.FunctionProto, "min", 2, func(this values.Value, args []values.Value) (values.Value, error) {
		return minMax(it, args, true)
	})))

	m.DefineOwn(values.StringKey("random"), values.DataProperty(values.NewNativeFunction(it.Realm.FunctionProto, "random", 0, func(this values.Value, args []values.Value) (values.Value, error) {
		return values.Number(rand.Float64()), nil
	})))

	global.DefineOwn(values.StringKey("Math"), values.DataProperty(m))
	return m
}

func minMax(it *eval.Interpreter, args []values.Value, wantMin bool) (values.Value, error) {
	if len(args) == 0 {
		if wantMin {
			return values.Number(math.Inf(1)), nil
		}
		return values.Number(math.Inf(-1)), nil
	}
	best, err := it.ToNumber(args[0])
	if err != nil {
		return nil, err
	}
	for _, a := range args[1:] {
		n, err := it.ToNumber(a)
		if err != nil {
			return nil, err
		}
		if math.IsNaN(n) || math.IsNaN(best) {
			return values.Number(math.NaN()), nil
		}
		if wantMin && n < best || !wantMin && n > best {
			best = n
		}
	}
	return values.Number(best), nil
}

func firstArg(args []values.Value) values.Value { return argAt(args, 0) }

func argAt(args []values.Value, i int) values.Value {
	if i < len(args) {
		return args[i]
	}
	return values.TheUndefined
}
