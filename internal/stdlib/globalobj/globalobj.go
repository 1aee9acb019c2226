// Package globalobj installs the free-standing global functions and
// objects that are not themselves a constructor's namespace: console,
// globalThis, parseInt/parseFloat/isNaN/isFinite,
// encodeURIComponent/decodeURIComponent, the indirect `eval` entry
// point, and __debug().
//
// Each is registered as a flat map of name to native implementation
// installed once at realm construction. console's per-level methods are
// logged through github.com/sirupsen/logrus, the same library the rest
// of the engine's own diagnostics use, rather than writing to stdout
// directly.
package globalobj

import (
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/meko-tech/jsengine/internal/diagnostics"
	"github.com/meko-tech/jsengine/internal/runtime/eval"
	"github.com/meko-tech/jsengine/internal/runtime/values"
)

// Install populates global with the free functions and console/globalThis
// objects.
func Install(it *eval.Interpreter, global *values.Object) {
	def := func(name string, length int, fn values.NativeFunc) {
		global.DefineOwn(values.StringKey(name), &values.PropertyDescriptor{
			Value:    values.NewNativeFunction(it.Realm.FunctionProto, name, length, fn),
			Writable: true, Configurable: true,
		})
	}

	def("parseInt", 2, builtinParseInt(it))
	def("parseFloat", 1, builtinParseFloat(it))
	def("isNaN", 1, builtinIsNaN(it))
	def("isFinite", 1, builtinIsFinite(it))
	def("encodeURIComponent", 1, builtinEncodeURIComponent(it))
	def("decodeURIComponent", 1, builtinDecodeURIComponent(it))
	def("eval", 1, builtinEval(it))
	def("__debug", 0, builtinDebug(it))

	global.DefineOwn(values.StringKey("globalThis"), &values.PropertyDescriptor{Value: global, Writable: true, Configurable: true})
	global.DefineOwn(values.StringKey("undefined"), &values.PropertyDescriptor{Value: values.TheUndefined})
	global.DefineOwn(values.StringKey("NaN"), &values.PropertyDescriptor{Value: values.Number(nan())})
	global.DefineOwn(values.StringKey("Infinity"), &values.PropertyDescriptor{Value: values.Number(inf())})

	console := values.NewObject(it.Realm.ObjectProto)
	console.Class = "console"
	for _, level := range []struct {
		name string
		log  func(*logrus.Entry, ...any)
	}{
		{"log", func(e *logrus.Entry, a ...any) { e.Info(a...) }},
		{"info", func(e *logrus.Entry, a ...any) { e.Info(a...) }},
		{"warn", func(e *logrus.Entry, a ...any) { e.Warn(a...) }},
		{"error", func(e *logrus.Entry, a ...any) { e.Error(a...) }},
		{"debug", func(e *logrus.Entry, a ...any) { e.Debug(a...) }},
	} {
		logFn := level.log
		console.DefineOwn(values.StringKey(level.name), values.DataProperty(values.NewNativeFunction(it.Realm.FunctionProto, level.name, 0, func(this values.Value, args []values.Value) (values.Value, error) {
			parts := make([]any, 0, len(args))
			for _, a := range args {
				s, err := it.ToString(a)
				if err != nil {
					return nil, err
				}
				parts = append(parts, s)
			}
			logFn(it.Log, strings.Join(stringsOf(parts), " "))
			return values.TheUndefined, nil
		})))
	}
	global.DefineOwn(values.StringKey("console"), &values.PropertyDescriptor{Value: console, Writable: true, Configurable: true})
}

func stringsOf(a []any) []string {
	out := make([]string, len(a))
	for i, v := range a {
		out[i], _ = v.(string)
	}
	return out
}

func builtinParseInt(it *eval.Interpreter) values.NativeFunc {
	return func(this values.Value, args []values.Value) (values.Value, error) {
		s, err := it.ToString(firstArg(args))
		if err != nil {
			return nil, err
		}
		radix := 10
		if len(args) > 1 {
			r, err := it.ToNumber(args[1])
			if err != nil {
				return nil, err
			}
			if r != 0 {
				radix = int(r)
			}
		}
		s = strings.TrimSpace(s)
		neg := false
		if strings.HasPrefix(s, "-") {
			neg, s = true, s[1:]
		} else if strings.HasPrefix(s, "+") {
			s = s[1:]
		}
		if radix == 16 || radix == 0 {
			if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
				s = s[2:]
				radix = 16
			}
		}
		if radix == 0 {
			radix = 10
		}
		end := 0
		for end < len(s) && digitValue(s[end]) < radix {
			end++
		}
		if end == 0 {
			return values.Number(nan()), nil
		}
		n, err := strconv.ParseInt(s[:end], radix, 64)
		f := float64(n)
		if err != nil {
			// Overflow past int64 still parses conceptually; fall back via
			// ParseUint for large unsigned magnitudes rather than reporting
			// NaN for a digit string that is simply long. Past uint64 the
			// result is NaN.
			u, uerr := strconv.ParseUint(s[:end], radix, 64)
			if uerr != nil {
				return values.Number(nan()), nil
			}
			f = float64(u)
		}
		if neg {
			f = -f
		}
		return values.Number(f), nil
	}
}

func digitValue(b byte) int {
	switch {
	case b >= '0' && b <= '9':
		return int(b - '0')
	case b >= 'a' && b <= 'z':
		return int(b-'a') + 10
	case b >= 'A' && b <= 'Z':
		return int(b-'A') + 10
	default:
		return 99
	}
}

func builtinParseFloat(it *eval.Interpreter) values.NativeFunc {
	return func(this values.Value, args []values.Value) (values.Value, error) {
		s, err := it.ToString(firstArg(args))
		if err != nil {
			return nil, err
		}
		s = strings.TrimSpace(s)
		end := len(s)
		for end > 0 {
			if _, perr := strconv.ParseFloat(s[:end], 64); perr == nil {
				break
			}
			end--
		}
		if end == 0 {
			return values.Number(nan()), nil
		}
		f, err := strconv.ParseFloat(s[:end], 64)
		if err != nil {
			return values.Number(nan()), nil
		}
		return values.Number(f), nil
	}
}

func builtinIsNaN(it *eval.Interpreter) values.NativeFunc {
	return func(this values.Value, args []values.Value) (values.Value, error) {
		n, err := it.ToNumber(firstArg(args))
		if err != nil {
			return nil, err
		}
		return values.Boolean(n != n), nil
	}
}

func builtinIsFinite(it *eval.Interpreter) values.NativeFunc {
	return func(this values.Value, args []values.Value) (values.Value, error) {
		n, err := it.ToNumber(firstArg(args))
		if err != nil {
			return nil, err
		}
		return values.Boolean(n == n && n > negInf() && n < inf()), nil
	}
}

func builtinEncodeURIComponent(it *eval.Interpreter) values.NativeFunc {
	return func(this values.Value, args []values.Value) (values.Value, error) {
		s, err := it.ToString(firstArg(args))
		if err != nil {
			return nil, err
		}
		return values.String(encodeURIComponent(s)), nil
	}
}

func builtinDecodeURIComponent(it *eval.Interpreter) values.NativeFunc {
	return func(this values.Value, args []values.Value) (values.Value, error) {
		s, err := it.ToString(firstArg(args))
		if err != nil {
			return nil, err
		}
		decoded, derr := decodeURIComponent(s)
		if derr != nil {
			return nil, it.NewThrow("URIError", "%s", derr.Error())
		}
		return values.String(decoded), nil
	}
}

// builtinEval is the indirect eval entry point: it is reached whenever
// `eval` is called through anything other than a bare identifier callee
// (internal/runtime/eval's evalCall special-cases the bare-identifier
// direct-call form before ever dispatching here). Indirect calls always
// evaluate against the global scope.
func builtinEval(it *eval.Interpreter) values.NativeFunc {
	return func(this values.Value, args []values.Value) (values.Value, error) {
		src, ok := firstArg(args).(values.String)
		if !ok {
			return firstArg(args), nil
		}
		return it.EvalSource(string(src), it.Global, false)
	}
}

func builtinDebug(it *eval.Interpreter) values.NativeFunc {
	return func(this values.Value, args []values.Value) (values.Value, error) {
		vars := make(map[string]string, len(args))
		for i, a := range args {
			vars["arg"+strconv.Itoa(i)] = a.String()
		}
		it.Diag.PushDebug(diagnostics.DebugMessage{
			Variables:        vars,
			CallStack:        it.CallStack(),
			ControlFlowState: "top-level",
		})
		return values.TheUndefined, nil
	}
}

func firstArg(args []values.Value) values.Value {
	if len(args) > 0 {
		return args[0]
	}
	return values.TheUndefined
}

func nan() float64    { var z float64; return z / z }
func inf() float64    { var z float64; return 1 / z }
func negInf() float64 { var z float64; return -1 / z }
