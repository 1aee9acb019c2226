package eval

import (
	"fmt"

	"github.com/meko-tech/jsengine/internal/runtime/env"
	"github.com/meko-tech/jsengine/internal/runtime/values"
)

// NewErrorObject builds a guest Error instance of the named subclass
// (registered in Realm.ErrorCtors by internal/stdlib/errorobj), falling
// back to the plain Error prototype if ctorName is unknown.
func (it *Interpreter) NewErrorObject(ctorName, message string) *values.Object {
	proto := it.Realm.ErrorProto
	if ctor, ok := it.Realm.ErrorCtors[ctorName]; ok {
		if fd := ctor.FunctionData(); fd != nil {
			if d, ok := ctor.GetOwn(values.StringKey("prototype")); ok {
				if p, ok := d.Value.(*values.Object); ok {
					proto = p
				}
			}
		}
	}
	o := values.NewObject(proto)
	o.Class = "Error"
	o.DefineOwn(values.StringKey("message"), values.DataProperty(values.String(message)))
	o.DefineOwn(values.StringKey("name"), values.DataProperty(values.String(ctorName)))
	o.DefineOwn(values.StringKey("stack"), values.DataProperty(values.String(it.formatStack(ctorName, message))))
	return o
}

func (it *Interpreter) formatStack(name, message string) string {
	s := name + ": " + message
	for i := len(it.callStack) - 1; i >= 0; i-- {
		f := it.callStack[i]
		fn := f.FunctionName
		if fn == "" {
			fn = "<anonymous>"
		}
		s += fmt.Sprintf("\n    at %s (%s:%d:%d)", fn, f.SourceFile, f.Line, f.Column)
	}
	return s
}

// NewThrow builds and wraps a named Error as a *ThrownValue error,
// matching the shape the evaluator's own operator/coercion code raises.
func (it *Interpreter) NewThrow(ctorName, format string, args ...any) error {
	return Throw(it.NewErrorObject(ctorName, fmt.Sprintf(format, args...)))
}

// asGuestError converts an internal *env.ReferenceError/*env.TypeError
// into a guest-visible thrown Error, the bridge between the environment
// package's pure Go errors and the evaluator's guest exception model.
func (it *Interpreter) asGuestError(err error) error {
	switch e := err.(type) {
	case *env.ReferenceError:
		return it.NewThrow("ReferenceError", "%s", e.Error())
	case *env.TypeError:
		return it.NewThrow("TypeError", "%s", e.Error())
	default:
		return err
	}
}
