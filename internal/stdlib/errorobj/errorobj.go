// Package errorobj builds Error and its standard subclasses (TypeError,
// RangeError, ReferenceError, SyntaxError, URIError, EvalError) and
// registers each constructor in eval.Realm.ErrorCtors so the evaluator's
// internal NewThrow/NewErrorObject helpers can build guest-visible
// exceptions with the right prototype without importing this package
// back.
//
// Each error category gets one guest-visible prototype; at the Go level a
// thrown instance travels as the error value that
// internal/runtime/eval.NewThrow returns.
package errorobj

import (
	"github.com/meko-tech/jsengine/internal/runtime/eval"
	"github.com/meko-tech/jsengine/internal/runtime/values"
)

// Install builds Error.prototype plus the Error/TypeError/RangeError/
// ReferenceError/SyntaxError/URIError/EvalError constructors, attaches
// them to global, and populates realm.ErrorCtors and realm.ErrorProto.
func Install(it *eval.Interpreter, realm *eval.Realm, global *values.Object) {
	errorProto := values.NewObject(realm.ObjectProto)
	errorProto.Class = "Error"
	errorProto.DefineOwn(values.StringKey("name"), values.DataProperty(values.String("Error")))
	errorProto.DefineOwn(values.StringKey("message"), values.DataProperty(values.String("")))
	errorProto.DefineOwn(values.StringKey("toString"), values.DataProperty(values.NewNativeFunction(realm.FunctionProto, "toString", 0, func(this values.Value, args []values.Value) (values.Value, error) {
		o, ok := this.(*values.Object)
		if !ok {
			return values.String("Error"), nil
		}
		name := propString(it, o, "name", "Error")
		msg := propString(it, o, "message", "")
		if msg == "" {
			return values.String(name), nil
		}
		return values.String(name + ": " + msg), nil
	})))
	realm.ErrorProto = errorProto
	realm.ErrorCtors = make(map[string]*values.Object)

	baseCtor := makeCtor(it, realm, "Error", errorProto)
	global.DefineOwn(values.StringKey("Error"), values.DataProperty(baseCtor))
	realm.ErrorCtors["Error"] = baseCtor

	for _, name := range []string{"TypeError", "RangeError", "ReferenceError", "SyntaxError", "URIError", "EvalError"} {
		proto := values.NewObject(errorProto)
		proto.DefineOwn(values.StringKey("name"), values.DataProperty(values.String(name)))
		ctor := makeCtor(it, realm, name, proto)
		ctor.Proto = baseCtor
		proto.DefineOwn(values.StringKey("constructor"), &values.PropertyDescriptor{Value: ctor, Writable: true, Configurable: true})
		global.DefineOwn(values.StringKey(name), values.DataProperty(ctor))
		realm.ErrorCtors[name] = ctor
	}
}

func propString(it *eval.Interpreter, o *values.Object, key, fallback string) string {
	d, ok := o.GetOwn(values.StringKey(key))
	if !ok {
		return fallback
	}
	s, err := it.ToString(d.Value)
	if err != nil {
		return fallback
	}
	return s
}

func makeCtor(it *eval.Interpreter, realm *eval.Realm, name string, proto *values.Object) *values.Object {
	fd := &values.FunctionData{
		Kind: values.FuncConstructor, Name: name, Length: 1,
		Native: func(this values.Value, args []values.Value) (values.Value, error) {
			o, ok := this.(*values.Object)
			if !ok {
				o = values.NewObject(proto)
				o.Class = "Error"
			}
			msg := ""
			if len(args) > 0 && args[0] != values.TheUndefined {
				s, err := it.ToString(args[0])
				if err != nil {
					return nil, err
				}
				msg = s
			}
			o.DefineOwn(values.StringKey("message"), values.DataProperty(values.String(msg)))
			o.DefineOwn(values.StringKey("stack"), values.DataProperty(values.String(name+": "+msg)))
			return o, nil
		},
	}
	fn := values.NewFunctionObject(realm.FunctionProto, fd, true, proto)
	fn.DefineOwn(values.StringKey("prototype"), &values.PropertyDescriptor{Value: proto})
	proto.DefineOwn(values.StringKey("constructor"), &values.PropertyDescriptor{Value: fn, Writable: true, Configurable: true})
	return fn
}
