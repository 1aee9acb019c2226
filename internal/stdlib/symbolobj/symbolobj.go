// Package symbolobj builds the Symbol function (callable, not
// constructible - `new Symbol()` throws, matching real engines) and
// Symbol.prototype, plus the well-known-symbol properties Symbol.iterator
// etc.
package symbolobj

import (
	"github.com/meko-tech/jsengine/internal/runtime/eval"
	"github.com/meko-tech/jsengine/internal/runtime/values"
)

func Install(it *eval.Interpreter, realm *eval.Realm, global *values.Object) {
	proto := values.NewObject(realm.ObjectProto)
	proto.Class = "Symbol"
	proto.DefineOwn(values.StringKey("toString"), values.DataProperty(values.NewNativeFunction(realm.FunctionProto, "toString", 0, func(this values.Value, args []values.Value) (values.Value, error) {
		if s, ok := this.(*values.Symbol); ok {
			return values.String(s.String()), nil
		}
		if o, ok := this.(*values.Object); ok {
			if s, ok := o.PrimitiveValue.(*values.Symbol); ok {
				return values.String(s.String()), nil
			}
		}
		return values.String("Symbol()"), nil
	})))
	realm.SymbolProto = proto

	fd := &values.FunctionData{
		Kind: values.FuncHost, Name: "Symbol", Length: 0, NotConstructible: true,
		Native: func(this values.Value, args []values.Value) (values.Value, error) {
			if len(args) == 0 || args[0] == values.TheUndefined {
				return values.NewSymbolNoDescription(), nil
			}
			desc, err := it.ToString(args[0])
			if err != nil {
				return nil, err
			}
			return values.NewSymbol(desc), nil
		},
	}
	fn := values.NewFunctionObject(realm.FunctionProto, fd, false, nil)
	fn.DefineOwn(values.StringKey("iterator"), &values.PropertyDescriptor{Value: values.SymbolIterator})
	fn.DefineOwn(values.StringKey("asyncIterator"), &values.PropertyDescriptor{Value: values.SymbolAsyncIterator})
	fn.DefineOwn(values.StringKey("toPrimitive"), &values.PropertyDescriptor{Value: values.SymbolToPrimitive})
	fn.DefineOwn(values.StringKey("toStringTag"), &values.PropertyDescriptor{Value: values.SymbolToStringTag})
	fn.DefineOwn(values.StringKey("hasInstance"), &values.PropertyDescriptor{Value: values.SymbolHasInstance})

	registry := make(map[string]*values.Symbol)
	fn.DefineOwn(values.StringKey("for"), values.DataProperty(values.NewNativeFunction(realm.FunctionProto, "for", 1, func(this values.Value, args []values.Value) (values.Value, error) {
		key := ""
		if len(args) > 0 {
			s, err := it.ToString(args[0])
			if err != nil {
				return nil, err
			}
			key = s
		}
		if s, ok := registry[key]; ok {
			return s, nil
		}
		s := values.NewSymbol(key)
		registry[key] = s
		return s, nil
	})))

	global.DefineOwn(values.StringKey("Symbol"), values.DataProperty(fn))
}
