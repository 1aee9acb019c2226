// Package objectobj builds the Object constructor, its static methods
// (keys/values/entries/assign/freeze/seal/create/
// getPrototypeOf/setPrototypeOf/defineProperty/defineProperties/
// getOwnPropertyNames/getOwnPropertyDescriptor/fromEntries), and
// Object.prototype (hasOwnProperty/toString/valueOf/isPrototypeOf).
package objectobj

import (
	"github.com/meko-tech/jsengine/internal/runtime/eval"
	"github.com/meko-tech/jsengine/internal/runtime/values"
)

func Install(it *eval.Interpreter, realm *eval.Realm, global *values.Object) {
	proto := realm.ObjectProto // allocated earlier in the bootstrap, before any other prototype can reference it

	def := func(o *values.Object, name string, length int, fn values.NativeFunc) {
		o.DefineOwn(values.StringKey(name), values.DataProperty(values.NewNativeFunction(realm.FunctionProto, name, length, fn)))
	}

	def(proto, "hasOwnProperty", 1, func(this values.Value, args []values.Value) (values.Value, error) {
		o, err := it.ToObject(this)
		if err != nil {
			return nil, err
		}
		key, err := toKey(it, firstArg(args))
		if err != nil {
			return nil, err
		}
		return values.Boolean(o.HasOwn(key)), nil
	})
	def(proto, "isPrototypeOf", 1, func(this values.Value, args []values.Value) (values.Value, error) {
		target, ok := firstArg(args).(*values.Object)
		if !ok {
			return values.Boolean(false), nil
		}
		self, _ := this.(*values.Object)
		for cur := target.Proto; cur != nil; cur = cur.Proto {
			if cur == self {
				return values.Boolean(true), nil
			}
		}
		return values.Boolean(false), nil
	})
	def(proto, "toString", 0, func(this values.Value, args []values.Value) (values.Value, error) {
		o, err := it.ToObject(this)
		if err != nil {
			return nil, err
		}
		return values.String("[object " + o.Class + "]"), nil
	})
	def(proto, "valueOf", 0, func(this values.Value, args []values.Value) (values.Value, error) {
		return it.ToObject(this)
	})

	fd := &values.FunctionData{
		Kind: values.FuncConstructor, Name: "Object", Length: 1,
		Native: func(this values.Value, args []values.Value) (values.Value, error) {
			if len(args) == 0 || values.IsNullish(args[0]) {
				return values.NewObject(proto), nil
			}
			return it.ToObject(args[0])
		},
	}
	ctor := values.NewFunctionObject(realm.FunctionProto, fd, true, proto)
	ctor.DefineOwn(values.StringKey("prototype"), &values.PropertyDescriptor{Value: proto})

	def(ctor, "keys", 1, func(this values.Value, args []values.Value) (values.Value, error) {
		o, err := it.ToObject(firstArg(args))
		if err != nil {
			return nil, err
		}
		arr := values.NewArray(realm.ArrayProto, 0)
		for _, k := range enumerableOwnStrings(o) {
			arr.AppendElement(values.String(k))
		}
		return arr, nil
	})
	def(ctor, "values", 1, func(this values.Value, args []values.Value) (values.Value, error) {
		o, err := it.ToObject(firstArg(args))
		if err != nil {
			return nil, err
		}
		arr := values.NewArray(realm.ArrayProto, 0)
		for _, k := range enumerableOwnStrings(o) {
			v, err := it.GetMember(o, values.StringKey(k))
			if err != nil {
				return nil, err
			}
			arr.AppendElement(v)
		}
		return arr, nil
	})
	def(ctor, "entries", 1, func(this values.Value, args []values.Value) (values.Value, error) {
		o, err := it.ToObject(firstArg(args))
		if err != nil {
			return nil, err
		}
		arr := values.NewArray(realm.ArrayProto, 0)
		for _, k := range enumerableOwnStrings(o) {
			v, err := it.GetMember(o, values.StringKey(k))
			if err != nil {
				return nil, err
			}
			pair := values.NewArray(realm.ArrayProto, 0)
			pair.AppendElement(values.String(k))
			pair.AppendElement(v)
			arr.AppendElement(pair)
		}
		return arr, nil
	})
	def(ctor, "assign", 2, func(this values.Value, args []values.Value) (values.Value, error) {
		if len(args) == 0 {
			return nil, it.NewThrow("TypeError", "Cannot convert undefined or null to object")
		}
		target, err := it.ToObject(args[0])
		if err != nil {
			return nil, err
		}
		for _, src := range args[1:] {
			if values.IsNullish(src) {
				continue
			}
			so, err := it.ToObject(src)
			if err != nil {
				return nil, err
			}
			for _, k := range enumerableOwnStrings(so) {
				v, err := it.GetMember(so, values.StringKey(k))
				if err != nil {
					return nil, err
				}
				if err := it.SetMember(target, values.StringKey(k), v); err != nil {
					return nil, err
				}
			}
		}
		return target, nil
	})
	def(ctor, "freeze", 1, func(this values.Value, args []values.Value) (values.Value, error) {
		if o, ok := firstArg(args).(*values.Object); ok {
			o.Freeze()
		}
		return firstArg(args), nil
	})
	def(ctor, "isFrozen", 1, func(this values.Value, args []values.Value) (values.Value, error) {
		o, ok := firstArg(args).(*values.Object)
		if !ok {
			return values.Boolean(true), nil
		}
		return values.Boolean(o.IsFrozen()), nil
	})
	def(ctor, "seal", 1, func(this values.Value, args []values.Value) (values.Value, error) {
		if o, ok := firstArg(args).(*values.Object); ok {
			o.Seal()
		}
		return firstArg(args), nil
	})
	def(ctor, "isSealed", 1, func(this values.Value, args []values.Value) (values.Value, error) {
		o, ok := firstArg(args).(*values.Object)
		if !ok {
			return values.Boolean(true), nil
		}
		return values.Boolean(o.IsSealed()), nil
	})
	def(ctor, "preventExtensions", 1, func(this values.Value, args []values.Value) (values.Value, error) {
		if o, ok := firstArg(args).(*values.Object); ok {
			o.PreventExtensions()
		}
		return firstArg(args), nil
	})
	def(ctor, "create", 2, func(this values.Value, args []values.Value) (values.Value, error) {
		var p *values.Object
		switch pv := firstArg(args).(type) {
		case *values.Object:
			p = pv
		case values.Null:
		default:
			return nil, it.NewThrow("TypeError", "Object prototype may only be an Object or null")
		}
		o := values.NewObject(p)
		if len(args) > 1 {
			if err := applyDescriptorMap(it, realm, o, args[1]); err != nil {
				return nil, err
			}
		}
		return o, nil
	})
	def(ctor, "getPrototypeOf", 1, func(this values.Value, args []values.Value) (values.Value, error) {
		o, err := it.ToObject(firstArg(args))
		if err != nil {
			return nil, err
		}
		if o.Proto == nil {
			return values.TheNull, nil
		}
		return o.Proto, nil
	})
	def(ctor, "setPrototypeOf", 2, func(this values.Value, args []values.Value) (values.Value, error) {
		o, ok := firstArg(args).(*values.Object)
		if !ok {
			return firstArg(args), nil
		}
		switch pv := argAt(args, 1).(type) {
		case *values.Object:
			o.Proto = pv
		case values.Null:
			o.Proto = nil
		}
		return o, nil
	})
	def(ctor, "defineProperty", 3, func(this values.Value, args []values.Value) (values.Value, error) {
		o, ok := firstArg(args).(*values.Object)
		if !ok {
			return nil, it.NewThrow("TypeError", "Object.defineProperty called on non-object")
		}
		key, err := toKey(it, argAt(args, 1))
		if err != nil {
			return nil, err
		}
		desc, err := toDescriptor(it, realm, argAt(args, 2))
		if err != nil {
			return nil, err
		}
		o.DefineOwn(key, desc)
		return o, nil
	})
	def(ctor, "defineProperties", 2, func(this values.Value, args []values.Value) (values.Value, error) {
		o, ok := firstArg(args).(*values.Object)
		if !ok {
			return nil, it.NewThrow("TypeError", "Object.defineProperties called on non-object")
		}
		if err := applyDescriptorMap(it, realm, o, argAt(args, 1)); err != nil {
			return nil, err
		}
		return o, nil
	})
	def(ctor, "getOwnPropertyNames", 1, func(this values.Value, args []values.Value) (values.Value, error) {
		o, err := it.ToObject(firstArg(args))
		if err != nil {
			return nil, err
		}
		arr := values.NewArray(realm.ArrayProto, 0)
		for _, n := range o.OwnPropertyNames() {
			arr.AppendElement(values.String(n))
		}
		return arr, nil
	})
	def(ctor, "getOwnPropertyDescriptor", 2, func(this values.Value, args []values.Value) (values.Value, error) {
		o, err := it.ToObject(firstArg(args))
		if err != nil {
			return nil, err
		}
		key, err := toKey(it, argAt(args, 1))
		if err != nil {
			return nil, err
		}
		d, ok := o.GetOwn(key)
		if !ok {
			return values.TheUndefined, nil
		}
		return descriptorToObject(realm, d), nil
	})
	def(ctor, "fromEntries", 1, func(this values.Value, args []values.Value) (values.Value, error) {
		entries, err := it.IterateToSlice(firstArg(args))
		if err != nil {
			return nil, err
		}
		o := values.NewObject(proto)
		for _, e := range entries {
			k, err := it.GetMember(e, values.StringKey("0"))
			if err != nil {
				return nil, err
			}
			v, err := it.GetMember(e, values.StringKey("1"))
			if err != nil {
				return nil, err
			}
			key, err := toKey(it, k)
			if err != nil {
				return nil, err
			}
			o.DefineOwn(key, values.DataProperty(v))
		}
		return o, nil
	})

	global.DefineOwn(values.StringKey("Object"), values.DataProperty(ctor))
}

func enumerableOwnStrings(o *values.Object) []string {
	var out []string
	for _, k := range o.OwnKeys() {
		if k.IsSymbol() {
			continue
		}
		d, _ := o.GetOwn(k)
		if d.Enumerable {
			out = append(out, k.Str)
		}
	}
	return out
}

func toKey(it *eval.Interpreter, v values.Value) (values.PropertyKey, error) {
	if s, ok := v.(*values.Symbol); ok {
		return values.SymbolKey(s), nil
	}
	s, err := it.ToString(v)
	if err != nil {
		return values.PropertyKey{}, err
	}
	return values.StringKey(s), nil
}

func toDescriptor(it *eval.Interpreter, realm *eval.Realm, v values.Value) (*values.PropertyDescriptor, error) {
	o, ok := v.(*values.Object)
	if !ok {
		return nil, it.NewThrow("TypeError", "Property description must be an object")
	}
	d := &values.PropertyDescriptor{}
	if get, ok := o.GetOwn(values.StringKey("get")); ok {
		if fn, ok := get.Value.(*values.Object); ok {
			d.Get, d.IsAccessor = fn, true
		}
	}
	if set, ok := o.GetOwn(values.StringKey("set")); ok {
		if fn, ok := set.Value.(*values.Object); ok {
			d.Set, d.IsAccessor = fn, true
		}
	}
	if !d.IsAccessor {
		if val, ok := o.GetOwn(values.StringKey("value")); ok {
			d.Value = val.Value
		} else {
			d.Value = values.TheUndefined
		}
	}
	if w, ok := o.GetOwn(values.StringKey("writable")); ok {
		d.Writable = eval.ToBoolean(w.Value)
	}
	if e, ok := o.GetOwn(values.StringKey("enumerable")); ok {
		d.Enumerable = eval.ToBoolean(e.Value)
	}
	if c, ok := o.GetOwn(values.StringKey("configurable")); ok {
		d.Configurable = eval.ToBoolean(c.Value)
	}
	return d, nil
}

func descriptorToObject(realm *eval.Realm, d *values.PropertyDescriptor) *values.Object {
	o := values.NewObject(realm.ObjectProto)
	if d.IsAccessor {
		if d.Get != nil {
			o.DefineOwn(values.StringKey("get"), values.DataProperty(d.Get))
		} else {
			o.DefineOwn(values.StringKey("get"), values.DataProperty(values.TheUndefined))
		}
		if d.Set != nil {
			o.DefineOwn(values.StringKey("set"), values.DataProperty(d.Set))
		} else {
			o.DefineOwn(values.StringKey("set"), values.DataProperty(values.TheUndefined))
		}
	} else {
		o.DefineOwn(values.StringKey("value"), values.DataProperty(d.Value))
		o.DefineOwn(values.StringKey("writable"), values.DataProperty(values.Boolean(d.Writable)))
	}
	o.DefineOwn(values.StringKey("enumerable"), values.DataProperty(values.Boolean(d.Enumerable)))
	o.DefineOwn(values.StringKey("configurable"), values.DataProperty(values.Boolean(d.Configurable)))
	return o
}

func applyDescriptorMap(it *eval.Interpreter, realm *eval.Realm, o *values.Object, mapVal values.Value) error {
	m, ok := mapVal.(*values.Object)
	if !ok {
		return it.NewThrow("TypeError", "Property descriptor map must be an object")
	}
	for _, k := range enumerableOwnStrings(m) {
		dv, err := it.GetMember(m, values.StringKey(k))
		if err != nil {
			return err
		}
		desc, err := toDescriptor(it, realm, dv)
		if err != nil {
			return err
		}
		o.DefineOwn(values.StringKey(k), desc)
	}
	return nil
}

func firstArg(args []values.Value) values.Value { return argAt(args, 0) }

func argAt(args []values.Value, i int) values.Value {
	if i < len(args) {
		return args[i]
	}
	return values.TheUndefined
}
