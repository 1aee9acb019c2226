// Package collectionsobj builds Map, Set, WeakMap, and WeakSet. Keys are
// compared with the SameValueZero algorithm (eval.SameValueZero), the
// same equality Map/Set keys use in real engines, not StrictEquals or
// Go's native map equality (which cannot hash *values.Object pointers
// meaningfully against a key type that includes boxed Numbers/NaN
// convergence).
//
// Backed by a simple ordered slice of entries rather than a Go map: guest
// keys can be arbitrary objects, and Map/Set iteration order must match
// insertion order, which a hash map keyed by an interface value would not
// preserve alongside correct SameValueZero comparisons.
package collectionsobj

import (
	"github.com/meko-tech/jsengine/internal/runtime/eval"
	"github.com/meko-tech/jsengine/internal/runtime/values"
)

type mapEntry struct {
	key, val values.Value
}

// MapData is the [[MapData]] internal slot shared by Map and WeakMap.
type MapData struct {
	entries []mapEntry
	weak    bool
}

// SetData is the [[SetData]] internal slot shared by Set and WeakSet.
type SetData struct {
	entries []values.Value
	weak    bool
}

func Install(it *eval.Interpreter, realm *eval.Realm, global *values.Object) {
	installMap(it, realm, global)
	installSet(it, realm, global)
	installWeakMap(it, realm, global)
	installWeakSet(it, realm, global)
}

func installMap(it *eval.Interpreter, realm *eval.Realm, global *values.Object) {
	proto := values.NewObject(realm.ObjectProto)
	proto.Class = "Map"
	realm.MapProto = proto

	def := func(name string, length int, fn values.NativeFunc) {
		proto.DefineOwn(values.StringKey(name), values.DataProperty(values.NewNativeFunction(realm.FunctionProto, name, length, fn)))
	}

	def("get", 1, func(this values.Value, args []values.Value) (values.Value, error) {
		md, err := mapData(it, this)
		if err != nil {
			return nil, err
		}
		k := argAt(args, 0)
		for _, e := range md.entries {
			if eval.SameValueZero(e.key, k) {
				return e.val, nil
			}
		}
		return values.TheUndefined, nil
	})
	def("set", 2, func(this values.Value, args []values.Value) (values.Value, error) {
		md, err := mapData(it, this)
		if err != nil {
			return nil, err
		}
		k, v := argAt(args, 0), argAt(args, 1)
		for i, e := range md.entries {
			if eval.SameValueZero(e.key, k) {
				md.entries[i].val = v
				return this, nil
			}
		}
		md.entries = append(md.entries, mapEntry{k, v})
		return this, nil
	})
	def("has", 1, func(this values.Value, args []values.Value) (values.Value, error) {
		md, err := mapData(it, this)
		if err != nil {
			return nil, err
		}
		k := argAt(args, 0)
		for _, e := range md.entries {
			if eval.SameValueZero(e.key, k) {
				return values.Boolean(true), nil
			}
		}
		return values.Boolean(false), nil
	})
	def("delete", 1, func(this values.Value, args []values.Value) (values.Value, error) {
		md, err := mapData(it, this)
		if err != nil {
			return nil, err
		}
		k := argAt(args, 0)
		for i, e := range md.entries {
			if eval.SameValueZero(e.key, k) {
				md.entries = append(md.entries[:i], md.entries[i+1:]...)
				return values.Boolean(true), nil
			}
		}
		return values.Boolean(false), nil
	})
	def("clear", 0, func(this values.Value, args []values.Value) (values.Value, error) {
		md, err := mapData(it, this)
		if err != nil {
			return nil, err
		}
		md.entries = nil
		return values.TheUndefined, nil
	})
	def("forEach", 1, func(this values.Value, args []values.Value) (values.Value, error) {
		md, err := mapData(it, this)
		if err != nil {
			return nil, err
		}
		cb, ok := argAt(args, 0).(*values.Object)
		if !ok || !cb.IsCallable() {
			return nil, it.NewThrow("TypeError", "callback is not a function")
		}
		for _, e := range md.entries {
			if _, err := it.Call(cb, argAt(args, 1), []values.Value{e.val, e.key, this}); err != nil {
				return nil, err
			}
		}
		return values.TheUndefined, nil
	})
	def("keys", 0, func(this values.Value, args []values.Value) (values.Value, error) {
		md, err := mapData(it, this)
		if err != nil {
			return nil, err
		}
		ks := make([]values.Value, len(md.entries))
		for i, e := range md.entries {
			ks[i] = e.key
		}
		return listIterator(realm, ks), nil
	})
	def("values", 0, func(this values.Value, args []values.Value) (values.Value, error) {
		md, err := mapData(it, this)
		if err != nil {
			return nil, err
		}
		vs := make([]values.Value, len(md.entries))
		for i, e := range md.entries {
			vs[i] = e.val
		}
		return listIterator(realm, vs), nil
	})
	def("entries", 0, func(this values.Value, args []values.Value) (values.Value, error) {
		md, err := mapData(it, this)
		if err != nil {
			return nil, err
		}
		es := make([]values.Value, len(md.entries))
		for i, e := range md.entries {
			pair := values.NewArray(realm.ArrayProto, 0)
			pair.AppendElement(e.key)
			pair.AppendElement(e.val)
			es[i] = pair
		}
		return listIterator(realm, es), nil
	})
	proto.DefineOwn(values.StringKey("size"), &values.PropertyDescriptor{
		IsAccessor: true,
		Get: values.NewNativeFunction(realm.FunctionProto, "size", 0, func(this values.Value, args []values.Value) (values.Value, error) {
			md, err := mapData(it, this)
			if err != nil {
				return nil, err
			}
			return values.Number(len(md.entries)), nil
		}),
	})

	fd := &values.FunctionData{
		Kind: values.FuncConstructor, Name: "Map", Length: 0,
		NativeConstruct: func(args []values.Value) (values.Value, error) {
			o := values.NewObject(proto)
			o.Class = "Map"
			md := &MapData{}
			o.Internal = md
			if len(args) > 0 && args[0] != values.TheUndefined && args[0] != values.TheNull {
				items, err := it.IterateToSlice(args[0])
				if err != nil {
					return nil, err
				}
				for _, item := range items {
					pair, err := it.IterateToSlice(item)
					if err != nil {
						return nil, err
					}
					k := argAt(pair, 0)
					v := argAt(pair, 1)
					md.entries = append(md.entries, mapEntry{k, v})
				}
			}
			return o, nil
		},
	}
	ctor := values.NewFunctionObject(realm.FunctionProto, fd, true, proto)
	ctor.DefineOwn(values.StringKey("prototype"), &values.PropertyDescriptor{Value: proto})
	global.DefineOwn(values.StringKey("Map"), values.DataProperty(ctor))
}

func installSet(it *eval.Interpreter, realm *eval.Realm, global *values.Object) {
	proto := values.NewObject(realm.ObjectProto)
	proto.Class = "Set"
	realm.SetProto = proto

	def := func(name string, length int, fn values.NativeFunc) {
		proto.DefineOwn(values.StringKey(name), values.DataProperty(values.NewNativeFunction(realm.FunctionProto, name, length, fn)))
	}

	def("add", 1, func(this values.Value, args []values.Value) (values.Value, error) {
		sd, err := setData(it, this)
		if err != nil {
			return nil, err
		}
		v := argAt(args, 0)
		for _, e := range sd.entries {
			if eval.SameValueZero(e, v) {
				return this, nil
			}
		}
		sd.entries = append(sd.entries, v)
		return this, nil
	})
	def("has", 1, func(this values.Value, args []values.Value) (values.Value, error) {
		sd, err := setData(it, this)
		if err != nil {
			return nil, err
		}
		v := argAt(args, 0)
		for _, e := range sd.entries {
			if eval.SameValueZero(e, v) {
				return values.Boolean(true), nil
			}
		}
		return values.Boolean(false), nil
	})
	def("delete", 1, func(this values.Value, args []values.Value) (values.Value, error) {
		sd, err := setData(it, this)
		if err != nil {
			return nil, err
		}
		v := argAt(args, 0)
		for i, e := range sd.entries {
			if eval.SameValueZero(e, v) {
				sd.entries = append(sd.entries[:i], sd.entries[i+1:]...)
				return values.Boolean(true), nil
			}
		}
		return values.Boolean(false), nil
	})
	def("clear", 0, func(this values.Value, args []values.Value) (values.Value, error) {
		sd, err := setData(it, this)
		if err != nil {
			return nil, err
		}
		sd.entries = nil
		return values.TheUndefined, nil
	})
	def("forEach", 1, func(this values.Value, args []values.Value) (values.Value, error) {
		sd, err := setData(it, this)
		if err != nil {
			return nil, err
		}
		cb, ok := argAt(args, 0).(*values.Object)
		if !ok || !cb.IsCallable() {
			return nil, it.NewThrow("TypeError", "callback is not a function")
		}
		for _, e := range sd.entries {
			if _, err := it.Call(cb, argAt(args, 1), []values.Value{e, e, this}); err != nil {
				return nil, err
			}
		}
		return values.TheUndefined, nil
	})
	valuesFn := func(this values.Value, args []values.Value) (values.Value, error) {
		sd, err := setData(it, this)
		if err != nil {
			return nil, err
		}
		return listIterator(realm, append([]values.Value(nil), sd.entries...)), nil
	}
	def("values", 0, valuesFn)
	def("keys", 0, valuesFn)
	proto.DefineOwn(values.StringKey("size"), &values.PropertyDescriptor{
		IsAccessor: true,
		Get: values.NewNativeFunction(realm.FunctionProto, "size", 0, func(this values.Value, args []values.Value) (values.Value, error) {
			sd, err := setData(it, this)
			if err != nil {
				return nil, err
			}
			return values.Number(len(sd.entries)), nil
		}),
	})

	fd := &values.FunctionData{
		Kind: values.FuncConstructor, Name: "Set", Length: 0,
		NativeConstruct: func(args []values.Value) (values.Value, error) {
			o := values.NewObject(proto)
			o.Class = "Set"
			sd := &SetData{}
			o.Internal = sd
			if len(args) > 0 && args[0] != values.TheUndefined && args[0] != values.TheNull {
				items, err := it.IterateToSlice(args[0])
				if err != nil {
					return nil, err
				}
				for _, v := range items {
					dup := false
					for _, e := range sd.entries {
						if eval.SameValueZero(e, v) {
							dup = true
							break
						}
					}
					if !dup {
						sd.entries = append(sd.entries, v)
					}
				}
			}
			return o, nil
		},
	}
	ctor := values.NewFunctionObject(realm.FunctionProto, fd, true, proto)
	ctor.DefineOwn(values.StringKey("prototype"), &values.PropertyDescriptor{Value: proto})
	global.DefineOwn(values.StringKey("Set"), values.DataProperty(ctor))
}

func installWeakMap(it *eval.Interpreter, realm *eval.Realm, global *values.Object) {
	proto := values.NewObject(realm.ObjectProto)
	proto.Class = "WeakMap"
	realm.WeakMapProto = proto

	def := func(name string, length int, fn values.NativeFunc) {
		proto.DefineOwn(values.StringKey(name), values.DataProperty(values.NewNativeFunction(realm.FunctionProto, name, length, fn)))
	}
	requireObjectKey := func(v values.Value) error {
		if _, ok := v.(*values.Object); !ok {
			return it.NewThrow("TypeError", "Invalid value used as weak map key")
		}
		return nil
	}
	def("set", 2, func(this values.Value, args []values.Value) (values.Value, error) {
		md, err := mapData(it, this)
		if err != nil {
			return nil, err
		}
		k := argAt(args, 0)
		if err := requireObjectKey(k); err != nil {
			return nil, err
		}
		v := argAt(args, 1)
		for i, e := range md.entries {
			if e.key == k {
				md.entries[i].val = v
				return this, nil
			}
		}
		md.entries = append(md.entries, mapEntry{k, v})
		return this, nil
	})
	def("get", 1, func(this values.Value, args []values.Value) (values.Value, error) {
		md, err := mapData(it, this)
		if err != nil {
			return nil, err
		}
		k := argAt(args, 0)
		for _, e := range md.entries {
			if e.key == k {
				return e.val, nil
			}
		}
		return values.TheUndefined, nil
	})
	def("has", 1, func(this values.Value, args []values.Value) (values.Value, error) {
		md, err := mapData(it, this)
		if err != nil {
			return nil, err
		}
		k := argAt(args, 0)
		for _, e := range md.entries {
			if e.key == k {
				return values.Boolean(true), nil
			}
		}
		return values.Boolean(false), nil
	})
	def("delete", 1, func(this values.Value, args []values.Value) (values.Value, error) {
		md, err := mapData(it, this)
		if err != nil {
			return nil, err
		}
		k := argAt(args, 0)
		for i, e := range md.entries {
			if e.key == k {
				md.entries = append(md.entries[:i], md.entries[i+1:]...)
				return values.Boolean(true), nil
			}
		}
		return values.Boolean(false), nil
	})

	fd := &values.FunctionData{
		Kind: values.FuncConstructor, Name: "WeakMap", Length: 0,
		NativeConstruct: func(args []values.Value) (values.Value, error) {
			o := values.NewObject(proto)
			o.Class = "WeakMap"
			o.Internal = &MapData{weak: true}
			return o, nil
		},
	}
	ctor := values.NewFunctionObject(realm.FunctionProto, fd, true, proto)
	ctor.DefineOwn(values.StringKey("prototype"), &values.PropertyDescriptor{Value: proto})
	global.DefineOwn(values.StringKey("WeakMap"), values.DataProperty(ctor))
}

func installWeakSet(it *eval.Interpreter, realm *eval.Realm, global *values.Object) {
	proto := values.NewObject(realm.ObjectProto)
	proto.Class = "WeakSet"
	realm.WeakSetProto = proto

	def := func(name string, length int, fn values.NativeFunc) {
		proto.DefineOwn(values.StringKey(name), values.DataProperty(values.NewNativeFunction(realm.FunctionProto, name, length, fn)))
	}
	def("add", 1, func(this values.Value, args []values.Value) (values.Value, error) {
		sd, err := setData(it, this)
		if err != nil {
			return nil, err
		}
		v := argAt(args, 0)
		if _, ok := v.(*values.Object); !ok {
			return nil, it.NewThrow("TypeError", "Invalid value used in weak set")
		}
		for _, e := range sd.entries {
			if e == v {
				return this, nil
			}
		}
		sd.entries = append(sd.entries, v)
		return this, nil
	})
	def("has", 1, func(this values.Value, args []values.Value) (values.Value, error) {
		sd, err := setData(it, this)
		if err != nil {
			return nil, err
		}
		v := argAt(args, 0)
		for _, e := range sd.entries {
			if e == v {
				return values.Boolean(true), nil
			}
		}
		return values.Boolean(false), nil
	})
	def("delete", 1, func(this values.Value, args []values.Value) (values.Value, error) {
		sd, err := setData(it, this)
		if err != nil {
			return nil, err
		}
		v := argAt(args, 0)
		for i, e := range sd.entries {
			if e == v {
				sd.entries = append(sd.entries[:i], sd.entries[i+1:]...)
				return values.Boolean(true), nil
			}
		}
		return values.Boolean(false), nil
	})

	fd := &values.FunctionData{
		Kind: values.FuncConstructor, Name: "WeakSet", Length: 0,
		NativeConstruct: func(args []values.Value) (values.Value, error) {
			o := values.NewObject(proto)
			o.Class = "WeakSet"
			o.Internal = &SetData{weak: true}
			return o, nil
		},
	}
	ctor := values.NewFunctionObject(realm.FunctionProto, fd, true, proto)
	ctor.DefineOwn(values.StringKey("prototype"), &values.PropertyDescriptor{Value: proto})
	global.DefineOwn(values.StringKey("WeakSet"), values.DataProperty(ctor))
}

func mapData(it *eval.Interpreter, v values.Value) (*MapData, error) {
	o, ok := v.(*values.Object)
	if ok {
		if md, ok := o.Internal.(*MapData); ok {
			return md, nil
		}
	}
	return nil, it.NewThrow("TypeError", "not a Map")
}

func setData(it *eval.Interpreter, v values.Value) (*SetData, error) {
	o, ok := v.(*values.Object)
	if ok {
		if sd, ok := o.Internal.(*SetData); ok {
			return sd, nil
		}
	}
	return nil, it.NewThrow("TypeError", "not a Set")
}

// listIterator builds a one-shot iterator object over items, implementing
// the iterator protocol (Symbol.iterator / next()) expected by for-of and
// destructuring.
func listIterator(realm *eval.Realm, items []values.Value) *values.Object {
	idx := 0
	iter := values.NewObject(realm.IteratorProto)
	iter.Class = "Map Iterator"
	iter.DefineOwn(values.StringKey("next"), values.DataProperty(values.NewNativeFunction(realm.FunctionProto, "next", 0, func(this values.Value, args []values.Value) (values.Value, error) {
		result := values.NewObject(realm.ObjectProto)
		if idx >= len(items) {
			result.DefineOwn(values.StringKey("done"), values.DataProperty(values.Boolean(true)))
			result.DefineOwn(values.StringKey("value"), values.DataProperty(values.TheUndefined))
			return result, nil
		}
		v := items[idx]
		idx++
		result.DefineOwn(values.StringKey("done"), values.DataProperty(values.Boolean(false)))
		result.DefineOwn(values.StringKey("value"), values.DataProperty(v))
		return result, nil
	})))
	iter.DefineOwn(values.SymbolKey(values.SymbolIterator), values.DataProperty(values.NewNativeFunction(realm.FunctionProto, "[Symbol.iterator]", 0, func(this values.Value, args []values.Value) (values.Value, error) {
		return iter, nil
	})))
	return iter
}

func argAt(args []values.Value, i int) values.Value {
	if i < len(args) {
		return args[i]
	}
	return values.TheUndefined
}
