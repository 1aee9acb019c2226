// Package arrayobj builds the Array constructor and Array.prototype:
// push/pop/shift/unshift/slice/splice/concat/join/indexOf/includes/
// forEach/map/filter/reduce/reduceRight/find/findIndex/some/every/sort/
// reverse/flat/flatMap/fill plus Array.isArray/Array.from/Array.of.
// Array.prototype has no keys/values/entries methods.
package arrayobj

import (
	"sort"

	"github.com/meko-tech/jsengine/internal/runtime/eval"
	"github.com/meko-tech/jsengine/internal/runtime/values"
)

func Install(it *eval.Interpreter, realm *eval.Realm, global *values.Object) {
	proto := values.NewObject(realm.ObjectProto)
	proto.Class = "Array"
	proto.DefineOwn(values.StringKey("length"), &values.PropertyDescriptor{Value: values.Number(0), Writable: true})
	realm.ArrayProto = proto

	def := func(name string, length int, fn values.NativeFunc) {
		proto.DefineOwn(values.StringKey(name), values.DataProperty(values.NewNativeFunction(realm.FunctionProto, name, length, fn)))
	}

	def("push", 1, func(this values.Value, args []values.Value) (values.Value, error) {
		o, err := asArray(it, this)
		if err != nil {
			return nil, err
		}
		for _, a := range args {
			o.AppendElement(a)
		}
		return values.Number(o.Length()), nil
	})
	def("pop", 0, func(this values.Value, args []values.Value) (values.Value, error) {
		o, err := asArray(it, this)
		if err != nil {
			return nil, err
		}
		n := o.Length()
		if n == 0 {
			return values.TheUndefined, nil
		}
		v, _ := o.GetElement(n - 1)
		o.SetLength(n - 1)
		if v == nil {
			v = values.TheUndefined
		}
		return v, nil
	})
	def("shift", 0, func(this values.Value, args []values.Value) (values.Value, error) {
		o, err := asArray(it, this)
		if err != nil {
			return nil, err
		}
		n := o.Length()
		if n == 0 {
			return values.TheUndefined, nil
		}
		first, _ := o.GetElement(0)
		for i := uint32(1); i < n; i++ {
			v, ok := o.GetElement(i)
			if ok {
				o.SetElement(i-1, v)
			}
		}
		o.SetLength(n - 1)
		if first == nil {
			first = values.TheUndefined
		}
		return first, nil
	})
	def("unshift", 1, func(this values.Value, args []values.Value) (values.Value, error) {
		o, err := asArray(it, this)
		if err != nil {
			return nil, err
		}
		n := o.Length()
		k := uint32(len(args))
		for i := n; i > 0; i-- {
			v, ok := o.GetElement(i - 1)
			if ok {
				o.SetElement(i-1+k, v)
			}
		}
		for i, a := range args {
			o.SetElement(uint32(i), a)
		}
		return values.Number(o.Length()), nil
	})
	def("slice", 2, func(this values.Value, args []values.Value) (values.Value, error) {
		o, err := asArray(it, this)
		if err != nil {
			return nil, err
		}
		n := int(o.Length())
		start, end := sliceBounds(it, args, n)
		out := values.NewArray(realm.ArrayProto, 0)
		for i := start; i < end; i++ {
			if v, ok := o.GetElement(uint32(i)); ok {
				out.AppendElement(v)
			} else {
				out.AppendElement(values.TheUndefined)
			}
		}
		return out, nil
	})
	def("splice", 2, func(this values.Value, args []values.Value) (values.Value, error) {
		o, err := asArray(it, this)
		if err != nil {
			return nil, err
		}
		n := int(o.Length())
		start := normalizeIndex(argNum(it, args, 0, 0), n)
		deleteCount := n - start
		if len(args) > 1 {
			dc, err := it.ToNumber(args[1])
			if err != nil {
				return nil, err
			}
			deleteCount = clampInt(int(dc), 0, n-start)
		}
		removed := values.NewArray(realm.ArrayProto, 0)
		var tail []values.Value
		for i := start; i < start+deleteCount; i++ {
			if v, ok := o.GetElement(uint32(i)); ok {
				removed.AppendElement(v)
			} else {
				removed.AppendElement(values.TheUndefined)
			}
		}
		for i := start + deleteCount; i < n; i++ {
			v, _ := o.GetElement(uint32(i))
			if v == nil {
				v = values.TheUndefined
			}
			tail = append(tail, v)
		}
		items := args
		if len(items) > 2 {
			items = items[2:]
		} else {
			items = nil
		}
		newLen := start
		for _, v := range items {
			o.SetElement(uint32(newLen), v)
			newLen++
		}
		for _, v := range tail {
			o.SetElement(uint32(newLen), v)
			newLen++
		}
		o.SetLength(uint32(newLen))
		return removed, nil
	})
	def("concat", 1, func(this values.Value, args []values.Value) (values.Value, error) {
		o, err := asArray(it, this)
		if err != nil {
			return nil, err
		}
		out := values.NewArray(realm.ArrayProto, 0)
		appendAll(out, o)
		for _, a := range args {
			if ao, ok := a.(*values.Object); ok && ao.Class == "Array" {
				appendAll(out, ao)
				continue
			}
			out.AppendElement(a)
		}
		return out, nil
	})
	def("join", 1, func(this values.Value, args []values.Value) (values.Value, error) {
		o, err := asArray(it, this)
		if err != nil {
			return nil, err
		}
		sep := ","
		if len(args) > 0 && args[0] != values.TheUndefined {
			s, err := it.ToString(args[0])
			if err != nil {
				return nil, err
			}
			sep = s
		}
		n := o.Length()
		out := ""
		for i := uint32(0); i < n; i++ {
			if i > 0 {
				out += sep
			}
			v, ok := o.GetElement(i)
			if !ok || values.IsNullish(v) {
				continue
			}
			s, err := it.ToString(v)
			if err != nil {
				return nil, err
			}
			out += s
		}
		return values.String(out), nil
	})
	def("indexOf", 1, func(this values.Value, args []values.Value) (values.Value, error) {
		o, err := asArray(it, this)
		if err != nil {
			return nil, err
		}
		target := argAt(args, 0)
		n := o.Length()
		for i := uint32(0); i < n; i++ {
			v, ok := o.GetElement(i)
			if ok && eval.StrictEquals(v, target) {
				return values.Number(i), nil
			}
		}
		return values.Number(-1), nil
	})
	def("includes", 1, func(this values.Value, args []values.Value) (values.Value, error) {
		o, err := asArray(it, this)
		if err != nil {
			return nil, err
		}
		target := argAt(args, 0)
		n := o.Length()
		for i := uint32(0); i < n; i++ {
			v, _ := o.GetElement(i)
			if v == nil {
				v = values.TheUndefined
			}
			if eval.SameValueZero(v, target) {
				return values.Boolean(true), nil
			}
		}
		return values.Boolean(false), nil
	})
	def("reverse", 0, func(this values.Value, args []values.Value) (values.Value, error) {
		o, err := asArray(it, this)
		if err != nil {
			return nil, err
		}
		n := o.Length()
		for i := uint32(0); i*2 < n; i++ {
			j := n - 1 - i
			vi, _ := o.GetElement(i)
			vj, _ := o.GetElement(j)
			if vi == nil {
				vi = values.TheUndefined
			}
			if vj == nil {
				vj = values.TheUndefined
			}
			o.SetElement(i, vj)
			o.SetElement(j, vi)
		}
		return o, nil
	})
	def("forEach", 1, func(this values.Value, args []values.Value) (values.Value, error) {
		return values.TheUndefined, eachElement(it, this, args, func(v values.Value, i uint32, fn *values.Object, thisArg values.Value) error {
			_, err := it.Call(fn, thisArg, []values.Value{v, values.Number(i), this})
			return err
		})
	})
	def("map", 1, func(this values.Value, args []values.Value) (values.Value, error) {
		o, err := asArray(it, this)
		if err != nil {
			return nil, err
		}
		out := values.NewArray(realm.ArrayProto, 0)
		err = eachElement(it, this, args, func(v values.Value, i uint32, fn *values.Object, thisArg values.Value) error {
			r, err := it.Call(fn, thisArg, []values.Value{v, values.Number(i), o})
			if err != nil {
				return err
			}
			out.SetElement(i, r)
			return nil
		})
		return out, err
	})
	def("filter", 1, func(this values.Value, args []values.Value) (values.Value, error) {
		o, err := asArray(it, this)
		if err != nil {
			return nil, err
		}
		out := values.NewArray(realm.ArrayProto, 0)
		err = eachElement(it, this, args, func(v values.Value, i uint32, fn *values.Object, thisArg values.Value) error {
			r, err := it.Call(fn, thisArg, []values.Value{v, values.Number(i), o})
			if err != nil {
				return err
			}
			if eval.ToBoolean(r) {
				out.AppendElement(v)
			}
			return nil
		})
		return out, err
	})
	def("find", 1, func(this values.Value, args []values.Value) (values.Value, error) {
		var found values.Value = values.TheUndefined
		err := eachElement(it, this, args, func(v values.Value, i uint32, fn *values.Object, thisArg values.Value) error {
			r, err := it.Call(fn, thisArg, []values.Value{v, values.Number(i), this})
			if err != nil {
				return err
			}
			if eval.ToBoolean(r) && found == values.TheUndefined {
				found = v
			}
			return nil
		})
		return found, err
	})
	def("findIndex", 1, func(this values.Value, args []values.Value) (values.Value, error) {
		found := -1
		err := eachElement(it, this, args, func(v values.Value, i uint32, fn *values.Object, thisArg values.Value) error {
			if found >= 0 {
				return nil
			}
			r, err := it.Call(fn, thisArg, []values.Value{v, values.Number(i), this})
			if err != nil {
				return err
			}
			if eval.ToBoolean(r) {
				found = int(i)
			}
			return nil
		})
		return values.Number(found), err
	})
	def("some", 1, func(this values.Value, args []values.Value) (values.Value, error) {
		found := false
		err := eachElement(it, this, args, func(v values.Value, i uint32, fn *values.Object, thisArg values.Value) error {
			if found {
				return nil
			}
			r, err := it.Call(fn, thisArg, []values.Value{v, values.Number(i), this})
			if err != nil {
				return err
			}
			if eval.ToBoolean(r) {
				found = true
			}
			return nil
		})
		return values.Boolean(found), err
	})
	def("every", 1, func(this values.Value, args []values.Value) (values.Value, error) {
		all := true
		err := eachElement(it, this, args, func(v values.Value, i uint32, fn *values.Object, thisArg values.Value) error {
			if !all {
				return nil
			}
			r, err := it.Call(fn, thisArg, []values.Value{v, values.Number(i), this})
			if err != nil {
				return err
			}
			if !eval.ToBoolean(r) {
				all = false
			}
			return nil
		})
		return values.Boolean(all), err
	})
	def("reduce", 1, func(this values.Value, args []values.Value) (values.Value, error) {
		return reduce(it, this, args, false)
	})
	def("reduceRight", 1, func(this values.Value, args []values.Value) (values.Value, error) {
		return reduce(it, this, args, true)
	})
	def("sort", 1, func(this values.Value, args []values.Value) (values.Value, error) {
		o, err := asArray(it, this)
		if err != nil {
			return nil, err
		}
		n := int(o.Length())
		vals := make([]values.Value, n)
		for i := 0; i < n; i++ {
			v, ok := o.GetElement(uint32(i))
			if !ok {
				v = values.TheUndefined
			}
			vals[i] = v
		}
		var cmpFn *values.Object
		if len(args) > 0 {
			cmpFn, _ = args[0].(*values.Object)
		}
		var sortErr error
		sort.SliceStable(vals, func(i, j int) bool {
			if sortErr != nil {
				return false
			}
			if cmpFn != nil {
				r, err := it.Call(cmpFn, values.TheUndefined, []values.Value{vals[i], vals[j]})
				if err != nil {
					sortErr = err
					return false
				}
				n, _ := it.ToNumber(r)
				return n < 0
			}
			si, _ := it.ToString(vals[i])
			sj, _ := it.ToString(vals[j])
			return si < sj
		})
		if sortErr != nil {
			return nil, sortErr
		}
		for i, v := range vals {
			o.SetElement(uint32(i), v)
		}
		return o, nil
	})
	def("fill", 1, func(this values.Value, args []values.Value) (values.Value, error) {
		o, err := asArray(it, this)
		if err != nil {
			return nil, err
		}
		n := int(o.Length())
		v := argAt(args, 0)
		start, end := sliceBounds(it, args[minInt(1, len(args)):], n)
		for i := start; i < end; i++ {
			o.SetElement(uint32(i), v)
		}
		return o, nil
	})
	def("flat", 0, func(this values.Value, args []values.Value) (values.Value, error) {
		o, err := asArray(it, this)
		if err != nil {
			return nil, err
		}
		depth := 1
		if len(args) > 0 {
			d, err := it.ToNumber(args[0])
			if err != nil {
				return nil, err
			}
			depth = int(d)
		}
		out := values.NewArray(realm.ArrayProto, 0)
		flatten(o, depth, out)
		return out, nil
	})
	def("flatMap", 1, func(this values.Value, args []values.Value) (values.Value, error) {
		o, err := asArray(it, this)
		if err != nil {
			return nil, err
		}
		mapped := values.NewArray(realm.ArrayProto, 0)
		err = eachElement(it, this, args, func(v values.Value, i uint32, fn *values.Object, thisArg values.Value) error {
			r, err := it.Call(fn, thisArg, []values.Value{v, values.Number(i), o})
			if err != nil {
				return err
			}
			mapped.AppendElement(r)
			return nil
		})
		if err != nil {
			return nil, err
		}
		out := values.NewArray(realm.ArrayProto, 0)
		flatten(mapped, 1, out)
		return out, nil
	})

	fd := &values.FunctionData{
		Kind: values.FuncConstructor, Name: "Array", Length: 1,
		Native: func(this values.Value, args []values.Value) (values.Value, error) {
			if len(args) == 1 {
				if n, ok := args[0].(values.Number); ok {
					return values.NewArray(realm.ArrayProto, uint32(n)), nil
				}
			}
			out := values.NewArray(realm.ArrayProto, 0)
			for _, a := range args {
				out.AppendElement(a)
			}
			return out, nil
		},
	}
	ctor := values.NewFunctionObject(realm.FunctionProto, fd, true, proto)
	ctor.DefineOwn(values.StringKey("prototype"), &values.PropertyDescriptor{Value: proto})

	ctor.DefineOwn(values.StringKey("isArray"), values.DataProperty(values.NewNativeFunction(realm.FunctionProto, "isArray", 1, func(this values.Value, args []values.Value) (values.Value, error) {
		o, ok := argAt(args, 0).(*values.Object)
		return values.Boolean(ok && o.Class == "Array"), nil
	})))
	ctor.DefineOwn(values.StringKey("of"), values.DataProperty(values.NewNativeFunction(realm.FunctionProto, "of", 0, func(this values.Value, args []values.Value) (values.Value, error) {
		out := values.NewArray(realm.ArrayProto, 0)
		for _, a := range args {
			out.AppendElement(a)
		}
		return out, nil
	})))
	ctor.DefineOwn(values.StringKey("from"), values.DataProperty(values.NewNativeFunction(realm.FunctionProto, "from", 1, func(this values.Value, args []values.Value) (values.Value, error) {
		src := argAt(args, 0)
		var mapFn *values.Object
		if len(args) > 1 {
			mapFn, _ = args[1].(*values.Object)
		}
		out := values.NewArray(realm.ArrayProto, 0)
		items, err := arrayLikeOrIterable(it, src)
		if err != nil {
			return nil, err
		}
		for i, v := range items {
			if mapFn != nil {
				r, err := it.Call(mapFn, values.TheUndefined, []values.Value{v, values.Number(i)})
				if err != nil {
					return nil, err
				}
				v = r
			}
			out.AppendElement(v)
		}
		return out, nil
	})))

	global.DefineOwn(values.StringKey("Array"), values.DataProperty(ctor))
}

func arrayLikeOrIterable(it *eval.Interpreter, v values.Value) ([]values.Value, error) {
	if o, ok := v.(*values.Object); ok {
		if _, handled := o.GetOwn(values.SymbolKey(values.SymbolIterator)); !handled {
			n := o.Length()
			out := make([]values.Value, 0, n)
			for i := uint32(0); i < n; i++ {
				ev, ok := o.GetElement(i)
				if !ok {
					ev = values.TheUndefined
				}
				out = append(out, ev)
			}
			return out, nil
		}
	}
	return it.IterateToSlice(v)
}

func flatten(o *values.Object, depth int, out *values.Object) {
	n := o.Length()
	for i := uint32(0); i < n; i++ {
		v, ok := o.GetElement(i)
		if !ok {
			continue
		}
		if inner, ok := v.(*values.Object); ok && inner.Class == "Array" && depth > 0 {
			flatten(inner, depth-1, out)
			continue
		}
		out.AppendElement(v)
	}
}

func reduce(it *eval.Interpreter, this values.Value, args []values.Value, right bool) (values.Value, error) {
	o, err := asArray(it, this)
	if err != nil {
		return nil, err
	}
	fn, ok := argAt(args, 0).(*values.Object)
	if !ok || !fn.IsCallable() {
		return nil, it.NewThrow("TypeError", "reduce callback is not a function")
	}
	n := int(o.Length())
	idxs := make([]int, n)
	for i := range idxs {
		if right {
			idxs[i] = n - 1 - i
		} else {
			idxs[i] = i
		}
	}
	var acc values.Value
	start := 0
	if len(args) > 1 {
		acc = args[1]
	} else {
		if n == 0 {
			return nil, it.NewThrow("TypeError", "Reduce of empty array with no initial value")
		}
		v, ok := o.GetElement(uint32(idxs[0]))
		if !ok {
			v = values.TheUndefined
		}
		acc = v
		start = 1
	}
	for _, i := range idxs[start:] {
		v, ok := o.GetElement(uint32(i))
		if !ok {
			v = values.TheUndefined
		}
		r, err := it.Call(fn, values.TheUndefined, []values.Value{acc, v, values.Number(i), o})
		if err != nil {
			return nil, err
		}
		acc = r
	}
	return acc, nil
}

func eachElement(it *eval.Interpreter, this values.Value, args []values.Value, body func(v values.Value, i uint32, fn *values.Object, thisArg values.Value) error) error {
	o, err := asArray(it, this)
	if err != nil {
		return err
	}
	fn, ok := argAt(args, 0).(*values.Object)
	if !ok || !fn.IsCallable() {
		return it.NewThrow("TypeError", "callback is not a function")
	}
	thisArg := values.Value(values.TheUndefined)
	if len(args) > 1 {
		thisArg = args[1]
	}
	n := o.Length()
	for i := uint32(0); i < n; i++ {
		v, ok := o.GetElement(i)
		if !ok {
			continue
		}
		if err := body(v, i, fn, thisArg); err != nil {
			return err
		}
	}
	return nil
}

func appendAll(dst, src *values.Object) {
	n := src.Length()
	for i := uint32(0); i < n; i++ {
		v, ok := src.GetElement(i)
		if !ok {
			v = values.TheUndefined
		}
		dst.AppendElement(v)
	}
}

func asArray(it *eval.Interpreter, v values.Value) (*values.Object, error) {
	o, ok := v.(*values.Object)
	if !ok {
		return nil, it.NewThrow("TypeError", "Array.prototype method called on non-object")
	}
	return o, nil
}

func sliceBounds(it *eval.Interpreter, args []values.Value, n int) (int, int) {
	start := normalizeIndex(argNum(it, args, 0, 0), n)
	end := n
	if len(args) > 1 && args[1] != values.TheUndefined {
		end = normalizeIndex(argNum(it, args, 1, float64(n)), n)
	}
	if end < start {
		end = start
	}
	return start, end
}

func normalizeIndex(f float64, n int) int {
	i := int(f)
	if i < 0 {
		i += n
	}
	return clampInt(i, 0, n)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func argNum(it *eval.Interpreter, args []values.Value, i int, fallback float64) float64 {
	if i >= len(args) || args[i] == values.TheUndefined {
		return fallback
	}
	n, err := it.ToNumber(args[i])
	if err != nil {
		return fallback
	}
	return n
}

func argAt(args []values.Value, i int) values.Value {
	if i < len(args) {
		return args[i]
	}
	return values.TheUndefined
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
