package eval

import (
	"github.com/meko-tech/jsengine/internal/runtime/values"
)

// getProperty implements [[Get]] on an object: walk the prototype chain
// for the first own descriptor, invoking its getter if it is an accessor,
// or returning undefined if no descriptor is found anywhere in the
// chain.
func (it *Interpreter) getProperty(o *values.Object, key values.PropertyKey) (values.Value, error) {
	for cur := o; cur != nil; cur = cur.Proto {
		if d, ok := cur.GetOwn(key); ok {
			if d.IsAccessor {
				if d.Get == nil {
					return values.TheUndefined, nil
				}
				return it.Call(d.Get, o, nil)
			}
			return d.Value, nil
		}
	}
	return values.TheUndefined, nil
}

// GetMember implements member access on any receiver, boxing primitives
// as needed, and reading the array/string `length` virtual property and
// TypedArray index access.
func (it *Interpreter) GetMember(receiver values.Value, key values.PropertyKey) (values.Value, error) {
	if values.IsNullish(receiver) {
		return nil, it.NewThrow("TypeError", "Cannot read properties of %s (reading '%s')", receiver.String(), key.String())
	}
	if o, ok := receiver.(*values.Object); ok {
		if ta, ok := o.Internal.(*values.TypedArrayData); ok {
			if v, handled := it.getTypedArrayIndex(ta, key); handled {
				return v, nil
			}
		}
		return it.getProperty(o, key)
	}
	// Primitive receiver: box it so prototype-chain lookup still works,
	// without retaining the box, e.g. "abc".toUpperCase().
	boxed, err := it.ToObject(receiver)
	if err != nil {
		return nil, err
	}
	if s, ok := receiver.(values.String); ok && !key.IsSymbol() {
		if idx, ok := stringIndex(key.Str); ok {
			runes := []rune(string(s))
			if idx >= 0 && idx < len(runes) {
				return values.String(string(runes[idx])), nil
			}
			return values.TheUndefined, nil
		}
	}
	return it.getProperty(boxed, key)
}

func stringIndex(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, true
}

// setProperty implements [[Set]]: walk the chain for an accessor to
// invoke its setter; otherwise write (or create) an own data property on
// o itself.
func (it *Interpreter) setProperty(o *values.Object, key values.PropertyKey, v values.Value) error {
	for cur := o; cur != nil; cur = cur.Proto {
		if d, ok := cur.GetOwn(key); ok {
			if d.IsAccessor {
				if d.Set == nil {
					return nil // silently ignored outside strict mode
				}
				_, err := it.Call(d.Set, o, []values.Value{v})
				return err
			}
			if cur == o {
				if !d.Writable {
					return nil
				}
				d.Value = v
				return nil
			}
			break
		}
	}
	if !o.Extensible {
		return nil
	}
	o.DefineOwn(key, values.DataProperty(v))
	return nil
}

// SetMember implements assignment through a Member expression, including
// Array `length` truncation and TypedArray index writes.
func (it *Interpreter) SetMember(receiver values.Value, key values.PropertyKey, v values.Value) error {
	o, ok := receiver.(*values.Object)
	if !ok {
		return nil // assigning through a primitive receiver is a silent no-op
	}
	if ta, ok := o.Internal.(*values.TypedArrayData); ok {
		if handled, err := it.setTypedArrayIndex(ta, key, v); handled {
			return err
		}
	}
	if o.Class == "Array" && !key.IsSymbol() && key.Str == "length" {
		n, err := it.ToNumber(v)
		if err != nil {
			return err
		}
		o.SetLength(uint32(n))
		return nil
	}
	return it.setProperty(o, key, v)
}

// HasProperty implements the `in` operator and for-in enumeration's
// existence check, walking the prototype chain.
func (it *Interpreter) HasProperty(o *values.Object, key values.PropertyKey) bool {
	for cur := o; cur != nil; cur = cur.Proto {
		if cur.HasOwn(key) {
			return true
		}
	}
	return false
}

// DeleteProperty implements `delete obj.prop`.
func (it *Interpreter) DeleteProperty(o *values.Object, key values.PropertyKey) (bool, error) {
	if d, ok := o.GetOwn(key); ok && !d.Configurable {
		return false, nil
	}
	o.DeleteOwn(key)
	return true, nil
}

// EnumerableStringKeys collects every enumerable string-keyed property
// name reachable from o's own properties and its prototype chain,
// without duplicates, in first-seen order - for-in's enumeration
// order.
func (it *Interpreter) EnumerableStringKeys(o *values.Object) []string {
	seen := make(map[string]bool)
	var out []string
	for cur := o; cur != nil; cur = cur.Proto {
		for _, k := range cur.OwnKeys() {
			if k.IsSymbol() || seen[k.Str] {
				continue
			}
			seen[k.Str] = true
			d, _ := cur.GetOwn(k)
			if d.Enumerable {
				out = append(out, k.Str)
			}
		}
	}
	return out
}
