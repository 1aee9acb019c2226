package values

// NewArray allocates an Array-class object with the given prototype
// (normally the realm's Array.prototype) and `length` set to length,
// with no elements stored, so every index below length is a hole.
// Array storage is just ordinary integer-keyed own properties: logically
// an object with integer-keyed entries and a length. This constructor
// only seeds the length property, since holes need no storage at all.
func NewArray(proto *Object, length uint32) *Object {
	a := NewObject(proto)
	a.Class = "Array"
	a.DefineOwn(StringKey("length"), &PropertyDescriptor{
		Value: Number(length), Writable: true,
	})
	return a
}

// Length reads the `length` own property as a uint32, for callers that
// already know o is an Array.
func (o *Object) Length() uint32 {
	d, ok := o.GetOwn(StringKey("length"))
	if !ok {
		return 0
	}
	n, ok := d.Value.(Number)
	if !ok {
		return 0
	}
	return uint32(n)
}

// SetLength implements the length-write truncation rule: writing a
// smaller length deletes every own integer-index property at or above
// the new length.
func (o *Object) SetLength(n uint32) {
	old := o.Length()
	if n < old {
		for i := n; i < old; i++ {
			o.DeleteOwn(indexKey(i))
		}
	}
	d, ok := o.GetOwn(StringKey("length"))
	if !ok {
		d = &PropertyDescriptor{Writable: true}
		o.DefineOwn(StringKey("length"), d)
	}
	d.Value = Number(n)
}

// indexKey builds the canonical string property key for array index i.
func indexKey(i uint32) PropertyKey {
	return StringKey(formatUint(i))
}

func formatUint(i uint32) string {
	if i == 0 {
		return "0"
	}
	var buf [10]byte
	pos := len(buf)
	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}
	return string(buf[pos:])
}

// AppendElement sets the element one past the current length, growing
// length by one, the storage step behind `push`.
func (o *Object) AppendElement(v Value) {
	idx := o.Length()
	o.DefineOwn(indexKey(idx), DataProperty(v))
	o.SetLength(idx + 1)
}

// GetElement reads array index i as an own data property value, or
// reports ok=false for a hole; reading a hole as undefined is the
// caller's job once ok is false.
func (o *Object) GetElement(i uint32) (Value, bool) {
	d, ok := o.GetOwn(indexKey(i))
	if !ok || d.IsAccessor {
		return nil, false
	}
	return d.Value, true
}

// SetElement writes array index i as an own data property, extending
// length if necessary.
func (o *Object) SetElement(i uint32, v Value) {
	o.DefineOwn(indexKey(i), DataProperty(v))
	if i >= o.Length() {
		o.SetLength(i + 1)
	}
}
