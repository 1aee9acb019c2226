package values

// ArrayBufferData is the internal slot set of an ArrayBuffer object: a
// fixed or resizable backing buffer with byteLength and maxByteLength.
// Bytes is resliced in place on Resize; views over it re-read
// ByteLength on every access rather than caching it, which is what
// makes re-checking bounds after any coercion possible without extra
// bookkeeping.
type ArrayBufferData struct {
	Bytes      []byte
	MaxByteLen int // -1 when the buffer is not resizable
	Resizable  bool
}

func NewArrayBuffer(byteLength int) *ArrayBufferData {
	return &ArrayBufferData{Bytes: make([]byte, byteLength), MaxByteLen: -1}
}

func NewResizableArrayBuffer(byteLength, maxByteLength int) *ArrayBufferData {
	b := make([]byte, byteLength, maxByteLength)
	return &ArrayBufferData{Bytes: b, MaxByteLen: maxByteLength, Resizable: true}
}

func (b *ArrayBufferData) ByteLength() int { return len(b.Bytes) }

// Resize grows or shrinks a resizable buffer in place, zero-filling any
// newly exposed bytes.
func (b *ArrayBufferData) Resize(newLen int) bool {
	if !b.Resizable || newLen > b.MaxByteLen || newLen < 0 {
		return false
	}
	if newLen <= cap(b.Bytes) {
		old := len(b.Bytes)
		b.Bytes = b.Bytes[:newLen]
		for i := old; i < newLen; i++ {
			b.Bytes[i] = 0
		}
		return true
	}
	grown := make([]byte, newLen)
	copy(grown, b.Bytes)
	b.Bytes = grown
	return true
}

// TypedArrayElemKind names the element type backing a TypedArray view.
type TypedArrayElemKind string

const (
	ElemInt8      TypedArrayElemKind = "Int8"
	ElemUint8     TypedArrayElemKind = "Uint8"
	ElemUint8C    TypedArrayElemKind = "Uint8Clamped"
	ElemInt16     TypedArrayElemKind = "Int16"
	ElemUint16    TypedArrayElemKind = "Uint16"
	ElemInt32     TypedArrayElemKind = "Int32"
	ElemUint32    TypedArrayElemKind = "Uint32"
	ElemFloat32   TypedArrayElemKind = "Float32"
	ElemFloat64   TypedArrayElemKind = "Float64"
	ElemBigInt64  TypedArrayElemKind = "BigInt64"
	ElemBigUint64 TypedArrayElemKind = "BigUint64"
)

// ElemSize returns the byte width of one element of kind k.
func ElemSize(k TypedArrayElemKind) int {
	switch k {
	case ElemInt8, ElemUint8, ElemUint8C:
		return 1
	case ElemInt16, ElemUint16:
		return 2
	case ElemInt32, ElemUint32, ElemFloat32:
		return 4
	case ElemFloat64, ElemBigInt64, ElemBigUint64:
		return 8
	default:
		return 1
	}
}

// TypedArrayData is the internal slot set of a TypedArray view object:
// it carries byteOffset, length, and either a fixed length or a
// length-tracking flag.
type TypedArrayData struct {
	Buffer         *ArrayBufferData
	ElemKind       TypedArrayElemKind
	ByteOffset     int
	FixedLength    int  // element count, meaningful when !LengthTracking
	LengthTracking bool // true for `new Int8Array(buf)` with no explicit length
}

// Length returns the view's current element count, honoring
// length-tracking views whose length follows the buffer's current size.
// Length does not check bounds: a fixed-length view keeps reporting
// FixedLength after a shrinking resize, so callers check OutOfBounds
// first and treat an out-of-bounds view as zero-length.
func (t *TypedArrayData) Length() int {
	if t.LengthTracking {
		avail := t.Buffer.ByteLength() - t.ByteOffset
		if avail < 0 {
			return 0
		}
		return avail / ElemSize(t.ElemKind)
	}
	return t.FixedLength
}

// OutOfBounds reports whether the view no longer fits within its
// buffer's current byte length, in which case it must behave as
// zero-length and most methods must throw.
func (t *TypedArrayData) OutOfBounds() bool {
	need := t.ByteOffset
	if !t.LengthTracking {
		need += t.FixedLength * ElemSize(t.ElemKind)
	}
	return t.ByteOffset > t.Buffer.ByteLength() || need > t.Buffer.ByteLength()
}

func NewTypedArray(proto *Object, data *TypedArrayData) *Object {
	o := NewObject(proto)
	o.Class = string(data.ElemKind) + "Array"
	o.Internal = data
	return o
}
