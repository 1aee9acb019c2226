package eval

import (
	"encoding/binary"
	"math"

	"github.com/meko-tech/jsengine/internal/runtime/values"
)

// getTypedArrayIndex reads element key (if it is a canonical numeric
// index) from a TypedArray view, re-validating the view's bounds first:
// a resize that ran via a user callback between the index being
// computed and this read must be observed here, not assumed away.
func (it *Interpreter) getTypedArrayIndex(ta *values.TypedArrayData, key values.PropertyKey) (values.Value, bool) {
	if key.IsSymbol() {
		return nil, false
	}
	idx, ok := stringIndex(key.Str)
	if !ok {
		return nil, false
	}
	if ta.OutOfBounds() || idx >= ta.Length() {
		return values.TheUndefined, true
	}
	return readElem(ta, idx), true
}

func (it *Interpreter) setTypedArrayIndex(ta *values.TypedArrayData, key values.PropertyKey, v values.Value) (bool, error) {
	if key.IsSymbol() {
		return false, nil
	}
	idx, ok := stringIndex(key.Str)
	if !ok {
		return false, nil
	}
	n, err := it.ToNumber(v) // may invoke valueOf/toString - a resize can happen here
	if err != nil {
		return true, err
	}
	// Re-check bounds after the coercion above, per the resolved open
	// question: a prior length must not be trusted past a user callback.
	if ta.OutOfBounds() || idx >= ta.Length() {
		return true, it.NewThrow("RangeError", "Offset is outside the bounds of the DataView")
	}
	writeElem(ta, idx, n)
	return true, nil
}

func elemOffset(ta *values.TypedArrayData, idx int) int {
	return ta.ByteOffset + idx*values.ElemSize(ta.ElemKind)
}

func readElem(ta *values.TypedArrayData, idx int) values.Value {
	b := ta.Buffer.Bytes
	off := elemOffset(ta, idx)
	switch ta.ElemKind {
	case values.ElemInt8:
		return values.Number(int8(b[off]))
	case values.ElemUint8, values.ElemUint8C:
		return values.Number(b[off])
	case values.ElemInt16:
		return values.Number(int16(binary.LittleEndian.Uint16(b[off:])))
	case values.ElemUint16:
		return values.Number(binary.LittleEndian.Uint16(b[off:]))
	case values.ElemInt32:
		return values.Number(int32(binary.LittleEndian.Uint32(b[off:])))
	case values.ElemUint32:
		return values.Number(binary.LittleEndian.Uint32(b[off:]))
	case values.ElemFloat32:
		return values.Number(math.Float32frombits(binary.LittleEndian.Uint32(b[off:])))
	case values.ElemFloat64:
		return values.Number(math.Float64frombits(binary.LittleEndian.Uint64(b[off:])))
	default:
		return values.Number(0)
	}
}

func writeElem(ta *values.TypedArrayData, idx int, n float64) {
	b := ta.Buffer.Bytes
	off := elemOffset(ta, idx)
	switch ta.ElemKind {
	case values.ElemInt8, values.ElemUint8:
		b[off] = byte(int64(n))
	case values.ElemUint8C:
		c := n
		if c < 0 {
			c = 0
		} else if c > 255 {
			c = 255
		}
		b[off] = byte(c + 0.5)
	case values.ElemInt16, values.ElemUint16:
		binary.LittleEndian.PutUint16(b[off:], uint16(int64(n)))
	case values.ElemInt32, values.ElemUint32:
		binary.LittleEndian.PutUint32(b[off:], uint32(int64(n)))
	case values.ElemFloat32:
		binary.LittleEndian.PutUint32(b[off:], math.Float32bits(float32(n)))
	case values.ElemFloat64:
		binary.LittleEndian.PutUint64(b[off:], math.Float64bits(n))
	}
}
