package values

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeOf(t *testing.T) {
	cases := []struct {
		name string
		v    Value
		want string
	}{
		{"undefined", TheUndefined, "undefined"},
		{"null", TheNull, "object"},
		{"boolean", Boolean(true), "boolean"},
		{"number", Number(1), "number"},
		{"string", String("x"), "string"},
		{"bigint", NewBigIntFromInt64(1), "bigint"},
		{"symbol", NewSymbol("s"), "symbol"},
		{"plain object", NewObject(nil), "object"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, TypeOf(c.v))
		})
	}
}

func TestTypeOfCallableIsFunction(t *testing.T) {
	fnProto := NewObject(nil)
	fn := NewNativeFunction(fnProto, "f", 0, func(this Value, args []Value) (Value, error) {
		return TheUndefined, nil
	})
	assert.Equal(t, "function", TypeOf(fn))
}

func TestIsNullish(t *testing.T) {
	assert.True(t, IsNullish(TheUndefined))
	assert.True(t, IsNullish(TheNull))
	assert.False(t, IsNullish(Number(0)))
	assert.False(t, IsNullish(String("")))
}

func TestObjectOwnKeysOrdering(t *testing.T) {
	o := NewObject(nil)
	o.DefineOwn(StringKey("b"), DataProperty(Number(1)))
	o.DefineOwn(StringKey("2"), DataProperty(Number(2)))
	o.DefineOwn(StringKey("a"), DataProperty(Number(3)))
	o.DefineOwn(StringKey("0"), DataProperty(Number(4)))
	sym := NewSymbol("s")
	o.DefineOwn(SymbolKey(sym), DataProperty(Number(5)))
	o.DefineOwn(StringKey("1"), DataProperty(Number(6)))

	keys := o.OwnKeys()
	require.Len(t, keys, 6)
	// integer-index keys ascending first, then string keys in insertion
	// order, then symbol keys.
	assert.Equal(t, []PropertyKey{
		StringKey("0"), StringKey("1"), StringKey("2"),
		StringKey("b"), StringKey("a"),
		SymbolKey(sym),
	}, keys)
}

func TestArrayLengthTruncates(t *testing.T) {
	a := NewArray(nil, 0)
	a.SetElement(0, Number(1))
	a.SetElement(1, Number(2))
	a.SetElement(2, Number(3))
	assert.EqualValues(t, 3, a.Length())

	a.SetLength(1)
	assert.EqualValues(t, 1, a.Length())
	_, ok := a.GetElement(1)
	assert.False(t, ok, "truncated index should no longer be an own property")
	v, ok := a.GetElement(0)
	assert.True(t, ok)
	assert.Equal(t, Number(1), v)
}

func TestArrayAppendElement(t *testing.T) {
	a := NewArray(nil, 0)
	a.AppendElement(String("x"))
	a.AppendElement(String("y"))
	assert.EqualValues(t, 2, a.Length())
	v, ok := a.GetElement(1)
	require.True(t, ok)
	assert.Equal(t, String("y"), v)
}

func TestObjectFreezeIsFrozen(t *testing.T) {
	o := NewObject(nil)
	o.DefineOwn(StringKey("x"), DataProperty(Number(1)))
	assert.False(t, o.IsFrozen())
	o.Freeze()
	assert.True(t, o.IsFrozen())
	d, _ := o.GetOwn(StringKey("x"))
	assert.False(t, d.Writable)
	assert.False(t, d.Configurable)
}

func TestFormatNumber(t *testing.T) {
	cases := map[float64]string{
		0:   "0",
		1:   "1",
		1.5: "1.5",
		-42: "-42",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatNumber(in))
	}
	// -0 cannot be a separate map key (a constant -0.0 is just 0).
	assert.Equal(t, "0", FormatNumber(math.Copysign(0, -1)))
}

func TestToInt32Wraps(t *testing.T) {
	assert.EqualValues(t, -1, ToInt32(4294967295))
	assert.EqualValues(t, 0, ToInt32(4294967296))
	assert.EqualValues(t, 1, ToInt32(4294967297))
}

func TestBigIntParse(t *testing.T) {
	b, ok := ParseBigInt("123456789012345678901234567890")
	require.True(t, ok)
	assert.Equal(t, "123456789012345678901234567890", b.String())
}
