package values

import "math/big"

// BigInt is the arbitrary-precision integer primitive. It wraps
// math/big.Int, the standard
// library's own arbitrary-precision integer - no library in the example
// pack provides one, and re-implementing bignum arithmetic by hand would
// be reinventing exactly what math/big already does correctly, so this is
// one of the documented standard-library fallbacks (see DESIGN.md).
type BigInt struct {
	V *big.Int
}

func (*BigInt) Kind() Kind { return KindBigInt }
func (b *BigInt) String() string {
	return b.V.String()
}

// NewBigInt wraps an existing *big.Int. The caller must not mutate v after
// this call; BigInt values are treated as immutable once constructed,
// matching JS BigInt semantics.
func NewBigInt(v *big.Int) *BigInt { return &BigInt{V: v} }

// NewBigIntFromInt64 is a convenience constructor for small literal/host
// values.
func NewBigIntFromInt64(n int64) *BigInt { return &BigInt{V: big.NewInt(n)} }

// ParseBigInt parses a decimal digit string (as produced by the lexer for
// a `123n` literal) into a BigInt.
func ParseBigInt(digits string) (*BigInt, bool) {
	v, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return nil, false
	}
	return &BigInt{V: v}, true
}
