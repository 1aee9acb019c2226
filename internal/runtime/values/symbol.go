package values

import "fmt"

// Symbol is a unique-identity primitive with an optional description.
// Identity is the pointer itself - two Symbol values are the same symbol
// iff they are the same *Symbol - so Symbol deliberately has no
// constructor that could produce two equal-by-value-but-distinct
// instances.
type Symbol struct {
	Description string
	HasDesc     bool
}

func (*Symbol) Kind() Kind { return KindSymbol }

func (s *Symbol) String() string {
	if s.HasDesc {
		return fmt.Sprintf("Symbol(%s)", s.Description)
	}
	return "Symbol()"
}

// NewSymbol allocates a fresh symbol with the given description.
func NewSymbol(description string) *Symbol {
	return &Symbol{Description: description, HasDesc: true}
}

// NewSymbolNoDescription allocates a fresh symbol with no description,
// i.e. `Symbol()` called with no argument.
func NewSymbolNoDescription() *Symbol {
	return &Symbol{}
}

// Well-known symbols, needed for iteration (`[Symbol.iterator]`) and for
// full prototype wiring elsewhere in the standard library.
var (
	SymbolIterator      = NewSymbol("Symbol.iterator")
	SymbolAsyncIterator = NewSymbol("Symbol.asyncIterator")
	SymbolToPrimitive   = NewSymbol("Symbol.toPrimitive")
	SymbolToStringTag   = NewSymbol("Symbol.toStringTag")
	SymbolHasInstance   = NewSymbol("Symbol.hasInstance")
)
