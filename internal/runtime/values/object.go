package values

import (
	"sort"
	"strconv"
)

// PropertyKey is an object property name: either a string or a Symbol.
// It is a plain comparable struct so it can be used directly as a Go map
// key.
type PropertyKey struct {
	Str string
	Sym *Symbol
}

// StringKey and SymbolKey build the two PropertyKey variants.
func StringKey(s string) PropertyKey  { return PropertyKey{Str: s} }
func SymbolKey(s *Symbol) PropertyKey { return PropertyKey{Sym: s} }

func (k PropertyKey) IsSymbol() bool { return k.Sym != nil }

func (k PropertyKey) String() string {
	if k.Sym != nil {
		return k.Sym.String()
	}
	return k.Str
}

// PropertyDescriptor is either a data property (value, writable) or an
// accessor property (get/set), each with enumerable/configurable flags.
type PropertyDescriptor struct {
	Value        Value
	Get, Set     *Object
	Writable     bool
	Enumerable   bool
	Configurable bool
	IsAccessor   bool
}

// DataProperty builds a writable, enumerable, configurable data
// descriptor, the default shape for ordinary assignment.
func DataProperty(v Value) *PropertyDescriptor {
	return &PropertyDescriptor{Value: v, Writable: true, Enumerable: true, Configurable: true}
}

// Object is the single runtime representation backing plain objects,
// arrays, functions, boxed primitives, and every other exotic object kind
// the standard library defines; Class and Internal discriminate which
// kind a given instance is. There is no Go-level subtype per JS exotic
// object kind: JavaScript's object kinds all share the same
// property-map-plus-prototype storage and differ only in a handful of
// internal slots and trap behaviors layered on top in
// internal/runtime/eval and internal/stdlib.
type Object struct {
	Class      string // "Object", "Array", "Function", "Error", "RegExp", "Date", "Map", "Set", ...
	Proto      *Object
	Extensible bool

	props    map[PropertyKey]*PropertyDescriptor
	keyOrder []PropertyKey // insertion order across string and symbol keys

	// PrimitiveValue holds the [[PrimitiveValue]] internal slot of a boxed
	// Number/String/Boolean/Symbol/BigInt wrapper object.
	PrimitiveValue Value

	// Internal carries kind-specific state that only makes sense to the
	// stdlib package that owns Class: *FunctionData for callables,
	// *ArrayBufferData/*TypedArrayData, *MapData/*SetData, *DateData,
	// *RegExpData, *PromiseData, *ErrorData, and so on.
	Internal any
}

// NewObject allocates a plain, extensible object with the given
// prototype (nil for Object.prototype-less objects such as
// Object.create(null) results).
func NewObject(proto *Object) *Object {
	return &Object{
		Class:      "Object",
		Proto:      proto,
		Extensible: true,
		props:      make(map[PropertyKey]*PropertyDescriptor),
	}
}

func (*Object) Kind() Kind { return KindObject }

func (o *Object) String() string {
	if o.IsCallable() {
		return "function"
	}
	if o.Class == "Array" {
		return "[object Array]"
	}
	return "[object " + o.Class + "]"
}

// IsCallable reports whether o has an attached FunctionData, i.e. it can
// appear in Call position.
func (o *Object) IsCallable() bool {
	return o.Internal != nil && o.asFunctionData() != nil
}

func (o *Object) asFunctionData() *FunctionData {
	fd, _ := o.Internal.(*FunctionData)
	return fd
}

// FunctionData returns the attached function data, or nil if o is not
// callable.
func (o *Object) FunctionData() *FunctionData { return o.asFunctionData() }

// GetOwn returns o's own property descriptor for key, without walking the
// prototype chain and without invoking any accessor.
func (o *Object) GetOwn(key PropertyKey) (*PropertyDescriptor, bool) {
	d, ok := o.props[key]
	return d, ok
}

// HasOwn reports whether o has an own property named key.
func (o *Object) HasOwn(key PropertyKey) bool {
	_, ok := o.props[key]
	return ok
}

// DefineOwn installs or replaces key's own descriptor. It does not check
// [[Extensible]] or existing [[Configurable]] - that validation belongs
// to the [[DefineOwnProperty]] algorithm in internal/runtime/eval, which
// is the layer that can raise a TypeError through the evaluator.
func (o *Object) DefineOwn(key PropertyKey, desc *PropertyDescriptor) {
	if _, exists := o.props[key]; !exists {
		o.keyOrder = append(o.keyOrder, key)
	}
	o.props[key] = desc
}

// DeleteOwn removes key's own property, if present.
func (o *Object) DeleteOwn(key PropertyKey) {
	if _, ok := o.props[key]; !ok {
		return
	}
	delete(o.props, key)
	for i, k := range o.keyOrder {
		if k == key {
			o.keyOrder = append(o.keyOrder[:i], o.keyOrder[i+1:]...)
			break
		}
	}
}

// arrayIndex reports whether s is a canonical array index string (no
// leading zeros other than "0" itself, value < 2^32-1), and its value.
func arrayIndex(s string) (uint32, bool) {
	if s == "" {
		return 0, false
	}
	if s == "0" {
		return 0, true
	}
	if s[0] == '0' {
		return 0, false
	}
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil || n >= 1<<32-1 {
		return 0, false
	}
	return uint32(n), true
}

// OwnKeys returns o's own property keys in enumeration order:
// integer-index string keys first in ascending numeric order, then
// remaining string keys in insertion order, then symbol keys in
// insertion order.
func (o *Object) OwnKeys() []PropertyKey {
	type indexedKey struct {
		key PropertyKey
		idx uint32
	}
	var indexed []indexedKey
	var strs, syms []PropertyKey
	for _, k := range o.keyOrder {
		if k.IsSymbol() {
			syms = append(syms, k)
			continue
		}
		if idx, ok := arrayIndex(k.Str); ok {
			indexed = append(indexed, indexedKey{key: k, idx: idx})
			continue
		}
		strs = append(strs, k)
	}
	sort.Slice(indexed, func(i, j int) bool { return indexed[i].idx < indexed[j].idx })

	out := make([]PropertyKey, 0, len(indexed)+len(strs)+len(syms))
	for _, ik := range indexed {
		out = append(out, ik.key)
	}
	out = append(out, strs...)
	out = append(out, syms...)
	return out
}

// OwnPropertyNames returns only the string-keyed own property names, in
// the same ordering as OwnKeys.
func (o *Object) OwnPropertyNames() []string {
	var out []string
	for _, k := range o.OwnKeys() {
		if !k.IsSymbol() {
			out = append(out, k.Str)
		}
	}
	return out
}

// OwnSymbols returns only the symbol-keyed own properties, in insertion
// order.
func (o *Object) OwnSymbols() []*Symbol {
	var out []*Symbol
	for _, k := range o.OwnKeys() {
		if k.IsSymbol() {
			out = append(out, k.Sym)
		}
	}
	return out
}

// PreventExtensions clears [[Extensible]]; Freeze/Seal additionally mark
// every own data property non-writable/non-configurable (Freeze) or just
// non-configurable (Seal), applied here since it is pure descriptor
// bookkeeping with no user code to invoke.
func (o *Object) PreventExtensions() { o.Extensible = false }

func (o *Object) Freeze() {
	o.Extensible = false
	for _, k := range o.keyOrder {
		d := o.props[k]
		d.Configurable = false
		if !d.IsAccessor {
			d.Writable = false
		}
	}
}

func (o *Object) Seal() {
	o.Extensible = false
	for _, k := range o.keyOrder {
		o.props[k].Configurable = false
	}
}

func (o *Object) IsFrozen() bool {
	if o.Extensible {
		return false
	}
	for _, k := range o.keyOrder {
		d := o.props[k]
		if d.Configurable || (!d.IsAccessor && d.Writable) {
			return false
		}
	}
	return true
}

func (o *Object) IsSealed() bool {
	if o.Extensible {
		return false
	}
	for _, k := range o.keyOrder {
		if o.props[k].Configurable {
			return false
		}
	}
	return true
}
