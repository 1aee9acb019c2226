// Package env implements the lexical environment model: a chain of
// frames, each holding named bindings plus a `this` value and
// `arguments` object for function-scope frames, enforcing var-hoisting,
// the Temporal Dead Zone for let/const, and const write-protection.
//
// Each frame is a store-plus-outer-pointer with Get/Set/Define/Has/Outer,
// searched from the innermost frame outward. Bindings carry a Kind
// (var/let/const/param/function) and an Initialized flag for TDZ, and
// frames distinguish function-scope from block-scope so DeclareVar can
// walk up to the nearest function-scope frame regardless of how many
// block scopes lie in between.
package env

import (
	"fmt"

	"github.com/meko-tech/jsengine/internal/runtime/values"
)

// SlotKind tags how a binding was introduced.
type SlotKind string

const (
	SlotVar      SlotKind = "var"
	SlotLet      SlotKind = "let"
	SlotConst    SlotKind = "const"
	SlotParam    SlotKind = "param"
	SlotFunction SlotKind = "function"
)

// Slot is one binding's storage cell.
type Slot struct {
	Value       values.Value
	Kind        SlotKind
	Initialized bool
	Mutable     bool
}

// Environment is one frame of the scope chain.
type Environment struct {
	slots           map[string]*Slot
	parent          *Environment
	this            values.Value
	hasThis         bool
	arguments       *values.Object
	isFunctionScope bool
	global          *values.Object // set only on the root environment
}

// environmentMarker satisfies values.Closure, letting a *Environment be
// stored as a FunctionData.Closure without values importing env.
func (*Environment) environmentMarker() {}

// NewGlobal creates the root environment, bound to globalObj as both the
// implicit non-strict `this` and the identifier-resolution fallback that
// internal/runtime/eval consults once the scope chain is exhausted (`var`
// and function declarations at top level become own properties of the
// global object).
func NewGlobal(globalObj *values.Object) *Environment {
	return &Environment{
		slots:           make(map[string]*Slot),
		isFunctionScope: true,
		this:            globalObj,
		hasThis:         true,
		global:          globalObj,
	}
}

// NewFunctionScope creates a new function-scope frame: var declarations
// anywhere within it (not shadowed by a nested function) hoist here, and
// it establishes a fresh `this`/`arguments` binding.
func NewFunctionScope(parent *Environment, this values.Value, args *values.Object) *Environment {
	return &Environment{
		slots:           make(map[string]*Slot),
		parent:          parent,
		isFunctionScope: true,
		this:            this,
		hasThis:         true,
		arguments:       args,
	}
}

// NewArrowScope creates a function-scope frame for an arrow function:
// arrows have no `this`/`arguments` of their own - `this` is captured
// lexically and cannot be rebound - so This()/Arguments() fall through
// to the enclosing scope.
func NewArrowScope(parent *Environment) *Environment {
	return &Environment{
		slots:           make(map[string]*Slot),
		parent:          parent,
		isFunctionScope: true,
	}
}

// NewBlock creates a block-scope frame, used for `{ }`,
// `for`/`if`/`while`/`try` bodies and `for` headers with `let`/`const`.
func NewBlock(parent *Environment) *Environment {
	return &Environment{
		slots:  make(map[string]*Slot),
		parent: parent,
	}
}

// Global returns the global object reachable from e, walking to the root
// environment.
func (e *Environment) Global() *values.Object {
	if e.global != nil {
		return e.global
	}
	if e.parent != nil {
		return e.parent.Global()
	}
	return nil
}

// Declare introduces a new binding in e's own frame. let/const declared
// without an initializer start uninitialized (TDZ); var/param/function
// bindings start initialized (to `undefined` unless overwritten by the
// caller immediately after).
func (e *Environment) Declare(name string, kind SlotKind, initialized bool) {
	e.slots[name] = &Slot{
		Kind:        kind,
		Initialized: initialized,
		Mutable:     kind != SlotConst,
		Value:       values.TheUndefined,
	}
}

// DeclareVar implements `var` hoisting: it walks outward to the nearest
// function-scope frame (skipping intervening block frames) and declares
// the binding there, unless that function-scope frame already holds a
// binding by that name, in which case it is left untouched. Bindings in
// the intervening block frames are not consulted.
func (e *Environment) DeclareVar(name string) {
	scope := e
	for !scope.isFunctionScope && scope.parent != nil {
		scope = scope.parent
	}
	if _, ok := scope.slots[name]; ok {
		return
	}
	scope.slots[name] = &Slot{Kind: SlotVar, Initialized: true, Mutable: true, Value: values.TheUndefined}
}

// FunctionScope returns the nearest function-scope frame starting at e
// (itself if e already is one), the frame var/function declarations
// hoist to.
func (e *Environment) FunctionScope() *Environment {
	scope := e
	for !scope.isFunctionScope && scope.parent != nil {
		scope = scope.parent
	}
	return scope
}

// lookup finds the frame owning name, or nil.
func (e *Environment) lookup(name string) *Environment {
	for s := e; s != nil; s = s.parent {
		if _, ok := s.slots[name]; ok {
			return s
		}
	}
	return nil
}

// Has reports whether name is bound anywhere in the chain.
func (e *Environment) Has(name string) bool {
	return e.lookup(name) != nil
}

// ReferenceError is returned by Get/Set for bindings that do not exist or
// are still in the Temporal Dead Zone; internal/runtime/eval converts it
// into a guest-visible ReferenceError value.
type ReferenceError struct {
	Name string
	TDZ  bool
}

func (r *ReferenceError) Error() string {
	if r.TDZ {
		return fmt.Sprintf("Cannot access '%s' before initialization", r.Name)
	}
	return fmt.Sprintf("%s is not defined", r.Name)
}

// Get resolves name, returning a *ReferenceError if it is unbound or
// still uninitialized (TDZ).
func (e *Environment) Get(name string) (values.Value, error) {
	frame := e.lookup(name)
	if frame == nil {
		return nil, &ReferenceError{Name: name}
	}
	slot := frame.slots[name]
	if !slot.Initialized {
		return nil, &ReferenceError{Name: name, TDZ: true}
	}
	return slot.Value, nil
}

// TypeError is returned by Set when assigning to a const binding.
type TypeError struct{ Message string }

func (t *TypeError) Error() string { return t.Message }

// Set assigns to an existing binding, walking outward; it returns a
// *ReferenceError if name is unbound, a TDZ *ReferenceError if the
// binding is uninitialized, or a *TypeError if the binding is a
// non-writable const.
func (e *Environment) Set(name string, v values.Value) error {
	frame := e.lookup(name)
	if frame == nil {
		return &ReferenceError{Name: name}
	}
	slot := frame.slots[name]
	if !slot.Initialized {
		// Assigning to an uninitialized let/const still observes TDZ.
		return &ReferenceError{Name: name, TDZ: true}
	}
	if !slot.Mutable {
		return &TypeError{Message: "Assignment to constant variable."}
	}
	slot.Value = v
	return nil
}

// Initialize sets name's value in e's own frame and marks it initialized,
// the step that ends a let/const binding's Temporal Dead Zone once its
// declaration's initializer (or the implicit `undefined`) runs.
func (e *Environment) Initialize(name string, v values.Value) {
	slot, ok := e.slots[name]
	if !ok {
		e.Declare(name, SlotLet, true)
		slot = e.slots[name]
	}
	slot.Value = v
	slot.Initialized = true
}

// GetOwn reads a slot only from e's own frame, without walking outward;
// used by the evaluator to check for existing block-scoped redeclaration
// errors.
func (e *Environment) GetOwn(name string) (*Slot, bool) {
	s, ok := e.slots[name]
	return s, ok
}

// This resolves the nearest `this` binding, walking outward past arrow
// scopes (which have none of their own) to satisfy lexical `this`
// capture.
func (e *Environment) This() values.Value {
	for s := e; s != nil; s = s.parent {
		if s.hasThis {
			return s.this
		}
	}
	return values.TheUndefined
}

// Arguments resolves the nearest `arguments` object the same way This
// does, returning nil if none is in scope - arrows have no `arguments`
// of their own.
func (e *Environment) Arguments() *values.Object {
	for s := e; s != nil; s = s.parent {
		if s.hasThis {
			// The nearest real (non-arrow) function scope, whether or not
			// it happens to carry an arguments object - stop here rather
			// than leaking an outer function's arguments into this one.
			return s.arguments
		}
	}
	return nil
}

// Parent exposes the enclosing frame, mainly for debugging/diagnostics
// snapshots.
func (e *Environment) Parent() *Environment { return e.parent }

// OwnNames returns every binding name declared directly in e's frame.
func (e *Environment) OwnNames() []string {
	names := make([]string, 0, len(e.slots))
	for n := range e.slots {
		names = append(names, n)
	}
	return names
}
