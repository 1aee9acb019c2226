package values

import "github.com/meko-tech/jsengine/internal/ast"

// FunctionKind distinguishes the call/construct/this-binding behaviors
// of a function.
type FunctionKind string

const (
	FuncNormal      FunctionKind = "normal"
	FuncArrow       FunctionKind = "arrow"
	FuncMethod      FunctionKind = "method"
	FuncConstructor FunctionKind = "constructor"
	FuncAsync       FunctionKind = "async"
	FuncGenerator   FunctionKind = "generator"
	FuncHost        FunctionKind = "host"
)

// NativeFunc is a host-implemented callable: the standard library's
// constructors and prototype methods are all built this way. this is the
// already-resolved receiver value; args is the full, already-spread
// argument list.
type NativeFunc func(this Value, args []Value) (Value, error)

// Closure is implemented by internal/runtime/env.Environment. FunctionData
// stores it as this narrow interface, rather than importing the env
// package directly, so that env (which needs to store Values in its
// slots) does not form an import cycle with values (which would need to
// store an *env.Environment in a function's closure).
type Closure interface {
	// Opaque: env.Environment satisfies this by existing. Evaluator code
	// that consumes FunctionData.Closure type-asserts it back to
	// *env.Environment, which is the only type that ever implements it.
	environmentMarker()
}

// FunctionData is the internal slot set of a callable Object: either
// user-defined (body AST, closure environment, params, name, prototype
// property, [[HomeObject]] for methods, kind) or host (native callable).
type FunctionData struct {
	Kind FunctionKind
	Name string

	// User-defined function fields.
	Params    []ast.Pattern
	RestParam ast.Pattern
	Body      *ast.Block
	// ArrowExprBody is set instead of Body for a concise-body arrow
	// function (`x => x + 1`), whose body is a single expression rather
	// than a block.
	ArrowExprBody ast.Expression
	Closure       Closure

	// HomeObject backs `super` resolution inside a method: `super.m()`
	// looks up m starting at HomeObject's prototype.
	HomeObject *Object

	// BoundThis/BoundArgs/BoundTarget implement Function.prototype.bind:
	// when BoundTarget is non-nil, calling this function calls BoundTarget
	// instead, with this forced to BoundThis and BoundArgs prepended.
	BoundTarget *Object
	BoundThis   Value
	BoundArgs   []Value

	// Native is set for host functions; Params/Body/Closure are unused in
	// that case.
	Native NativeFunc

	// NativeConstruct overrides `new` behavior for a native function that
	// needs to build something other than a plain Object.prototype-rooted
	// instance (Array, Error and its subclasses, Map, Set, Promise,
	// RegExp, Date, the TypedArray family). When nil, `new` on a native
	// function falls back to the ordinary user-function construct
	// protocol: a fresh object is created with F.prototype as its
	// prototype, and that object becomes `this`.
	NativeConstruct func(args []Value) (Value, error)

	// NotConstructible marks arrow functions, methods, and getters/setters,
	// since only ordinary/constructor functions support `new F(...)` - so
	// `new` on one of these raises a TypeError.
	NotConstructible bool

	// Length is the function's declared arity (count of parameters before
	// the first default or rest), exposed as the `length` own property.
	Length int
}

// NewFunctionObject wraps fd as a callable Object with the given function
// prototype (i.e. Function.prototype) and an own `prototype` property
// when proto-having is applicable (plain functions and classes get one;
// arrows and methods do not).
func NewFunctionObject(functionProto *Object, fd *FunctionData, withPrototypeProp bool, instanceProto *Object) *Object {
	o := NewObject(functionProto)
	o.Class = "Function"
	o.Internal = fd
	o.DefineOwn(StringKey("name"), &PropertyDescriptor{Value: String(fd.Name), Configurable: true})
	o.DefineOwn(StringKey("length"), &PropertyDescriptor{Value: Number(fd.Length), Configurable: true})
	if withPrototypeProp {
		protoObj := NewObject(instanceProto)
		protoObj.DefineOwn(StringKey("constructor"), &PropertyDescriptor{Value: o, Writable: true, Configurable: true})
		o.DefineOwn(StringKey("prototype"), &PropertyDescriptor{Value: protoObj, Writable: true})
	}
	return o
}

// NewNativeFunction is the common case used throughout internal/stdlib:
// a named host function with a fixed declared arity and no own
// `prototype` property. `new` on one still runs the ordinary construct
// protocol described on NativeConstruct, with Object.prototype as the
// new instance's prototype since there is no `prototype` property to read.
func NewNativeFunction(functionProto *Object, name string, length int, fn NativeFunc) *Object {
	fd := &FunctionData{Kind: FuncHost, Name: name, Native: fn, Length: length}
	return NewFunctionObject(functionProto, fd, false, nil)
}
