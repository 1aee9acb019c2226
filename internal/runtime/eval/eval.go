// Package eval implements the tree-walking evaluator: it dispatches over
// the typed ast tree produced by internal/astbuilder (after
// internal/transform/fold and, where applicable, internal/transform/cps
// have run over it), maintaining the environment chain of
// internal/runtime/env and the value/object model of
// internal/runtime/values, and drives internal/runtime/eventloop to
// completion for any scheduled Promise/timer work.
//
// A single struct holds the global environment plus shared evaluation
// state, with one evaluate-this-node-kind method per AST variant
// dispatched from a top-level EvalProgram entry point. Prototype-chain
// member resolution, non-local control-flow signals distinct from Go
// errors, coercion-heavy operators, and an event loop round out the
// machinery a dynamically-typed, prototype-based language needs beyond
// that dispatch core.
package eval

import (
	"github.com/sirupsen/logrus"

	"github.com/meko-tech/jsengine/internal/ast"
	"github.com/meko-tech/jsengine/internal/diagnostics"
	"github.com/meko-tech/jsengine/internal/runtime/env"
	"github.com/meko-tech/jsengine/internal/runtime/eventloop"
	"github.com/meko-tech/jsengine/internal/runtime/values"
)

// Realm bundles the intrinsic prototypes and global object one Interpreter
// evaluates against. internal/stdlib packages populate its fields during
// bootstrap (see pkg/engine); eval itself only reads from it, so this
// package never imports internal/stdlib and avoids a cycle.
type Realm struct {
	Global *values.Object

	ObjectProto      *values.Object
	FunctionProto    *values.Object
	ArrayProto       *values.Object
	StringProto      *values.Object
	NumberProto      *values.Object
	BooleanProto     *values.Object
	BigIntProto      *values.Object
	SymbolProto      *values.Object
	ErrorProto       *values.Object
	PromiseProto     *values.Object
	RegExpProto      *values.Object
	DateProto        *values.Object
	MapProto         *values.Object
	SetProto         *values.Object
	WeakMapProto     *values.Object
	WeakSetProto     *values.Object
	IteratorProto    *values.Object
	GeneratorProto   *values.Object
	ArrayBufferProto *values.Object
	TypedArrayProto  *values.Object

	// ErrorCtors maps "TypeError"/"RangeError"/"SyntaxError"/
	// "ReferenceError"/"Error" to its constructor function object, used by
	// NewErrorObject (and so NewThrow) to build guest-visible error values with the
	// right prototype.
	ErrorCtors map[string]*values.Object

	// NewRegExp builds a RegExp literal's runtime object. It is a hook
	// rather than a direct call into internal/stdlib/regexpobj (which
	// compiles the pattern via github.com/dlclark/regexp2) because eval
	// must not import stdlib - stdlib imports eval, not the other way
	// around - so regexpobj installs this during pkg/engine's bootstrap.
	NewRegExp func(pattern, flags string) (*values.Object, error)
}

// Options configures an Interpreter; the embedding API in pkg/engine
// builds these from engine.Options.
type Options struct {
	MaxCallStackDepth           int
	MicrotaskBudgetPerMacrotask int
	StrictByDefault             bool
}

func DefaultOptions() Options {
	return Options{MaxCallStackDepth: 2000, MicrotaskBudgetPerMacrotask: 100000}
}

// Interpreter is one engine instance's evaluation state: the global
// environment and realm, the event loop driving Promise/timer work, the
// diagnostics channel, and the guest call stack used to build
// ExceptionInfo.call_stack on a thrown error.
type Interpreter struct {
	Realm   *Realm
	Global  *env.Environment
	Loop    *eventloop.Loop
	Diag    *diagnostics.Channel
	Log     *logrus.Entry
	Options Options

	callStack []diagnostics.CallFrame

	// genStack tracks the innermost generator currently running, so a
	// `yield` deep inside nested statements/expressions can find the
	// channel pair to suspend on without threading it through every
	// evalStatement/evalExpr call (see generator.go).
	genStack []*generatorState
}

// New creates an Interpreter over an already-bootstrapped realm. The
// realm's Global object becomes the root environment's `this` and
// identifier-resolution fallback.
func New(realm *Realm, opts Options, diag *diagnostics.Channel, log *logrus.Entry) *Interpreter {
	if log == nil {
		log = logrus.NewEntry(logrus.New())
	}
	it := &Interpreter{
		Realm:   realm,
		Global:  env.NewGlobal(realm.Global),
		Loop:    eventloop.New(nil),
		Diag:    diag,
		Log:     log,
		Options: opts,
	}
	it.Loop = eventloop.New(func(err error) { it.reportUnhandled(err) })
	return it
}

func (it *Interpreter) reportUnhandled(err error) {
	info := it.exceptionInfoFor(err)
	if it.Diag != nil {
		it.Diag.PushException(info)
	}
	if it.Log.Logger.IsLevelEnabled(logrus.WarnLevel) {
		it.Log.WithField("kind", info.Kind).Warn(info.Message)
	}
}

func (it *Interpreter) exceptionInfoFor(err error) diagnostics.ExceptionInfo {
	kind := diagnostics.KindGuestThrow
	msg := err.Error()
	if tv, ok := err.(*ThrownValue); ok {
		msg = it.describeThrown(tv.Value)
	}
	return diagnostics.ExceptionInfo{
		Kind:      kind,
		Message:   msg,
		CallStack: append([]diagnostics.CallFrame(nil), it.callStack...),
	}
}

func (it *Interpreter) describeThrown(v values.Value) string {
	if o, ok := v.(*values.Object); ok {
		if d, ok := o.GetOwn(values.StringKey("message")); ok {
			if s, ok := d.Value.(values.String); ok {
				name := "Error"
				if nd, ok := o.GetOwn(values.StringKey("name")); ok {
					if ns, ok := nd.Value.(values.String); ok {
						name = string(ns)
					}
				}
				return name + ": " + string(s)
			}
		}
	}
	return v.String()
}

// EvalProgram runs a fully-built program (already folded, and
// CPS-rewritten where applicable) to its first suspension point: all
// synchronous code to completion. It does not by itself drain the event
// loop - callers that want "run to quiescence" call RunEventLoop
// afterward (pkg/engine.EvaluateSync does both).
func (it *Interpreter) EvalProgram(p *ast.Program) (values.Value, error) {
	hoistProgram(it.Global, p.Body)
	result := values.Value(values.TheUndefined)
	for _, stmt := range p.Body {
		c, err := it.evalStatement(stmt, it.Global)
		if err != nil {
			return nil, err
		}
		if c.Type == CompletionNormal && c.Value != nil {
			result = c.Value
		}
		if c.Type != CompletionNormal {
			// A bare top-level return/break/continue is a parse-time error
			// in real engines; the parser here does not reject it, so
			// treat it as simply ending the program early rather than
			// panicking the host.
			break
		}
	}
	return result, nil
}

// RunEventLoop drains microtasks/macrotasks/timers to quiescence.
func (it *Interpreter) RunEventLoop() {
	it.Loop.Run()
}

// pushFrame/popFrame maintain the guest call stack used for diagnostics
// and to enforce Options.MaxCallStackDepth.
func (it *Interpreter) pushFrame(name string, line, col int) error {
	if len(it.callStack) >= it.Options.MaxCallStackDepth {
		return it.NewThrow("RangeError", "Maximum call stack size exceeded")
	}
	it.callStack = append(it.callStack, diagnostics.CallFrame{FunctionName: name, Line: line, Column: col})
	return nil
}

func (it *Interpreter) popFrame() {
	if len(it.callStack) > 0 {
		it.callStack = it.callStack[:len(it.callStack)-1]
	}
}

// CallStack returns a snapshot of the current guest call stack, for
// __debug().
func (it *Interpreter) CallStack() []diagnostics.CallFrame {
	return append([]diagnostics.CallFrame(nil), it.callStack...)
}
