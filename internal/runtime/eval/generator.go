package eval

import (
	"runtime"

	"github.com/meko-tech/jsengine/internal/ast"
	"github.com/meko-tech/jsengine/internal/runtime/env"
	"github.com/meko-tech/jsengine/internal/runtime/values"
)

// generatorState is one generator instance's suspension point, realized
// as a goroutine blocked on resumeCh and the driving (caller) side
// blocked on yieldCh, with a goroutine playing the role of an explicit
// state machine so the body's ordinary Go call stack (through
// arbitrarily nested statements/expressions) can genuinely suspend at a
// `yield` without a second CPS-style rewrite pass.
type generatorState struct {
	resumeCh chan genResume
	yieldCh  chan genYieldMsg
	live     bool // goroutine has been started
	done     bool
}

type genResume struct {
	Value    values.Value
	IsThrow  bool
	IsReturn bool
}

type genYieldMsg struct {
	Value values.Value
	Done  bool
	Err   error
}

// generatorReturn is how a generator's own .return() call propagates a
// return out of the body's statement evaluation, travelling the same Go
// error channel statement evaluation already uses for non-local exits
// without requiring evalExpr to return a Completion just for this one
// case.
type generatorReturn struct{ Value values.Value }

func (g *generatorReturn) Error() string { return "generator return" }

func (it *Interpreter) makeGeneratorObject(fn *values.Object, fd *values.FunctionData, this values.Value, args []values.Value) *values.Object {
	// yieldCh is buffered so the body goroutine's final send (after a
	// finalizer-driven forced return, see below) never blocks on a
	// caller that is no longer listening.
	gs := &generatorState{resumeCh: make(chan genResume), yieldCh: make(chan genYieldMsg, 1)}

	genObj := values.NewObject(it.Realm.GeneratorProto)
	genObj.Class = "Generator"
	genObj.Internal = gs

	run := func() {
		first := <-gs.resumeCh
		if first.IsReturn {
			gs.yieldCh <- genYieldMsg{Value: first.Value, Done: true}
			return
		}
		if first.IsThrow {
			gs.yieldCh <- genYieldMsg{Done: true, Err: Throw(first.Value)}
			return
		}

		closureEnv, _ := fd.Closure.(*env.Environment)
		scope := env.NewFunctionScope(closureEnv, this, it.makeArgumentsObject(args))
		if err := it.bindParams(scope, fd.Params, fd.RestParam, args); err != nil {
			gs.yieldCh <- genYieldMsg{Done: true, Err: err}
			return
		}

		it.genStack = append(it.genStack, gs)
		defer func() { it.genStack = it.genStack[:len(it.genStack)-1] }()

		hoistFunctionBody(scope, fd.Body.Body)
		var result values.Value = values.TheUndefined
		var thrown error
		for _, stmt := range fd.Body.Body {
			c, err := it.evalStatement(stmt, scope)
			if err != nil {
				if gr, ok := err.(*generatorReturn); ok {
					result = gr.Value
				} else {
					thrown = err
				}
				break
			}
			if c.Type == CompletionReturn {
				result = c.Value
				break
			}
		}
		gs.yieldCh <- genYieldMsg{Value: result, Done: true, Err: thrown}
	}

	nextFn := values.NewNativeFunction(it.Realm.FunctionProto, "next", 1, func(_ values.Value, args []values.Value) (values.Value, error) {
		return it.resumeGenerator(gs, run, genResume{Value: firstArgOr(args, values.TheUndefined)})
	})
	returnFn := values.NewNativeFunction(it.Realm.FunctionProto, "return", 1, func(_ values.Value, args []values.Value) (values.Value, error) {
		return it.resumeGenerator(gs, run, genResume{Value: firstArgOr(args, values.TheUndefined), IsReturn: true})
	})
	throwFn := values.NewNativeFunction(it.Realm.FunctionProto, "throw", 1, func(_ values.Value, args []values.Value) (values.Value, error) {
		return it.resumeGenerator(gs, run, genResume{Value: firstArgOr(args, values.TheUndefined), IsThrow: true})
	})
	genObj.DefineOwn(values.StringKey("next"), &values.PropertyDescriptor{Value: nextFn, Writable: true, Configurable: true})
	genObj.DefineOwn(values.StringKey("return"), &values.PropertyDescriptor{Value: returnFn, Writable: true, Configurable: true})
	genObj.DefineOwn(values.StringKey("throw"), &values.PropertyDescriptor{Value: throwFn, Writable: true, Configurable: true})
	selfIter := values.NewNativeFunction(it.Realm.FunctionProto, "[Symbol.iterator]", 0, func(this values.Value, _ []values.Value) (values.Value, error) {
		return this, nil
	})
	genObj.DefineOwn(values.SymbolKey(values.SymbolIterator), &values.PropertyDescriptor{Value: selfIter, Writable: true, Configurable: true})

	// A generator abandoned mid-iteration (a for-of loop that breaks, or
	// an iterator simply never driven to completion) leaves its body
	// goroutine parked forever on resumeCh with nothing left to resume
	// it. Once genObj itself becomes unreachable, the GC runs this
	// finalizer, which forces the same .return(undefined) resume an
	// explicit call would send; the parked goroutine receives it, the
	// generator body unwinds via generatorReturn (running any enclosing
	// finally blocks), and the goroutine exits instead of leaking for
	// the rest of the engine's lifetime.
	runtime.SetFinalizer(genObj, func(o *values.Object) {
		gs := o.Internal.(*generatorState)
		if gs.live && !gs.done {
			select {
			case gs.resumeCh <- genResume{Value: values.TheUndefined, IsReturn: true}:
			default:
			}
		}
	})
	return genObj
}

func firstArgOr(args []values.Value, fallback values.Value) values.Value {
	if len(args) > 0 {
		return args[0]
	}
	return fallback
}

func (it *Interpreter) resumeGenerator(gs *generatorState, run func(), resume genResume) (values.Value, error) {
	if gs.done {
		if resume.IsThrow {
			return nil, Throw(resume.Value)
		}
		return iterResult(it, resume.Value, true), nil
	}
	if !gs.live {
		gs.live = true
		go run()
	}
	gs.resumeCh <- resume
	msg := <-gs.yieldCh
	if msg.Done {
		gs.done = true
	}
	if msg.Err != nil {
		return nil, msg.Err
	}
	return iterResult(it, msg.Value, msg.Done), nil
}

func iterResult(it *Interpreter, v values.Value, done bool) *values.Object {
	o := values.NewObject(it.Realm.ObjectProto)
	o.DefineOwn(values.StringKey("value"), &values.PropertyDescriptor{Value: v, Writable: true, Enumerable: true, Configurable: true})
	o.DefineOwn(values.StringKey("done"), &values.PropertyDescriptor{Value: values.NewBoolean(done), Writable: true, Enumerable: true, Configurable: true})
	return o
}

// evalYield implements `yield`/`yield*` by handing the value to the
// generator's driving goroutine over its yieldCh and blocking on
// resumeCh for the next .next()/.throw()/.return() call.
func (it *Interpreter) evalYield(y *ast.Yield, scope *env.Environment) (values.Value, error) {
	if len(it.genStack) == 0 {
		return nil, it.NewThrow("SyntaxError", "yield is only valid inside a generator function")
	}
	gs := it.genStack[len(it.genStack)-1]

	var v values.Value = values.TheUndefined
	if y.Arg != nil {
		av, err := it.evalExpr(y.Arg, scope)
		if err != nil {
			return nil, err
		}
		v = av
	}

	if y.Delegate {
		return it.evalYieldDelegate(v, gs)
	}

	gs.yieldCh <- genYieldMsg{Value: v, Done: false}
	resume := <-gs.resumeCh
	if resume.IsThrow {
		return nil, Throw(resume.Value)
	}
	if resume.IsReturn {
		return nil, &generatorReturn{Value: resume.Value}
	}
	return resume.Value, nil
}

func (it *Interpreter) evalYieldDelegate(delegate values.Value, gs *generatorState) (values.Value, error) {
	iter, err := it.GetIterator(delegate)
	if err != nil {
		return nil, err
	}
	var last values.Value = values.TheUndefined
	for {
		val, done, err := it.IteratorStep(iter)
		if err != nil {
			return nil, err
		}
		if done {
			last = val
			break
		}
		gs.yieldCh <- genYieldMsg{Value: val, Done: false}
		resume := <-gs.resumeCh
		if resume.IsThrow {
			return nil, Throw(resume.Value)
		}
		if resume.IsReturn {
			return nil, &generatorReturn{Value: resume.Value}
		}
	}
	return last, nil
}
