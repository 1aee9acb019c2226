package eval

import "github.com/meko-tech/jsengine/internal/runtime/values"

// awaitSynchronously resolves v the way `await v` would, without a real
// coroutine suspension: non-thenable values resolve to themselves
// immediately; a thenable has its `.then` called with fulfill/reject
// callbacks that capture the settled outcome, and the event loop is
// pumped via eventloop.Loop.RunUntil only as far as needed to observe
// that settlement.
//
// internal/transform/cps desugars every `await` inside an async function
// into explicit Promise.resolve(...).then(...) chaining before this
// package ever sees it (see internal/transform/cps/helpers.go
// promiseResolveThen), so ast.Await normally only reaches the evaluator
// for a shape the CPS pass rejected and fell back to direct tree-walking
// for, and for the for-await-of desugaring.
func (it *Interpreter) awaitSynchronously(v values.Value) (values.Value, error) {
	o, ok := v.(*values.Object)
	if !ok {
		return v, nil
	}
	thenVal, err := it.GetMember(o, values.StringKey("then"))
	if err != nil {
		return nil, err
	}
	thenFn, ok := thenVal.(*values.Object)
	if !ok || !thenFn.IsCallable() {
		return v, nil
	}

	settled := false
	var result values.Value
	var thrown error

	onFulfilled := values.NewNativeFunction(it.Realm.FunctionProto, "", 1, func(_ values.Value, args []values.Value) (values.Value, error) {
		settled = true
		if len(args) > 0 {
			result = args[0]
		} else {
			result = values.TheUndefined
		}
		return values.TheUndefined, nil
	})
	onRejected := values.NewNativeFunction(it.Realm.FunctionProto, "", 1, func(_ values.Value, args []values.Value) (values.Value, error) {
		settled = true
		var reason values.Value = values.TheUndefined
		if len(args) > 0 {
			reason = args[0]
		}
		thrown = Throw(reason)
		return values.TheUndefined, nil
	})

	if _, err := it.Call(thenFn, o, []values.Value{onFulfilled, onRejected}); err != nil {
		return nil, err
	}
	it.Loop.RunUntil(func() bool { return settled })
	if thrown != nil {
		return nil, thrown
	}
	if !settled {
		// Nothing left to drive the loop and the promise never settled:
		// treat it as perpetually pending, matching a real engine's
		// behavior of leaving the awaiting continuation unresolved rather
		// than inventing a value.
		return values.TheUndefined, nil
	}
	return result, nil
}
