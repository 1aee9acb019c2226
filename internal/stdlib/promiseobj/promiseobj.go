// Package promiseobj builds Promise and Promise.prototype
// (then/catch/finally) plus the Promise.resolve/reject/all/race/allSettled
// statics, implementing the Promise Resolution Procedure on top of
// internal/runtime/eventloop's microtask queue: every reaction callback
// is scheduled as a microtask, never run synchronously.
//
// The resolve/reject/settle bookkeeping below mirrors the textbook
// Promise/A+ reference algorithm.
package promiseobj

import (
	"github.com/meko-tech/jsengine/internal/runtime/eval"
	"github.com/meko-tech/jsengine/internal/runtime/values"
)

type promiseState int

const (
	pending promiseState = iota
	fulfilled
	rejected
)

// PromiseData is the [[PromiseState]]/[[PromiseResult]]/
// [[PromiseFulfillReactions]]/[[PromiseRejectReactions]] internal slots.
type PromiseData struct {
	state    promiseState
	result   values.Value
	onFulfil []func(values.Value)
	onReject []func(values.Value)
}

func Install(it *eval.Interpreter, realm *eval.Realm, global *values.Object) {
	proto := values.NewObject(realm.ObjectProto)
	proto.Class = "Promise"
	realm.PromiseProto = proto

	newPromise := func() (*values.Object, *PromiseData) {
		o := values.NewObject(proto)
		o.Class = "Promise"
		pd := &PromiseData{}
		o.Internal = pd
		return o, pd
	}

	resolveFn := func(o *values.Object, pd *PromiseData) values.NativeFunc {
		return func(this values.Value, args []values.Value) (values.Value, error) {
			v := firstArg(args)
			if same, ok := v.(*values.Object); ok && same == o {
				rejectInternal(it, pd, it.NewErrorObject("TypeError", "Chaining cycle detected"))
				return values.TheUndefined, nil
			}
			if inner, ok := v.(*values.Object); ok {
				if innerPD, ok := inner.Internal.(*PromiseData); ok {
					// Adopt the inner promise's eventual state instead of
					// wrapping it, per the resolution procedure's thenable
					// handling for another Promise from this realm.
					subscribe(it, innerPD, func(fv values.Value) { resolveInternal(it, pd, fv) }, func(rv values.Value) { rejectInternal(it, pd, rv) })
					return values.TheUndefined, nil
				}
				then, err := it.GetMember(inner, values.StringKey("then"))
				if err == nil {
					if thenFn, ok := then.(*values.Object); ok && thenFn.IsCallable() {
						onF := values.NewNativeFunction(realm.FunctionProto, "", 1, func(_ values.Value, a []values.Value) (values.Value, error) {
							resolveInternal(it, pd, firstArg(a))
							return values.TheUndefined, nil
						})
						onR := values.NewNativeFunction(realm.FunctionProto, "", 1, func(_ values.Value, a []values.Value) (values.Value, error) {
							rejectInternal(it, pd, firstArg(a))
							return values.TheUndefined, nil
						})
						it.Loop.ScheduleMicrotask(func() error {
							_, err := it.Call(thenFn, inner, []values.Value{onF, onR})
							return err
						})
						return values.TheUndefined, nil
					}
				}
			}
			resolveInternal(it, pd, v)
			return values.TheUndefined, nil
		}
	}
	rejectFn := func(pd *PromiseData) values.NativeFunc {
		return func(this values.Value, args []values.Value) (values.Value, error) {
			rejectInternal(it, pd, firstArg(args))
			return values.TheUndefined, nil
		}
	}

	def := func(name string, length int, fn values.NativeFunc) {
		proto.DefineOwn(values.StringKey(name), values.DataProperty(values.NewNativeFunction(realm.FunctionProto, name, length, fn)))
	}

	def("then", 2, func(this values.Value, args []values.Value) (values.Value, error) {
		self, ok := this.(*values.Object)
		if !ok {
			return nil, it.NewThrow("TypeError", "Promise.prototype.then called on non-Promise")
		}
		pd, ok := self.Internal.(*PromiseData)
		if !ok {
			return nil, it.NewThrow("TypeError", "Promise.prototype.then called on non-Promise")
		}
		onFulfilled, _ := argAt(args, 0).(*values.Object)
		onRejected, _ := argAt(args, 1).(*values.Object)
		result, resultPD := newPromise()
		subscribe(it, pd,
			func(v values.Value) { reactOne(it, resultPD, onFulfilled, v, false) },
			func(v values.Value) { reactOne(it, resultPD, onRejected, v, true) },
		)
		return result, nil
	})
	def("catch", 1, func(this values.Value, args []values.Value) (values.Value, error) {
		thenFn, _ := proto.GetOwn(values.StringKey("then"))
		return it.Call(thenFn.Value.(*values.Object), this, []values.Value{values.TheUndefined, firstArg(args)})
	})
	def("finally", 1, func(this values.Value, args []values.Value) (values.Value, error) {
		cb, _ := firstArg(args).(*values.Object)
		onF := values.NewNativeFunction(realm.FunctionProto, "", 1, func(_ values.Value, a []values.Value) (values.Value, error) {
			if cb != nil {
				if _, err := it.Call(cb, values.TheUndefined, nil); err != nil {
					return nil, err
				}
			}
			return firstArg(a), nil
		})
		onR := values.NewNativeFunction(realm.FunctionProto, "", 1, func(_ values.Value, a []values.Value) (values.Value, error) {
			if cb != nil {
				if _, err := it.Call(cb, values.TheUndefined, nil); err != nil {
					return nil, err
				}
			}
			return nil, eval.Throw(firstArg(a))
		})
		thenFn, _ := proto.GetOwn(values.StringKey("then"))
		return it.Call(thenFn.Value.(*values.Object), this, []values.Value{onF, onR})
	})

	fd := &values.FunctionData{
		Kind: values.FuncConstructor, Name: "Promise", Length: 1,
		NativeConstruct: func(args []values.Value) (values.Value, error) {
			executor, ok := firstArg(args).(*values.Object)
			if !ok || !executor.IsCallable() {
				return nil, it.NewThrow("TypeError", "Promise resolver is not a function")
			}
			o, pd := newPromise()
			res := values.NewNativeFunction(realm.FunctionProto, "", 1, resolveFn(o, pd))
			rej := values.NewNativeFunction(realm.FunctionProto, "", 1, rejectFn(pd))
			if _, err := it.Call(executor, values.TheUndefined, []values.Value{res, rej}); err != nil {
				if tv, ok := err.(*eval.ThrownValue); ok {
					rejectInternal(it, pd, tv.Value)
				} else {
					return nil, err
				}
			}
			return o, nil
		},
	}
	ctor := values.NewFunctionObject(realm.FunctionProto, fd, true, proto)
	ctor.DefineOwn(values.StringKey("prototype"), &values.PropertyDescriptor{Value: proto})

	ctor.DefineOwn(values.StringKey("resolve"), values.DataProperty(values.NewNativeFunction(realm.FunctionProto, "resolve", 1, func(this values.Value, args []values.Value) (values.Value, error) {
		v := firstArg(args)
		if o, ok := v.(*values.Object); ok {
			if _, ok := o.Internal.(*PromiseData); ok {
				return o, nil
			}
		}
		o, pd := newPromise()
		_, err := resolveFn(o, pd)(values.TheUndefined, []values.Value{v})
		return o, err
	})))
	ctor.DefineOwn(values.StringKey("reject"), values.DataProperty(values.NewNativeFunction(realm.FunctionProto, "reject", 1, func(this values.Value, args []values.Value) (values.Value, error) {
		o, pd := newPromise()
		rejectInternal(it, pd, firstArg(args))
		return o, nil
	})))
	ctor.DefineOwn(values.StringKey("all"), values.DataProperty(values.NewNativeFunction(realm.FunctionProto, "all", 1, func(this values.Value, args []values.Value) (values.Value, error) {
		return combinator(it, realm, newPromise, firstArg(args), combineAll)
	})))
	ctor.DefineOwn(values.StringKey("allSettled"), values.DataProperty(values.NewNativeFunction(realm.FunctionProto, "allSettled", 1, func(this values.Value, args []values.Value) (values.Value, error) {
		return combinator(it, realm, newPromise, firstArg(args), combineAllSettled)
	})))
	ctor.DefineOwn(values.StringKey("race"), values.DataProperty(values.NewNativeFunction(realm.FunctionProto, "race", 1, func(this values.Value, args []values.Value) (values.Value, error) {
		return combinator(it, realm, newPromise, firstArg(args), combineRace)
	})))

	global.DefineOwn(values.StringKey("Promise"), values.DataProperty(ctor))
}

func resolveInternal(it *eval.Interpreter, pd *PromiseData, v values.Value) {
	if pd.state != pending {
		return
	}
	pd.state = fulfilled
	pd.result = v
	reactions := pd.onFulfil
	pd.onFulfil, pd.onReject = nil, nil
	for _, r := range reactions {
		r := r
		it.Loop.ScheduleMicrotask(func() error { r(v); return nil })
	}
}

func rejectInternal(it *eval.Interpreter, pd *PromiseData, v values.Value) {
	if pd.state != pending {
		return
	}
	pd.state = rejected
	pd.result = v
	reactions := pd.onReject
	pd.onFulfil, pd.onReject = nil, nil
	for _, r := range reactions {
		r := r
		it.Loop.ScheduleMicrotask(func() error { r(v); return nil })
	}
}

// subscribe registers fulfillment/rejection reactions, firing immediately
// (as a fresh microtask) if pd has already settled.
func subscribe(it *eval.Interpreter, pd *PromiseData, onF, onR func(values.Value)) {
	switch pd.state {
	case fulfilled:
		v := pd.result
		it.Loop.ScheduleMicrotask(func() error { onF(v); return nil })
	case rejected:
		v := pd.result
		it.Loop.ScheduleMicrotask(func() error { onR(v); return nil })
	default:
		pd.onFulfil = append(pd.onFulfil, onF)
		pd.onReject = append(pd.onReject, onR)
	}
}

// reactOne runs one then() reaction handler (or propagates the settlement
// untransformed when no handler was supplied) into resultPD.
func reactOne(it *eval.Interpreter, resultPD *PromiseData, handler *values.Object, v values.Value, wasRejection bool) {
	if handler == nil || !handler.IsCallable() {
		if wasRejection {
			rejectInternal(it, resultPD, v)
		} else {
			resolveInternal(it, resultPD, v)
		}
		return
	}
	r, err := it.Call(handler, values.TheUndefined, []values.Value{v})
	if err != nil {
		if tv, ok := err.(*eval.ThrownValue); ok {
			rejectInternal(it, resultPD, tv.Value)
			return
		}
		rejectInternal(it, resultPD, values.String(err.Error()))
		return
	}
	adoptOrResolve(it, resultPD, r)
}

func adoptOrResolve(it *eval.Interpreter, pd *PromiseData, v values.Value) {
	if o, ok := v.(*values.Object); ok {
		if innerPD, ok := o.Internal.(*PromiseData); ok {
			subscribe(it, innerPD, func(fv values.Value) { resolveInternal(it, pd, fv) }, func(rv values.Value) { rejectInternal(it, pd, rv) })
			return
		}
	}
	resolveInternal(it, pd, v)
}

type combineFn func(it *eval.Interpreter, realm *eval.Realm, items []values.Value, resultO *values.Object, resultPD *PromiseData)

func combinator(it *eval.Interpreter, realm *eval.Realm, newPromise func() (*values.Object, *PromiseData), iterable values.Value, combine combineFn) (values.Value, error) {
	items, err := it.IterateToSlice(iterable)
	if err != nil {
		return nil, err
	}
	o, pd := newPromise()
	combine(it, realm, items, o, pd)
	return o, nil
}

func combineAll(it *eval.Interpreter, realm *eval.Realm, items []values.Value, _ *values.Object, resultPD *PromiseData) {
	n := len(items)
	if n == 0 {
		resolveInternal(it, resultPD, values.NewArray(realm.ArrayProto, 0))
		return
	}
	results := make([]values.Value, n)
	remaining := n
	for i, item := range items {
		i := i
		onF := func(v values.Value) {
			results[i] = v
			remaining--
			if remaining == 0 {
				out := values.NewArray(realm.ArrayProto, 0)
				for _, r := range results {
					out.AppendElement(r)
				}
				resolveInternal(it, resultPD, out)
			}
		}
		onR := func(v values.Value) { rejectInternal(it, resultPD, v) }
		adoptItem(it, realm, item, onF, onR)
	}
}

func combineAllSettled(it *eval.Interpreter, realm *eval.Realm, items []values.Value, _ *values.Object, resultPD *PromiseData) {
	n := len(items)
	if n == 0 {
		resolveInternal(it, resultPD, values.NewArray(realm.ArrayProto, 0))
		return
	}
	results := make([]values.Value, n)
	remaining := n
	finish := func() {
		remaining--
		if remaining == 0 {
			out := values.NewArray(realm.ArrayProto, 0)
			for _, r := range results {
				out.AppendElement(r)
			}
			resolveInternal(it, resultPD, out)
		}
	}
	for i, item := range items {
		i := i
		onF := func(v values.Value) {
			o := values.NewObject(realm.ObjectProto)
			o.DefineOwn(values.StringKey("status"), values.DataProperty(values.String("fulfilled")))
			o.DefineOwn(values.StringKey("value"), values.DataProperty(v))
			results[i] = o
			finish()
		}
		onR := func(v values.Value) {
			o := values.NewObject(realm.ObjectProto)
			o.DefineOwn(values.StringKey("status"), values.DataProperty(values.String("rejected")))
			o.DefineOwn(values.StringKey("reason"), values.DataProperty(v))
			results[i] = o
			finish()
		}
		adoptItem(it, realm, item, onF, onR)
	}
}

func combineRace(it *eval.Interpreter, realm *eval.Realm, items []values.Value, _ *values.Object, resultPD *PromiseData) {
	for _, item := range items {
		adoptItem(it, realm, item, func(v values.Value) { resolveInternal(it, resultPD, v) }, func(v values.Value) { rejectInternal(it, resultPD, v) })
	}
}

func adoptItem(it *eval.Interpreter, realm *eval.Realm, item values.Value, onF, onR func(values.Value)) {
	if o, ok := item.(*values.Object); ok {
		if pd, ok := o.Internal.(*PromiseData); ok {
			subscribe(it, pd, onF, onR)
			return
		}
	}
	it.Loop.ScheduleMicrotask(func() error { onF(item); return nil })
}

func firstArg(args []values.Value) values.Value { return argAt(args, 0) }

func argAt(args []values.Value, i int) values.Value {
	if i < len(args) {
		return args[i]
	}
	return values.TheUndefined
}
