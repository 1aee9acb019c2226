package eval

import "github.com/meko-tech/jsengine/internal/runtime/values"

// GetIterator implements GetIterator: look up Symbol.iterator and call it
// to obtain the iterator object. Symbol.asyncIterator is never consulted;
// for-await-of also goes through Symbol.iterator and awaits each value.
func (it *Interpreter) GetIterator(v values.Value) (*values.Object, error) {
	m, err := it.GetMember(v, values.SymbolKey(values.SymbolIterator))
	if err != nil {
		return nil, err
	}
	fn, ok := m.(*values.Object)
	if !ok || !fn.IsCallable() {
		return nil, it.NewThrow("TypeError", "%s is not iterable", describeForError(v))
	}
	iterVal, err := it.Call(fn, v, nil)
	if err != nil {
		return nil, err
	}
	iterObj, ok := iterVal.(*values.Object)
	if !ok {
		return nil, it.NewThrow("TypeError", "Result of the Symbol.iterator method is not an object")
	}
	return iterObj, nil
}

// IteratorStep calls iter.next() and reports {value, done}.
func (it *Interpreter) IteratorStep(iter *values.Object) (values.Value, bool, error) {
	nextFn, err := it.GetMember(iter, values.StringKey("next"))
	if err != nil {
		return nil, false, err
	}
	fn, ok := nextFn.(*values.Object)
	if !ok || !fn.IsCallable() {
		return nil, false, it.NewThrow("TypeError", "iterator.next is not a function")
	}
	res, err := it.Call(fn, iter, nil)
	if err != nil {
		return nil, false, err
	}
	resObj, ok := res.(*values.Object)
	if !ok {
		return nil, false, it.NewThrow("TypeError", "Iterator result is not an object")
	}
	doneV, err := it.GetMember(resObj, values.StringKey("done"))
	if err != nil {
		return nil, false, err
	}
	valV, err := it.GetMember(resObj, values.StringKey("value"))
	if err != nil {
		return nil, false, err
	}
	return valV, ToBoolean(doneV), nil
}

// IteratorClose invokes iter.return() if present, used when a for-of loop
// exits early via break/return/throw.
func (it *Interpreter) IteratorClose(iter *values.Object) {
	retFn, err := it.GetMember(iter, values.StringKey("return"))
	if err != nil {
		return
	}
	fn, ok := retFn.(*values.Object)
	if !ok || !fn.IsCallable() {
		return
	}
	_, _ = it.Call(fn, iter, nil)
}

// IterateToSlice drains v's iterator fully into a slice, exported for
// internal/stdlib callers (Array.from, Object.fromEntries, Map/Set
// constructors) that need the same eager-drain behavior destructuring and
// spread use internally.
func (it *Interpreter) IterateToSlice(v values.Value) ([]values.Value, error) {
	return it.iterateToSlice(v)
}

// iterateToSlice drains v's iterator fully into a slice; used by array
// destructuring and spread (`[...iterable]`), both of which need every
// element up front.
func (it *Interpreter) iterateToSlice(v values.Value) ([]values.Value, error) {
	if o, ok := v.(*values.Object); ok && o.Class == "Array" {
		n := o.Length()
		out := make([]values.Value, 0, n)
		for i := uint32(0); i < n; i++ {
			ev, _ := o.GetElement(i)
			if ev == nil {
				ev = values.TheUndefined
			}
			out = append(out, ev)
		}
		return out, nil
	}
	iter, err := it.GetIterator(v)
	if err != nil {
		return nil, err
	}
	var out []values.Value
	for {
		val, done, err := it.IteratorStep(iter)
		if err != nil {
			return nil, err
		}
		if done {
			break
		}
		out = append(out, val)
	}
	return out, nil
}

// forEachOf drives a for-of loop body, stopping and closing the iterator
// on the first non-normal completion (break/return/throw).
func (it *Interpreter) forEachOf(v values.Value, body func(val values.Value) (Completion, error)) (Completion, error) {
	iter, err := it.GetIterator(v)
	if err != nil {
		return Completion{}, err
	}
	for {
		val, done, err := it.IteratorStep(iter)
		if err != nil {
			return Completion{}, err
		}
		if done {
			return normalUndefined, nil
		}
		c, err := body(val)
		if err != nil {
			it.IteratorClose(iter)
			return Completion{}, err
		}
		if c.Type == CompletionBreak && c.Label == "" {
			it.IteratorClose(iter)
			return normalUndefined, nil
		}
		if c.Type != CompletionNormal {
			it.IteratorClose(iter)
			return c, nil
		}
	}
}
