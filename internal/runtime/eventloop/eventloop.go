// Package eventloop implements a single-threaded cooperative scheduler:
// FIFO microtask and macrotask queues, a monotonic timer id counter, and
// due-time-ordered timer firing, driven by Run until both queues are
// empty and no timer remains due.
//
// container/heap backs the due-time-ordered timer set.
package eventloop

import (
	"container/heap"
)

// Task is a zero-argument callback queued onto either queue. A timer
// callback's error is routed to the diagnostics exception channel rather
// than crashing the loop; that routing is the caller's responsibility -
// Loop itself only decides ordering, not error handling.
type Task func() error

// timerEntry is one registered setTimeout/setInterval.
type timerEntry struct {
	id        int64
	due       int64 // virtual time units (milliseconds since loop creation)
	interval  int64 // 0 for a one-shot setTimeout
	periodic  bool
	cancelled bool
	callback  Task
	heapIndex int
}

// timerHeap orders pending timers by due time, ties broken by id: timers
// whose due time has elapsed are moved to the macrotask queue in
// due-time order.
type timerHeap []*timerEntry

func (h timerHeap) Len() int { return len(h) }
func (h timerHeap) Less(i, j int) bool {
	if h[i].due != h[j].due {
		return h[i].due < h[j].due
	}
	return h[i].id < h[j].id
}
func (h timerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].heapIndex, h[j].heapIndex = i, j
}
func (h *timerHeap) Push(x any) {
	e := x.(*timerEntry)
	e.heapIndex = len(*h)
	*h = append(*h, e)
}
func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return e
}

// Loop is one engine instance's event loop. It is not safe for concurrent
// use - its whole premise is single-threaded cooperative scheduling.
type Loop struct {
	microtasks []Task
	macrotasks []Task

	timers  timerHeap
	byID    map[int64]*timerEntry
	nextID  int64
	virtual int64 // moved forward by Advance (when Run has nothing else pending) or AdvanceTo

	onTaskError func(err error)
}

// New creates an empty Loop. onTaskError, if non-nil, receives every error
// returned by a drained task, routing it to the exception channel rather
// than letting it crash the loop.
func New(onTaskError func(err error)) *Loop {
	return &Loop{
		byID:        make(map[int64]*timerEntry),
		onTaskError: onTaskError,
		nextID:      1,
	}
}

// ScheduleMicrotask enqueues t on the microtask queue.
func (l *Loop) ScheduleMicrotask(t Task) {
	l.microtasks = append(l.microtasks, t)
}

// ScheduleMacrotask enqueues t directly on the macrotask queue - the
// host-task-injection hook a host binding uses to register externally
// triggered work.
func (l *Loop) ScheduleMacrotask(t Task) {
	l.macrotasks = append(l.macrotasks, t)
}

// SetTimeout registers a one-shot timer due delayMs virtual milliseconds
// from now, returning its id.
func (l *Loop) SetTimeout(callback Task, delayMs int64) int64 {
	return l.addTimer(callback, delayMs, 0, false)
}

// SetInterval registers a repeating timer.
func (l *Loop) SetInterval(callback Task, intervalMs int64) int64 {
	if intervalMs <= 0 {
		intervalMs = 1
	}
	return l.addTimer(callback, intervalMs, intervalMs, true)
}

func (l *Loop) addTimer(callback Task, delayMs, intervalMs int64, periodic bool) int64 {
	if delayMs < 0 {
		delayMs = 0
	}
	id := l.nextID
	l.nextID++
	e := &timerEntry{id: id, due: l.virtual + delayMs, interval: intervalMs, periodic: periodic, callback: callback}
	l.byID[id] = e
	heap.Push(&l.timers, e)
	return id
}

// Clear cancels a timer by id (clearTimeout/clearInterval); cancelled
// timers never fire.
func (l *Loop) Clear(id int64) {
	if e, ok := l.byID[id]; ok {
		e.cancelled = true
	}
}

// HasPendingWork reports whether the loop has anything left to drain:
// queued tasks or a live (non-cancelled) timer.
func (l *Loop) HasPendingWork() bool {
	if len(l.microtasks) > 0 || len(l.macrotasks) > 0 {
		return true
	}
	for _, e := range l.timers {
		if !e.cancelled {
			return true
		}
	}
	return false
}

// drainMicrotasks runs every queued microtask to completion, including
// ones newly queued by a microtask that already ran: all queued
// microtasks drain before the next macrotask.
func (l *Loop) drainMicrotasks() {
	for len(l.microtasks) > 0 {
		t := l.microtasks[0]
		l.microtasks = l.microtasks[1:]
		if err := t(); err != nil && l.onTaskError != nil {
			l.onTaskError(err)
		}
	}
}

// popDueTimers moves every timer due at or before l.virtual onto the
// macrotask queue, in due-time order (ties by id, via the heap's Less),
// skipping cancelled ones; periodic timers are rescheduled for their
// next occurrence.
func (l *Loop) popDueTimers() {
	for len(l.timers) > 0 && l.timers[0].due <= l.virtual {
		e := heap.Pop(&l.timers).(*timerEntry)
		if e.cancelled {
			delete(l.byID, e.id)
			continue
		}
		cb := e.callback
		l.macrotasks = append(l.macrotasks, cb)
		if e.periodic {
			e.due = l.virtual + e.interval
			heap.Push(&l.timers, e)
		} else {
			delete(l.byID, e.id)
		}
	}
}

// Advance fast-forwards virtual time to the next pending timer's due time
// when there is otherwise no other work - a host driving real wall-clock
// time instead would set virtual via AdvanceTo from a real clock; the
// in-process CLI/test driver uses this to run timer-only programs to
// completion without actually sleeping.
func (l *Loop) Advance() bool {
	if len(l.timers) == 0 {
		return false
	}
	l.virtual = l.timers[0].due
	return true
}

// AdvanceTo sets virtual time to at least now, for a host driving real
// wall-clock timers.
func (l *Loop) AdvanceTo(now int64) {
	if now > l.virtual {
		l.virtual = now
	}
}

// Run drains microtasks, then macrotasks (interleaved with a microtask
// drain after each macrotask), then due timers, repeating until nothing
// remains. It never blocks on real time: callers that want
// real-time timer semantics should call AdvanceTo from their own clock
// between Run calls, or rely on Advance's virtual-time fast-forward for
// deterministic/test drivers.
func (l *Loop) Run() {
	l.RunUntil(func() bool { return !l.HasPendingWork() })
}

// RunUntil drains the loop the same way Run does, but stops as soon as
// done reports true, even if work remains - used to synchronously settle
// one Promise (e.g. a top-level `await`, or the `Unknown`-node fallback's
// unstructured evaluation) without pumping the whole program to
// quiescence out from under the caller.
func (l *Loop) RunUntil(done func() bool) {
	l.drainMicrotasks()
	for !done() {
		l.popDueTimers()
		if len(l.macrotasks) == 0 {
			if !l.HasPendingWork() {
				return
			}
			if !l.Advance() {
				return
			}
			continue
		}
		t := l.macrotasks[0]
		l.macrotasks = l.macrotasks[1:]
		if err := t(); err != nil && l.onTaskError != nil {
			l.onTaskError(err)
		}
		l.drainMicrotasks()
	}
}
