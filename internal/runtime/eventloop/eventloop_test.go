package eventloop

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMicrotasksDrainBeforeMacrotask(t *testing.T) {
	var order []string
	l := New(nil)
	l.ScheduleMacrotask(func() error { order = append(order, "macro"); return nil })
	l.ScheduleMicrotask(func() error { order = append(order, "micro1"); return nil })
	l.ScheduleMicrotask(func() error { order = append(order, "micro2"); return nil })
	l.Run()
	assert.Equal(t, []string{"micro1", "micro2", "macro"}, order)
}

func TestMicrotaskQueuedDuringMicrotaskStillDrainsFirst(t *testing.T) {
	var order []string
	l := New(nil)
	l.ScheduleMacrotask(func() error { order = append(order, "macro"); return nil })
	l.ScheduleMicrotask(func() error {
		order = append(order, "micro1")
		l.ScheduleMicrotask(func() error { order = append(order, "micro2"); return nil })
		return nil
	})
	l.Run()
	assert.Equal(t, []string{"micro1", "micro2", "macro"}, order)
}

func TestTimersFireInDueOrder(t *testing.T) {
	var order []int
	l := New(nil)
	l.SetTimeout(func() error { order = append(order, 3); return nil }, 30)
	l.SetTimeout(func() error { order = append(order, 1); return nil }, 10)
	l.SetTimeout(func() error { order = append(order, 2); return nil }, 20)
	l.Run()
	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestTimerTiesBrokenByID(t *testing.T) {
	var order []int
	l := New(nil)
	l.SetTimeout(func() error { order = append(order, 1); return nil }, 10)
	l.SetTimeout(func() error { order = append(order, 2); return nil }, 10)
	l.Run()
	assert.Equal(t, []int{1, 2}, order)
}

func TestClearTimeoutPreventsFiring(t *testing.T) {
	fired := false
	l := New(nil)
	id := l.SetTimeout(func() error { fired = true; return nil }, 10)
	l.Clear(id)
	l.Run()
	assert.False(t, fired)
}

func TestSetIntervalRequiresExplicitClear(t *testing.T) {
	count := 0
	l := New(nil)
	var id int64
	id = l.SetInterval(func() error {
		count++
		if count >= 3 {
			l.Clear(id)
		}
		return nil
	}, 5)
	l.Run()
	assert.Equal(t, 3, count)
}

func TestTaskErrorRoutedToCallback(t *testing.T) {
	var gotErr error
	l := New(func(err error) { gotErr = err })
	l.ScheduleMacrotask(func() error { return assertErr })
	l.Run()
	require.Equal(t, assertErr, gotErr)
}

var assertErr = &testError{"boom"}

type testError struct{ msg string }

func (e *testError) Error() string { return e.msg }
