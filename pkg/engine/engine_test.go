package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meko-tech/jsengine/internal/runtime/values"
)

// testEval is a helper that creates a fresh Engine, evaluates input to
// quiescence, and returns its completion value.
func testEval(t *testing.T, input string) string {
	t.Helper()
	e, err := New()
	require.NoError(t, err)
	defer e.Close()

	v, err := e.EvaluateSync(input, "<test>")
	require.NoError(t, err)
	require.Empty(t, e.Exceptions())
	return v.String()
}

// TestSeedForLoopContinueBreak checks that continue skips the rest of a
// loop body and break exits the loop entirely, within the same loop.
func TestSeedForLoopContinueBreak(t *testing.T) {
	got := testEval(t, `let x = 0; for (let i = 0; i < 5; i++) { if (i === 2) continue; if (i === 4) break; x += i; } x`)
	assert.Equal(t, "4", got)
}

// TestSeedAsyncAwait checks an async function awaiting a resolved
// promise, observed via a .then callback after the event loop drains.
func TestSeedAsyncAwait(t *testing.T) {
	e, err := New()
	require.NoError(t, err)
	defer e.Close()

	_, err = e.Evaluate(`async function f(){ return await Promise.resolve(41) + 1; } f().then(v => globalThis.r = v);`, "<test>")
	require.NoError(t, err)
	e.Run()

	v, err := e.Evaluate(`r`, "<test>")
	require.NoError(t, err)
	assert.Equal(t, "42", v.String())
}

// TestSeedFunctionHoisting checks that a function declaration nested in
// an if/else's else branch is not visible before the branch runs (typeof
// reports undefined there) and is a callable function once it has been
// reached.
func TestSeedFunctionHoisting(t *testing.T) {
	got := testEval(t, `var before = typeof f; if (false) ; else function f(){ return 'else'; } var after = typeof f; [before, after, f()].join(',')`)
	assert.Equal(t, "undefined,function,else", got)
}

// TestSeedPrototypeMethodSharing checks two instances sharing one
// constructor's prototype method.
func TestSeedPrototypeMethodSharing(t *testing.T) {
	got := testEval(t, `function Body(x){ this.x = x; } Body.prototype.dbl = function(){ return this.x*2; }; [new Body(5), new Body(10)][0].dbl()`)
	assert.Equal(t, "10", got)
}

// TestSeedEventLoopOrdering checks that synchronous code runs before any
// macrotask, including a zero-delay setTimeout.
func TestSeedEventLoopOrdering(t *testing.T) {
	e, err := New()
	require.NoError(t, err)
	defer e.Close()

	_, err = e.Evaluate(`let order = []; order.push('s'); setTimeout(() => order.push('t'), 0); order.push('e'); globalThis.order = order;`, "<test>")
	require.NoError(t, err)
	e.Run()

	v, err := e.Evaluate(`order.join(',')`, "<test>")
	require.NoError(t, err)
	assert.Equal(t, "s,e,t", v.String())
}

func TestEvaluateReturnsParseError(t *testing.T) {
	e, err := New()
	require.NoError(t, err)
	defer e.Close()

	_, err = e.Evaluate(`let let let`, "<test>")
	assert.Error(t, err)
}

func TestSetGlobalFunctionIsCallableFromGuestCode(t *testing.T) {
	e, err := New()
	require.NoError(t, err)
	defer e.Close()

	var seen string
	e.SetGlobalFunction("hostLog", 1, func(this values.Value, args []values.Value) (values.Value, error) {
		if len(args) > 0 {
			seen = args[0].String()
		}
		return values.TheUndefined, nil
	})

	_, err = e.EvaluateSync(`hostLog('hi')`, "<test>")
	require.NoError(t, err)
	assert.Equal(t, "hi", seen)
}
