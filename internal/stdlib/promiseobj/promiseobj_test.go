package promiseobj

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meko-tech/jsengine/pkg/engine"
)

// run evaluates src to quiescence on a fresh Engine and returns out's
// completion value as a string.
func run(t *testing.T, setup, out string) string {
	t.Helper()
	e, err := engine.New()
	require.NoError(t, err)
	defer e.Close()

	_, err = e.Evaluate(setup, "<test>")
	require.NoError(t, err)
	e.Run()

	v, err := e.Evaluate(out, "<test>")
	require.NoError(t, err)
	return v.String()
}

func TestPromiseResolveThen(t *testing.T) {
	got := run(t, `let r; Promise.resolve(5).then(v => r = v * 2);`, `r`)
	assert.Equal(t, "10", got)
}

func TestPromiseRejectCatch(t *testing.T) {
	got := run(t, `let r; Promise.reject('boom').catch(e => r = e);`, `r`)
	assert.Equal(t, "boom", got)
}

func TestPromiseThenChaining(t *testing.T) {
	got := run(t, `let r; Promise.resolve(1).then(v => v + 1).then(v => v + 1).then(v => r = v);`, `r`)
	assert.Equal(t, "3", got)
}

func TestPromiseAllSettlesInOrder(t *testing.T) {
	got := run(t, `let r; Promise.all([Promise.resolve(1), Promise.resolve(2), 3]).then(v => r = v.join(','));`, `r`)
	assert.Equal(t, "1,2,3", got)
}

func TestPromiseAllRejectsOnFirstRejection(t *testing.T) {
	got := run(t, `let r; Promise.all([Promise.resolve(1), Promise.reject('bad')]).catch(e => r = e);`, `r`)
	assert.Equal(t, "bad", got)
}

func TestPromiseRaceSettlesWithFirst(t *testing.T) {
	got := run(t, `let r; Promise.race([Promise.resolve('first'), Promise.resolve('second')]).then(v => r = v);`, `r`)
	assert.Equal(t, "first", got)
}

func TestPromiseFinallyRunsRegardless(t *testing.T) {
	got := run(t, `let r = 0; Promise.resolve(1).finally(() => r++).then(() => r++).catch(() => {});`, `r`)
	assert.Equal(t, "2", got)
}

func TestPromiseThenableAdoptsOuterPromise(t *testing.T) {
	got := run(t, `let r; Promise.resolve({ then(resolve){ resolve(99); } }).then(v => r = v);`, `r`)
	assert.Equal(t, "99", got)
}
