package collectionsobj

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meko-tech/jsengine/pkg/engine"
)

func eval(t *testing.T, src string) string {
	t.Helper()
	e, err := engine.New()
	require.NoError(t, err)
	defer e.Close()

	v, err := e.EvaluateSync(src, "<test>")
	require.NoError(t, err)
	return v.String()
}

func TestMapSetAndGet(t *testing.T) {
	got := eval(t, `const m = new Map(); m.set('a', 1); m.set('b', 2); m.get('a') + m.get('b')`)
	assert.Equal(t, "3", got)
}

func TestMapSizeAndDelete(t *testing.T) {
	got := eval(t, `const m = new Map([['a',1],['b',2]]); m.delete('a'); m.size`)
	assert.Equal(t, "1", got)
}

func TestMapKeysAreCompareByValueForPrimitives(t *testing.T) {
	got := eval(t, `const m = new Map(); m.set(NaN, 'nan'); m.get(NaN)`)
	assert.Equal(t, "nan", got)
}

func TestMapPreservesInsertionOrder(t *testing.T) {
	got := eval(t, `const m = new Map(); m.set('z', 1); m.set('a', 2); [...m.keys()].join(',')`)
	assert.Equal(t, "z,a", got)
}

func TestSetDeduplicatesBySameValueZero(t *testing.T) {
	got := eval(t, `const s = new Set([1, 2, 2, NaN, NaN]); s.size`)
	assert.Equal(t, "3", got)
}

func TestSetHasAndDelete(t *testing.T) {
	got := eval(t, `const s = new Set([1,2,3]); s.delete(2); [s.has(1), s.has(2), s.has(3)].join(',')`)
	assert.Equal(t, "true,false,true", got)
}

func TestWeakMapRejectsPrimitiveKey(t *testing.T) {
	e, err := engine.New()
	require.NoError(t, err)
	defer e.Close()

	_, err = e.EvaluateSync(`const wm = new WeakMap(); wm.set(1, 'x');`, "<test>")
	assert.Error(t, err)
}

func TestWeakSetObjectIdentity(t *testing.T) {
	got := eval(t, `const ws = new WeakSet(); const o = {}; ws.add(o); [ws.has(o), ws.has({})].join(',')`)
	assert.Equal(t, "true,false", got)
}
