package objectobj

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

func TestObjectKeysValuesEntries(t *testing.T) {
	assert.Equal(t, "a,b", eval(t, `Object.keys({a: 1, b: 2}).join(',')`))
	assert.Equal(t, "1,2", eval(t, `Object.values({a: 1, b: 2}).join(',')`))
}

func TestObjectAssignMergesLeftToRight(t *testing.T) {
	assert.Equal(t, "2", eval(t, `Object.assign({a: 1}, {a: 2}).a`))
}

func TestObjectFreezePreventsMutation(t *testing.T) {
	got := eval(t, `const o = Object.freeze({a: 1}); o.a = 2; o.a`)
	assert.Equal(t, "1", got)
}

func TestObjectCreateWithNullProto(t *testing.T) {
	got := eval(t, `Object.getPrototypeOf(Object.create(null))`)
	assert.Equal(t, "null", got)
}

func TestObjectDefinePropertyGetter(t *testing.T) {
	got := eval(t, `const o = {}; Object.defineProperty(o, 'x', { get(){ return 42; } }); o.x`)
	assert.Equal(t, "42", got)
}

func TestArrayMapFilterReduce(t *testing.T) {
	assert.Equal(t, "2,4,6", eval(t, `[1,2,3].map(x => x*2).join(',')`))
	assert.Equal(t, "2,4", eval(t, `[1,2,3,4].filter(x => x % 2 === 0).join(',')`))
	assert.Equal(t, "10", eval(t, `[1,2,3,4].reduce((a,b) => a+b, 0)`))
}

func TestArrayDestructuringWithDefaults(t *testing.T) {
	got := eval(t, `const [a, b = 10] = [1]; a + b`)
	assert.Equal(t, "11", got)
}

func TestStringTemplateLiteralInterpolation(t *testing.T) {
	got := eval(t, "const x = 3; `x is ${x}`")
	assert.Equal(t, "x is 3", got)
}

func TestErrorThrowCaughtWithInstanceofCheck(t *testing.T) {
	got := eval(t, `let r; try { throw new TypeError('bad'); } catch (e) { r = e instanceof TypeError ? e.message : 'wrong'; } r`)
	assert.Equal(t, "bad", got)
}
