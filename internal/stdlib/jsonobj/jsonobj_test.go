package jsonobj

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

func TestStringifyObject(t *testing.T) {
	assert.Equal(t, `{"a":1,"b":"two"}`, eval(t, `JSON.stringify({a: 1, b: "two"})`))
}

func TestStringifyArray(t *testing.T) {
	assert.Equal(t, `[1,2,3]`, eval(t, `JSON.stringify([1, 2, 3])`))
}

func TestStringifyDropsUndefinedAndFunctions(t *testing.T) {
	assert.Equal(t, `{"a":1}`, eval(t, `JSON.stringify({a: 1, b: undefined, c: function(){}})`))
}

func TestStringifyThrowsOnCircularReference(t *testing.T) {
	e, err := engine.New()
	require.NoError(t, err)
	defer e.Close()

	_, err = e.EvaluateSync(`const o = {}; o.self = o; JSON.stringify(o);`, "<test>")
	assert.Error(t, err)
}

func TestStringifyIndent(t *testing.T) {
	got := eval(t, `JSON.stringify({a: 1}, null, 2)`)
	assert.Equal(t, "{\n  \"a\": 1\n}", got)
}

func TestParseRoundTrip(t *testing.T) {
	assert.Equal(t, `[1,2,3]`, eval(t, `JSON.stringify(JSON.parse('[1,2,3]'))`))
}

func TestParseWithReviver(t *testing.T) {
	got := eval(t, `JSON.parse('{"a":1,"b":2}', (k, v) => typeof v === 'number' ? v * 2 : v).a`)
	assert.Equal(t, "2", got)
}

func TestParseRejectsInvalidJSON(t *testing.T) {
	e, err := engine.New()
	require.NoError(t, err)
	defer e.Close()

	_, err = e.EvaluateSync(`JSON.parse('{not json}')`, "<test>")
	assert.Error(t, err)
}
