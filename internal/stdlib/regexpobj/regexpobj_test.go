package regexpobj

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

func TestTestMatchesPattern(t *testing.T) {
	assert.Equal(t, "true", eval(t, `/ab+c/.test('xxabbbcxx')`))
	assert.Equal(t, "false", eval(t, `/ab+c/.test('xxacxx')`))
}

func TestExecReturnsCaptureGroups(t *testing.T) {
	got := eval(t, `/(\d+)-(\d+)/.exec('12-34')[1]`)
	assert.Equal(t, "12", got)
}

func TestGlobalFlagAdvancesLastIndex(t *testing.T) {
	got := eval(t, `const re = /a/g; re.exec('banana'); re.lastIndex`)
	assert.Equal(t, "2", got)
}

func TestStringMatchAllCountsMatches(t *testing.T) {
	got := eval(t, `[...('a1b2c3'.matchAll(/\d/g))].length`)
	assert.Equal(t, "3", got)
}

func TestStringReplaceWithRegExp(t *testing.T) {
	got := eval(t, `'2024-01-02'.replace(/-/g, '/')`)
	assert.Equal(t, "2024/01/02", got)
}

func TestStringSplitWithRegExp(t *testing.T) {
	got := eval(t, `'a1b22c'.split(/\d+/).join(',')`)
	assert.Equal(t, "a,b,c", got)
}
