package dateobj

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

func TestDateUTCConstructionFields(t *testing.T) {
	got := eval(t, `const d = new Date(Date.UTC(2020, 0, 15, 10, 30, 0)); [d.getUTCFullYear(), d.getUTCMonth(), d.getUTCDate(), d.getUTCHours(), d.getUTCMinutes()].join(',')`)
	assert.Equal(t, "2020,0,15,10,30", got)
}

func TestDateToISOString(t *testing.T) {
	got := eval(t, `new Date(Date.UTC(2020, 0, 1, 0, 0, 0)).toISOString()`)
	assert.Equal(t, "2020-01-01T00:00:00.000Z", got)
}

func TestDateGetTimeRoundTrip(t *testing.T) {
	got := eval(t, `const ms = Date.UTC(2020, 5, 1); new Date(ms).getTime() === ms`)
	assert.Equal(t, "true", got)
}

func TestDateSetFullYearMutatesInPlace(t *testing.T) {
	got := eval(t, `const d = new Date(Date.UTC(2020, 0, 1)); d.setFullYear(1999); d.getUTCFullYear()`)
	assert.Equal(t, "1999", got)
}

func TestInvalidDateIsNaN(t *testing.T) {
	got := eval(t, `isNaN(new Date('not a date').getTime())`)
	assert.Equal(t, "true", got)
}
