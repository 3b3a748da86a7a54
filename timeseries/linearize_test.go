package timeseries

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinearizationTimes(t *testing.T) {
	got := linearizationTimes([]float64{0, 2, 4, 6})
	assert.Equal(t, []float64{0, 1, 2, 3, 4, 5, 6}, got)
}

func TestLinearizationValues(t *testing.T) {
	got := linearizationValues([]float64{1, 3, 2})
	require.Len(t, got, 7)
	assert.InDeltaSlice(t, []float64{0, 1, 2, 3.75, 2.5, 2, 1.5}, got, 1e-12)
}

func TestLinearizationValuesLinearTrend(t *testing.T) {
	// A linear trend linearizes to the same straight line.
	got := linearizationValues([]float64{1, 3})
	assert.InDeltaSlice(t, []float64{0, 1, 2, 3, 4}, got, 1e-12)
}

func TestLinearizationPreservesMeans(t *testing.T) {
	values := []float64{1, 3, 2, 4, -1, 0.5}
	lin := linearizationValues(values)
	require.Len(t, lin, 2*len(values)+1)

	for i, v := range values {
		lower, mid, upper := lin[2*i], lin[2*i+1], lin[2*i+2]
		assert.InDelta(t, v, (lower+2*mid+upper)/4, 1e-12, "interval %d", i)
	}
}
