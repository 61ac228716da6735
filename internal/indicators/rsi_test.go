package indicators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRSIAllGains(t *testing.T) {
	values := make([]float64, 20)
	for i := range values {
		values[i] = float64(i + 1)
	}
	rsi := RSI(values, 14)

	require.Len(t, rsi, len(values))
	assert.InDelta(t, 100.0, rsi[len(rsi)-1], 1e-9)
}

func TestRSIAllLosses(t *testing.T) {
	values := make([]float64, 20)
	for i := range values {
		values[i] = float64(100 - i)
	}
	rsi := RSI(values, 14)

	assert.InDelta(t, 0.0, rsi[len(rsi)-1], 1e-9)
}

func TestRSIBounds(t *testing.T) {
	values := []float64{44, 44.5, 43.8, 44.2, 44.9, 44.1, 45.3, 45.0, 44.6, 45.8,
		46.0, 45.5, 46.3, 46.8, 46.2, 46.9, 47.5, 47.1, 46.7, 47.8}
	rsi := RSI(values, 14)

	for i := 14; i < len(rsi); i++ {
		assert.GreaterOrEqual(t, rsi[i], 0.0)
		assert.LessOrEqual(t, rsi[i], 100.0)
	}
	// Mostly rising series should read above the midline
	assert.Greater(t, rsi[len(rsi)-1], 50.0)
}

func TestRSIWarmupZeros(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}
	rsi := RSI(values, 14)

	require.Len(t, rsi, len(values))
	for _, v := range rsi {
		assert.Zero(t, v)
	}
}
