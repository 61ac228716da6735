package strategy

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/barsim/internal/models"
)

func barsFromCloses(closes []float64) []models.Bar {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]models.Bar, len(closes))
	for i, c := range closes {
		bars[i] = models.Bar{
			OpenTime: start.Add(time.Duration(i) * time.Hour),
			Open:     c,
			High:     c * 1.001,
			Low:      c * 0.999,
			Close:    c,
			Volume:   1000,
		}
	}
	return bars
}

// crossCloses builds a flat series that rallies from the given index,
// forcing a fast-over-slow cross shortly after.
func crossCloses(n, rallyFrom int) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = 100
		if i >= rallyFrom {
			closes[i] = 100 + float64(i-rallyFrom)
		}
	}
	return closes
}

func TestSMACrossGoldenCross(t *testing.T) {
	s := NewSMACross(5, 10)
	closes := crossCloses(40, 20)

	var buys int
	for i := 11; i < len(closes); i++ {
		sig, err := s.Analyze(context.Background(), barsFromCloses(closes[:i+1]), closes[i])
		require.NoError(t, err)
		if sig.Action == ActionBuy {
			buys++
			assert.GreaterOrEqual(t, sig.Strength, 0.7)
			assert.Less(t, sig.StopLoss, sig.Price)
			assert.Greater(t, sig.TakeProfit, sig.Price)
			assert.Greater(t, i, 20, "cross must not fire before the rally starts")
		}
	}
	assert.Equal(t, 1, buys, "a single regime change produces a single buy")
}

func TestSMACrossDeathCross(t *testing.T) {
	s := NewSMACross(5, 10)
	closes := crossCloses(40, 20)
	// Mirror the rally into a decline
	for i := 20; i < len(closes); i++ {
		closes[i] = 100 - float64(i-20)
	}

	var sells int
	for i := 11; i < len(closes); i++ {
		sig, err := s.Analyze(context.Background(), barsFromCloses(closes[:i+1]), closes[i])
		require.NoError(t, err)
		if sig.Action == ActionSell {
			sells++
			assert.Greater(t, sig.StopLoss, sig.Price)
		}
	}
	assert.Equal(t, 1, sells)
}

func TestSMACrossInsufficientHistory(t *testing.T) {
	s := NewSMACross(5, 10)
	sig, err := s.Analyze(context.Background(), barsFromCloses([]float64{100, 101}), 101)
	require.NoError(t, err)
	assert.Equal(t, ActionHold, sig.Action)
}

func TestSMACrossInvalidPeriods(t *testing.T) {
	s := NewSMACross(10, 5)
	_, err := s.Analyze(context.Background(), barsFromCloses(crossCloses(40, 20)), 100)
	assert.Error(t, err)
}

func TestSMACrossNoLookahead(t *testing.T) {
	s := NewSMACross(5, 10)
	closes := crossCloses(60, 20)
	bars := barsFromCloses(closes)

	for i := 15; i < 40; i++ {
		viewed, err := s.Analyze(context.Background(), bars[:i+1], closes[i])
		require.NoError(t, err)

		truncated := make([]models.Bar, i+1)
		copy(truncated, bars[:i+1])
		isolated, err := s.Analyze(context.Background(), truncated, closes[i])
		require.NoError(t, err)

		assert.Equal(t, viewed, isolated, "signal at bar %d must not depend on future bars", i)
	}
}
