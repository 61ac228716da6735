package backtest

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/barsim/internal/strategy"
)

func TestRunSweep(t *testing.T) {
	bars := makeBars(rallyCloses(200, 110, 100, 0.5))
	source := &stubSource{bars: bars}

	var variants []Variant
	for _, fast := range []int{10, 20, 30} {
		strat := strategy.NewSMACross(fast, 50)
		variants = append(variants, Variant{
			Name:     strat.Name(),
			Config:   testConfig(),
			Strategy: strat,
		})
	}

	results := RunSweep(context.Background(), variants, source, 2, testLogger())

	require.Len(t, results, len(variants))
	for i, r := range results {
		assert.Equal(t, variants[i].Name, r.Name, "results keep variant order")
		require.NoError(t, r.Err)
		assert.Equal(t, variants[i].Name, r.Metrics.StrategyName)
	}
}

func TestRunSweepReportsVariantErrors(t *testing.T) {
	bad := testConfig()
	bad.LiquidationLevel = 0.9 // invalid, above margin call

	variants := []Variant{
		{Name: "bad", Config: bad, Strategy: strategy.NewSMACross(10, 50)},
		{Name: "good", Config: testConfig(), Strategy: strategy.NewSMACross(10, 50)},
	}
	source := &stubSource{bars: makeBars(flatCloses(150, 100))}

	results := RunSweep(context.Background(), variants, source, 4, testLogger())

	require.Len(t, results, 2)
	assert.Error(t, results[0].Err)
	assert.NoError(t, results[1].Err)
}

func TestRunSweepManyWorkersFewVariants(t *testing.T) {
	source := &stubSource{bars: makeBars(flatCloses(150, 100))}
	variants := []Variant{
		{Name: "only", Config: testConfig(), Strategy: strategy.NewSMACross(10, 50)},
	}

	results := RunSweep(context.Background(), variants, source, 16, testLogger())
	require.Len(t, results, 1)
	assert.NoError(t, results[0].Err)
}

func TestRunSweepDeterministicRanking(t *testing.T) {
	bars := makeBars(rallyCloses(200, 110, 100, 0.5))
	source := &stubSource{bars: bars}

	build := func() []Variant {
		var vs []Variant
		for i, fast := range []int{10, 15, 20, 25} {
			strat := strategy.NewSMACross(fast, 50)
			vs = append(vs, Variant{
				Name:     fmt.Sprintf("v%d_%s", i, strat.Name()),
				Config:   testConfig(),
				Strategy: strat,
			})
		}
		return vs
	}

	first := RunSweep(context.Background(), build(), source, 3, testLogger())
	second := RunSweep(context.Background(), build(), source, 3, testLogger())

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].Metrics.TotalReturnPct, second[i].Metrics.TotalReturnPct)
		assert.Equal(t, first[i].Metrics.TotalTrades, second[i].Metrics.TotalTrades)
	}
}
