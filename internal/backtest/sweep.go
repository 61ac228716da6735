package backtest

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/barsim/internal/marketdata"
	"github.com/yourusername/barsim/internal/strategy"
)

// Variant is one parameter combination in a sweep.
type Variant struct {
	Name     string
	Config   Config
	Strategy strategy.Strategy
}

// SweepResult pairs a variant with its outcome.
type SweepResult struct {
	Name    string
	Metrics Metrics
	Err     error
}

// RunSweep executes the variants across a bounded worker pool. Each
// variant gets its own engine, so runs share nothing but the (read-only)
// bar source; wrapping the source with NewCachedSource keeps the backend
// from being hit once per variant. Results are returned in variant
// order regardless of completion order.
func RunSweep(ctx context.Context, variants []Variant, source marketdata.BarSource, workers int, log *logrus.Logger) []SweepResult {
	if workers <= 0 {
		workers = 4
	}
	if workers > len(variants) {
		workers = len(variants)
	}

	results := make([]SweepResult, len(variants))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = runVariant(ctx, variants[i], source, log)
			}
		}()
	}

	for i := range variants {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}

func runVariant(ctx context.Context, v Variant, source marketdata.BarSource, log *logrus.Logger) SweepResult {
	engine, err := NewEngine(v.Config, source, v.Strategy, log)
	if err != nil {
		return SweepResult{Name: v.Name, Err: err}
	}
	_, m, err := engine.Run(ctx)
	if err != nil {
		return SweepResult{Name: v.Name, Err: err}
	}
	return SweepResult{Name: v.Name, Metrics: m}
}
