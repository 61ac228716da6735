package strategy

import (
	"context"
	"fmt"

	"github.com/yourusername/barsim/internal/indicators"
	"github.com/yourusername/barsim/internal/models"
)

// SMACross is a moving-average crossover strategy: a fast SMA crossing
// above the slow SMA opens a long, crossing below opens a short.
type SMACross struct {
	BaseStrategy
	FastPeriod    int
	SlowPeriod    int
	StopLossPct   float64
	TakeProfitPct float64
}

// NewSMACross creates a crossover strategy with the given periods.
func NewSMACross(fastPeriod, slowPeriod int) *SMACross {
	return &SMACross{
		BaseStrategy:  DefaultBase(),
		FastPeriod:    fastPeriod,
		SlowPeriod:    slowPeriod,
		StopLossPct:   0.03,
		TakeProfitPct: 0.06,
	}
}

// Name returns the strategy name.
func (s *SMACross) Name() string {
	return fmt.Sprintf("sma_cross_%d_%d", s.FastPeriod, s.SlowPeriod)
}

// Analyze emits a buy on a fresh golden cross and a sell on a fresh death
// cross. Signals are only generated on the bar where the cross occurs, so
// a single regime change produces a single trade.
func (s *SMACross) Analyze(ctx context.Context, bars []models.Bar, currentPrice float64) (Signal, error) {
	_ = ctx
	if s.FastPeriod <= 0 || s.SlowPeriod <= s.FastPeriod {
		return Signal{}, fmt.Errorf("invalid periods: fast=%d slow=%d", s.FastPeriod, s.SlowPeriod)
	}
	if len(bars) < s.SlowPeriod+1 {
		return Hold("insufficient history"), nil
	}

	closes := make([]float64, len(bars))
	for i, bar := range bars {
		closes[i] = bar.Close
	}
	fast := indicators.SMA(closes, s.FastPeriod)
	slow := indicators.SMA(closes, s.SlowPeriod)

	last := len(closes) - 1
	diags := map[string]float64{
		"sma_fast": fast[last],
		"sma_slow": slow[last],
	}

	separation := 0.0
	if slow[last] > 0 {
		separation = (fast[last] - slow[last]) / slow[last]
	}

	if indicators.Crossover(fast, slow) {
		return Signal{
			Action:     ActionBuy,
			Strength:   Clamp01(0.75 + separation*10),
			Price:      currentPrice,
			StopLoss:   currentPrice * (1 - s.StopLossPct),
			TakeProfit: currentPrice * (1 + s.TakeProfitPct),
			Reason:     fmt.Sprintf("golden cross: SMA%d above SMA%d", s.FastPeriod, s.SlowPeriod),
			Indicators: diags,
		}, nil
	}
	if indicators.Crossunder(fast, slow) {
		return Signal{
			Action:     ActionSell,
			Strength:   Clamp01(0.75 - separation*10),
			Price:      currentPrice,
			StopLoss:   currentPrice * (1 + s.StopLossPct),
			TakeProfit: currentPrice * (1 - s.TakeProfitPct),
			Reason:     fmt.Sprintf("death cross: SMA%d below SMA%d", s.FastPeriod, s.SlowPeriod),
			Indicators: diags,
		}, nil
	}

	hold := Hold("no crossover")
	hold.Indicators = diags
	return hold, nil
}

// GetParameters returns the tunable parameters for reporting.
func (s *SMACross) GetParameters() map[string]interface{} {
	return map[string]interface{}{
		"fast_period":     s.FastPeriod,
		"slow_period":     s.SlowPeriod,
		"stop_loss_pct":   s.StopLossPct,
		"take_profit_pct": s.TakeProfitPct,
	}
}
