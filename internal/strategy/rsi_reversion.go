package strategy

import (
	"context"
	"fmt"

	"github.com/yourusername/barsim/internal/indicators"
	"github.com/yourusername/barsim/internal/models"
)

// RSIReversion is a mean-reversion strategy: oversold RSI opens a long,
// overbought RSI opens a short. Signal strength grows with the distance
// past the band, so only deep excursions clear the execution threshold.
type RSIReversion struct {
	BaseStrategy
	Period        int
	Oversold      float64
	Overbought    float64
	StopLossPct   float64
	TakeProfitPct float64
}

// NewRSIReversion creates a reversion strategy with standard 14/30/70
// settings.
func NewRSIReversion() *RSIReversion {
	return &RSIReversion{
		BaseStrategy:  DefaultBase(),
		Period:        14,
		Oversold:      30,
		Overbought:    70,
		StopLossPct:   0.04,
		TakeProfitPct: 0.05,
	}
}

// Name returns the strategy name.
func (s *RSIReversion) Name() string {
	return fmt.Sprintf("rsi_reversion_%d", s.Period)
}

// Analyze emits a signal when RSI leaves the neutral band.
func (s *RSIReversion) Analyze(ctx context.Context, bars []models.Bar, currentPrice float64) (Signal, error) {
	_ = ctx
	if s.Period <= 0 {
		return Signal{}, fmt.Errorf("invalid period: %d", s.Period)
	}
	if len(bars) < s.Period+1 {
		return Hold("insufficient history"), nil
	}

	closes := make([]float64, len(bars))
	for i, bar := range bars {
		closes[i] = bar.Close
	}
	rsi := indicators.RSI(closes, s.Period)
	value := rsi[len(rsi)-1]
	diags := map[string]float64{"rsi": value}

	switch {
	case value <= s.Oversold:
		return Signal{
			Action:     ActionBuy,
			Strength:   Clamp01(0.7 + (s.Oversold-value)/s.Oversold),
			Price:      currentPrice,
			StopLoss:   currentPrice * (1 - s.StopLossPct),
			TakeProfit: currentPrice * (1 + s.TakeProfitPct),
			Reason:     fmt.Sprintf("RSI oversold at %.1f", value),
			Indicators: diags,
		}, nil
	case value >= s.Overbought:
		return Signal{
			Action:     ActionSell,
			Strength:   Clamp01(0.7 + (value-s.Overbought)/(100-s.Overbought)),
			Price:      currentPrice,
			StopLoss:   currentPrice * (1 + s.StopLossPct),
			TakeProfit: currentPrice * (1 - s.TakeProfitPct),
			Reason:     fmt.Sprintf("RSI overbought at %.1f", value),
			Indicators: diags,
		}, nil
	}

	hold := Hold("RSI neutral")
	hold.Indicators = diags
	return hold, nil
}

// GetParameters returns the tunable parameters for reporting.
func (s *RSIReversion) GetParameters() map[string]interface{} {
	return map[string]interface{}{
		"period":          s.Period,
		"oversold":        s.Oversold,
		"overbought":      s.Overbought,
		"stop_loss_pct":   s.StopLossPct,
		"take_profit_pct": s.TakeProfitPct,
	}
}
