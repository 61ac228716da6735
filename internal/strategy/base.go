package strategy

import "math"

// BaseStrategy provides shared position sizing and risk checks for
// strategies. Sizing is Kelly-inspired: the amount risked per trade is a
// fixed fraction of balance, scaled up by the distance to the stop.
type BaseStrategy struct {
	RiskPerTrade        float64 // fraction of balance risked per trade
	MaxPositionFraction float64 // cap on size as a fraction of balance
	DefaultFraction     float64 // fallback size when no stop-loss is set
	Leverage            float64 // multiplies the position cap
	MaxStopDistance     float64 // veto trades whose stop is further than this fraction
}

// DefaultBase returns conservative sizing defaults.
func DefaultBase() BaseStrategy {
	return BaseStrategy{
		RiskPerTrade:        0.02,
		MaxPositionFraction: 0.25,
		DefaultFraction:     0.1,
		Leverage:            1,
		MaxStopDistance:     0.25,
	}
}

// CalculatePositionSize returns the notional currency value to commit to
// a trade. With a stop-loss set, size = riskAmount / stopDistanceFraction;
// without one it falls back to a fixed fraction of balance. The result is
// capped by MaxPositionFraction x Leverage and never exceeds the balance,
// so an opened position is always fully funded.
func (b *BaseStrategy) CalculatePositionSize(signal Signal, balance, currentPrice float64) float64 {
	if balance <= 0 || currentPrice <= 0 {
		return 0
	}

	leverage := b.Leverage
	if leverage < 1 {
		leverage = 1
	}
	maxSize := balance * b.MaxPositionFraction * leverage
	if maxSize > balance {
		maxSize = balance
	}

	size := balance * b.DefaultFraction
	if signal.StopLoss > 0 {
		stopDistance := math.Abs(currentPrice-signal.StopLoss) / currentPrice
		if stopDistance > 0 {
			size = balance * b.RiskPerTrade / stopDistance
		}
	}

	if size > maxSize {
		size = maxSize
	}
	if size < 0 {
		size = 0
	}
	return size
}

// EvaluateRisk vetoes trades that violate the risk limits: zero balance,
// a stop-loss on the wrong side of the entry, or a stop further away than
// MaxStopDistance.
func (b *BaseStrategy) EvaluateRisk(signal Signal, balance float64) bool {
	if balance <= 0 {
		return false
	}
	if signal.StopLoss <= 0 || signal.Price <= 0 {
		return true
	}

	switch signal.Action {
	case ActionBuy:
		if signal.StopLoss >= signal.Price {
			return false
		}
	case ActionSell:
		if signal.StopLoss <= signal.Price {
			return false
		}
	}

	maxDistance := b.MaxStopDistance
	if maxDistance <= 0 {
		maxDistance = 0.25
	}
	stopDistance := math.Abs(signal.Price-signal.StopLoss) / signal.Price
	return stopDistance <= maxDistance
}

// Clamp01 bounds a signal strength into [0,1].
func Clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
