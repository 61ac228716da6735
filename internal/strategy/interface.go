// Package strategy defines the pluggable trading strategy contract and
// the reference implementations shipped with the simulator.
package strategy

import (
	"context"

	"github.com/yourusername/barsim/internal/models"
)

// Action is the recommended direction of a signal.
type Action string

// Signal actions.
const (
	ActionBuy  Action = "buy"
	ActionSell Action = "sell"
	ActionHold Action = "hold"
)

// Signal is a strategy's recommendation for the current bar. Signals are
// produced fresh each bar and consumed immediately by the engine; they
// are never carried across bars as state.
type Signal struct {
	Action     Action             `json:"action"`
	Strength   float64            `json:"strength"` // [0,1]
	Price      float64            `json:"price,omitempty"`
	StopLoss   float64            `json:"stop_loss,omitempty"`
	TakeProfit float64            `json:"take_profit,omitempty"`
	Reason     string             `json:"reason"`
	Indicators map[string]float64 `json:"indicators,omitempty"`
}

// Strategy is the capability interface a trading strategy must satisfy.
// Analyze must be deterministic for a given bar history and must not
// look beyond the supplied slice; CalculatePositionSize and EvaluateRisk
// are pure.
type Strategy interface {
	Name() string
	Analyze(ctx context.Context, bars []models.Bar, currentPrice float64) (Signal, error)
	CalculatePositionSize(signal Signal, balance, currentPrice float64) float64
	EvaluateRisk(signal Signal, balance float64) bool
	GetParameters() map[string]interface{}
}

// Hold returns a hold signal carrying a diagnostic reason.
func Hold(reason string) Signal {
	return Signal{Action: ActionHold, Reason: reason}
}
