package backtest

import (
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/barsim/internal/strategy"
)

// Side is the direction of a trade.
type Side string

const (
	SideLong  Side = "long"
	SideShort Side = "short"
)

// Close reasons recorded on trades.
const (
	ReasonStopLoss   = "Stop loss"
	ReasonTakeProfit = "Take profit"
	ReasonReversal   = "Signal reversal"
	ReasonMarginCall = "Margin call"
	ReasonLiquidated = "Liquidation"
	ReasonEndOfRun   = "Backtest end"
)

// Trade records one round trip. It is created when the position opens,
// its exit fields are filled when it closes, and it is immutable once
// appended to the trade list. Size is the notional currency value
// committed, not a unit count.
type Trade struct {
	ID         string          `json:"id"`
	Symbol     string          `json:"symbol"`
	Side       Side            `json:"side"`
	EntryTime  time.Time       `json:"entry_time"`
	EntryPrice float64         `json:"entry_price"`
	Size       float64         `json:"size"`
	StopLoss   float64         `json:"stop_loss,omitempty"`
	TakeProfit float64         `json:"take_profit,omitempty"`
	Commission float64         `json:"commission"`
	Slippage   float64         `json:"slippage"`
	ExitTime   *time.Time      `json:"exit_time,omitempty"`
	ExitPrice  *float64        `json:"exit_price,omitempty"`
	PnL        *float64        `json:"pnl,omitempty"`
	PnLPct     *float64        `json:"pnl_percentage,omitempty"`
	Reason     string          `json:"reason,omitempty"`
	Signal     strategy.Signal `json:"signal"`
}

// newTrade opens a position from an executed signal.
func newTrade(symbol string, side Side, entryTime time.Time, entryPrice, size, commission, slippage float64, sig strategy.Signal) *Trade {
	return &Trade{
		ID:         uuid.NewString(),
		Symbol:     symbol,
		Side:       side,
		EntryTime:  entryTime,
		EntryPrice: entryPrice,
		Size:       size,
		StopLoss:   sig.StopLoss,
		TakeProfit: sig.TakeProfit,
		Commission: commission,
		Slippage:   slippage,
		Signal:     sig,
	}
}

// UnrealizedPnL returns the mark-to-market profit at the given price,
// before exit costs.
func (t *Trade) UnrealizedPnL(price float64) float64 {
	if t.EntryPrice == 0 {
		return 0
	}
	if t.Side == SideLong {
		return (price - t.EntryPrice) * t.Size / t.EntryPrice
	}
	return (t.EntryPrice - price) * t.Size / t.EntryPrice
}

// Won reports whether a closed trade ended with positive PnL.
func (t *Trade) Won() bool {
	return t.PnL != nil && *t.PnL > 0
}

// Duration returns how long the trade was open; zero while still open.
func (t *Trade) Duration() time.Duration {
	if t.ExitTime == nil {
		return 0
	}
	return t.ExitTime.Sub(t.EntryTime)
}

// stopTriggered returns the exit level hit by this bar's range, or 0.
// Stops fire on the bar's extremes and exit exactly at the level, with no
// additional costs beyond those already modeled at entry.
func (t *Trade) stopTriggered(high, low float64) (float64, string) {
	if t.Side == SideLong {
		if t.StopLoss > 0 && low <= t.StopLoss {
			return t.StopLoss, ReasonStopLoss
		}
		if t.TakeProfit > 0 && high >= t.TakeProfit {
			return t.TakeProfit, ReasonTakeProfit
		}
		return 0, ""
	}
	if t.StopLoss > 0 && high >= t.StopLoss {
		return t.StopLoss, ReasonStopLoss
	}
	if t.TakeProfit > 0 && low <= t.TakeProfit {
		return t.TakeProfit, ReasonTakeProfit
	}
	return 0, ""
}

// close finalizes the trade at the given exit price. PnL is the
// directional price move scaled by size, minus the exit commission.
func (t *Trade) close(exitTime time.Time, exitPrice, exitCommission float64, reason string) {
	pnl := t.UnrealizedPnL(exitPrice) - exitCommission
	pnlPct := 0.0
	if t.Size > 0 {
		pnlPct = pnl / t.Size * 100
	}

	t.ExitTime = &exitTime
	t.ExitPrice = &exitPrice
	t.PnL = &pnl
	t.PnLPct = &pnlPct
	t.Commission += exitCommission
	t.Reason = reason
}
