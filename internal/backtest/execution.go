package backtest

import (
	"github.com/sirupsen/logrus"

	"github.com/yourusername/barsim/internal/models"
	"github.com/yourusername/barsim/internal/strategy"
)

// ExecutionThreshold is the minimum signal strength required to act.
const ExecutionThreshold = 0.7

// fillPrice applies spread and slippage to the bar close. Buys pay the
// ask-side adjustment, sells receive the bid-side.
func (e *Engine) fillPrice(close float64, side Side) float64 {
	adjustment := e.cfg.SpreadPercentage/2 + e.cfg.SlippageRate
	if side == SideLong {
		return close * (1 + adjustment)
	}
	return close * (1 - adjustment)
}

// exitFillPrice reapplies spread and slippage in the opposite direction
// of entry. Used for every close except stop and target exits, which fill
// exactly at their level.
func (e *Engine) exitFillPrice(close float64, side Side) float64 {
	adjustment := e.cfg.SpreadPercentage/2 + e.cfg.SlippageRate
	if side == SideLong {
		return close * (1 - adjustment)
	}
	return close * (1 + adjustment)
}

// executeSignal turns a strong signal into a fill. An opposing signal
// closes the current position first; a same-direction signal while
// positioned is ignored. A signal the balance cannot fund is dropped
// without error, matching broker rejection behavior.
func (e *Engine) executeSignal(state *State, sig strategy.Signal, bar models.Bar) {
	side := SideLong
	if sig.Action == strategy.ActionSell {
		side = SideShort
	}

	if state.Position != nil {
		if state.Position.Side == side {
			return
		}
		exitPrice := e.exitFillPrice(bar.Close, state.Position.Side)
		exitCommission := state.Position.Size * e.cfg.CommissionRate
		e.log.WithFields(logrus.Fields{
			"side":       state.Position.Side,
			"exit_price": exitPrice,
		}).Debug("Closing position on signal reversal")
		state.closePosition(bar.OpenTime, exitPrice, exitCommission, ReasonReversal)
	}

	if !e.strat.EvaluateRisk(sig, state.Balance) {
		e.log.WithField("reason", sig.Reason).Debug("Signal vetoed by risk check")
		e.stats.SignalsDropped.WithLabelValues("risk_veto").Inc()
		return
	}

	size := e.strat.CalculatePositionSize(sig, state.Balance, bar.Close)
	if size <= 0 {
		return
	}

	commission := size * e.cfg.CommissionRate
	if state.Balance < size+commission {
		e.log.WithFields(logrus.Fields{
			"balance":  state.Balance,
			"required": size + commission,
		}).Warn("Insufficient funds, signal dropped")
		e.stats.SignalsDropped.WithLabelValues("insufficient_funds").Inc()
		return
	}

	entryPrice := e.fillPrice(bar.Close, side)
	slippage := size * e.cfg.SlippageRate

	state.Balance -= size + commission
	state.Position = newTrade(e.cfg.Symbol, side, bar.OpenTime, entryPrice, size, commission, slippage, sig)

	e.log.WithFields(logrus.Fields{
		"side":        side,
		"entry_price": entryPrice,
		"size":        size,
		"stop_loss":   sig.StopLoss,
		"take_profit": sig.TakeProfit,
		"reason":      sig.Reason,
	}).Debug("Opened position")
}

// updatePosition checks the open position's stop-loss and take-profit
// against the bar's range, closing at the exact level if hit.
func (e *Engine) updatePosition(state *State, bar models.Bar) {
	if state.Position == nil {
		return
	}
	level, reason := state.Position.stopTriggered(bar.High, bar.Low)
	if reason == "" {
		return
	}
	exitCommission := state.Position.Size * e.cfg.CommissionRate
	e.log.WithFields(logrus.Fields{
		"level":  level,
		"reason": reason,
	}).Debug("Exit level hit")
	state.closePosition(bar.OpenTime, level, exitCommission, reason)
}
