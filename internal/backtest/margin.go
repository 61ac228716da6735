package backtest

import (
	"github.com/sirupsen/logrus"

	"github.com/yourusername/barsim/internal/models"
)

// checkMarginCall force-closes the open position when equity falls below
// the margin thresholds. Returns true if a forced close happened, in
// which case no further processing occurs this bar.
//
// The margin-call level is checked first; with a valid config the
// liquidation level sits strictly below it, so the liquidation branch
// only fires if the levels were misconfigured past validation.
func (e *Engine) checkMarginCall(state *State, bar models.Bar) bool {
	if state.Position == nil {
		return false
	}

	equity := state.Equity(bar.Close)
	var reason string
	switch {
	case equity < e.cfg.InitialBalance*e.cfg.MarginCallLevel:
		reason = ReasonMarginCall
	case equity < e.cfg.InitialBalance*e.cfg.LiquidationLevel:
		reason = ReasonLiquidated
	default:
		return false
	}

	exitPrice := e.exitFillPrice(bar.Close, state.Position.Side)
	exitCommission := state.Position.Size * e.cfg.CommissionRate
	e.log.WithFields(logrus.Fields{
		"equity": equity,
		"reason": reason,
		"price":  bar.Close,
	}).Warn("Forced position close")
	state.closePosition(bar.OpenTime, exitPrice, exitCommission, reason)
	return true
}
