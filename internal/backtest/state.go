package backtest

import "time"

// State is the mutable simulation state for one run. Each run owns an
// isolated State, so parallel runs never share mutable data.
//
// Accounting: opening a position debits size plus entry commission from
// Balance. While a position is open, equity is Balance plus the committed
// size plus unrealized PnL. Closing credits Balance with size plus net
// PnL, so balance_after_close == balance_before_open + size + pnl holds
// exactly.
type State struct {
	Balance     float64
	Position    *Trade
	Trades      []Trade
	EquityCurve EquityCurve

	peak float64
}

// NewState creates run state with the starting balance as the initial
// equity peak.
func NewState(initialBalance float64) *State {
	return &State{
		Balance: initialBalance,
		peak:    initialBalance,
	}
}

// Equity returns current equity marked at the given price.
func (s *State) Equity(price float64) float64 {
	if s.Position == nil {
		return s.Balance
	}
	return s.Balance + s.Position.Size + s.Position.UnrealizedPnL(price)
}

// RecordEquityPoint appends one equity-curve point for the bar at the
// given timestamp, updating the running peak.
func (s *State) RecordEquityPoint(date time.Time, price float64) {
	equity := s.Equity(price)
	if equity > s.peak {
		s.peak = equity
	}
	drawdown := 0.0
	if s.peak > 0 {
		drawdown = (s.peak - equity) / s.peak
	}
	s.EquityCurve = append(s.EquityCurve, EquityPoint{
		Date:     date,
		Balance:  equity,
		Drawdown: drawdown,
	})
}

// closePosition finalizes the open trade at exitPrice, credits the
// balance and appends the trade to the closed list.
func (s *State) closePosition(exitTime time.Time, exitPrice, exitCommission float64, reason string) {
	trade := s.Position
	trade.close(exitTime, exitPrice, exitCommission, reason)
	s.Balance += trade.Size + *trade.PnL
	s.Trades = append(s.Trades, *trade)
	s.Position = nil
}
