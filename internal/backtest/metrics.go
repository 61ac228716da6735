package backtest

import (
	"math"
	"time"
)

const annualizationFactor = 252 // trading days per year

// Metrics is the complete output record of a run, derived once at run
// end from the trade list and equity curve.
type Metrics struct {
	StrategyName   string    `json:"strategy_name"`
	Symbol         string    `json:"symbol"`
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
	InitialBalance float64   `json:"initial_balance"`
	FinalBalance   float64   `json:"final_balance"`

	TotalTrades   int     `json:"total_trades"`
	WinningTrades int     `json:"winning_trades"`
	LosingTrades  int     `json:"losing_trades"`
	WinRate       float64 `json:"win_rate"`

	TotalReturnPct      float64 `json:"total_return_pct"`
	AnnualizedReturnPct float64 `json:"annualized_return_pct"`
	MaxDrawdownPct      float64 `json:"max_drawdown_pct"`
	MaxDrawdownDuration int     `json:"max_drawdown_duration_bars"`

	SharpeRatio  float64 `json:"sharpe_ratio"`
	SortinoRatio float64 `json:"sortino_ratio"`
	CalmarRatio  float64 `json:"calmar_ratio"`
	ProfitFactor float64 `json:"profit_factor"`
	KellyPct     float64 `json:"kelly_pct"`
	Expectancy   float64 `json:"expectancy"`

	AvgWin           float64       `json:"avg_win"`
	AvgLoss          float64       `json:"avg_loss"`
	LargestWin       float64       `json:"largest_win"`
	LargestLoss      float64       `json:"largest_loss"`
	TotalCommission  float64       `json:"total_commission"`
	AvgTradeDuration time.Duration `json:"avg_trade_duration_ns"`

	MonthlyReturns map[string]float64 `json:"monthly_returns"`
	EquityCurve    EquityCurve        `json:"equity_curve"`
	Trades         []Trade            `json:"trades"`
}

// CalculateMetrics derives all summary statistics from the accumulated
// trades and equity curve. It is a pure function; degenerate samples
// (zero trades, zero losers, zero-variance returns, zero drawdown) yield
// 0 for the dependent ratio rather than NaN or infinity.
func CalculateMetrics(strategyName string, cfg Config, trades []Trade, curve EquityCurve) Metrics {
	m := Metrics{
		StrategyName:   strategyName,
		Symbol:         cfg.Symbol,
		StartDate:      cfg.StartDate,
		EndDate:        cfg.EndDate,
		InitialBalance: cfg.InitialBalance,
		FinalBalance:   cfg.InitialBalance,
		MonthlyReturns: curve.MonthlyReturns(),
		EquityCurve:    curve,
		Trades:         trades,
	}

	if len(curve) > 0 {
		m.FinalBalance = curve[len(curve)-1].Balance
	}

	m.TotalReturnPct = (m.FinalBalance - cfg.InitialBalance) / cfg.InitialBalance * 100
	m.MaxDrawdownPct = curve.MaxDrawdown() * 100
	m.MaxDrawdownDuration = curve.MaxDrawdownDuration()
	m.AnnualizedReturnPct = annualizedReturn(cfg.InitialBalance, m.FinalBalance, curve)

	var (
		sumWins, sumLosses      float64
		largestWin, largestLoss float64
		totalDuration           time.Duration
	)
	for i := range trades {
		t := &trades[i]
		if t.PnL == nil {
			continue
		}
		m.TotalTrades++
		m.TotalCommission += t.Commission
		totalDuration += t.Duration()

		pnl := *t.PnL
		if pnl > 0 {
			m.WinningTrades++
			sumWins += pnl
			if pnl > largestWin {
				largestWin = pnl
			}
		} else {
			m.LosingTrades++
			sumLosses += pnl
			if pnl < largestLoss {
				largestLoss = pnl
			}
		}
	}
	m.LargestWin = largestWin
	m.LargestLoss = largestLoss

	if m.TotalTrades > 0 {
		m.WinRate = float64(m.WinningTrades) / float64(m.TotalTrades)
		m.AvgTradeDuration = totalDuration / time.Duration(m.TotalTrades)
	}
	if m.WinningTrades > 0 {
		m.AvgWin = sumWins / float64(m.WinningTrades)
	}
	if m.LosingTrades > 0 {
		m.AvgLoss = sumLosses / float64(m.LosingTrades)
	}

	// Profit factor is 0 when there are no losing trades. A degenerate
	// all-winner sample says nothing about robustness, so no sentinel.
	if sumLosses != 0 {
		m.ProfitFactor = math.Abs(sumWins / sumLosses)
	}

	if m.AvgWin != 0 {
		m.KellyPct = (m.WinRate*m.AvgWin - (1-m.WinRate)*math.Abs(m.AvgLoss)) / m.AvgWin * 100
	}
	m.Expectancy = m.WinRate*m.AvgWin + (1-m.WinRate)*m.AvgLoss

	returns := curve.Returns()
	m.SharpeRatio = annualizedRatio(returns, stdDev(returns))
	m.SortinoRatio = annualizedRatio(returns, curve.DownsideDeviation())

	if m.MaxDrawdownPct != 0 {
		m.CalmarRatio = m.AnnualizedReturnPct / m.MaxDrawdownPct
	}

	return m
}

// annualizedRatio is mean return over the given deviation, scaled by
// sqrt(252). A zero deviation yields 0, not infinity.
func annualizedRatio(returns []float64, deviation float64) float64 {
	if deviation == 0 {
		return 0
	}
	return mean(returns) / deviation * math.Sqrt(annualizationFactor)
}

// annualizedReturn computes CAGR from the curve's calendar span. Spans
// under a day or non-positive equity fall back to the simple return.
func annualizedReturn(initial, final float64, curve EquityCurve) float64 {
	simple := (final - initial) / initial * 100
	if len(curve) < 2 || final <= 0 {
		return simple
	}
	days := curve[len(curve)-1].Date.Sub(curve[0].Date).Hours() / 24
	if days < 1 {
		return simple
	}
	return (math.Pow(final/initial, 365/days) - 1) * 100
}
