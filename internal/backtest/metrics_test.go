package backtest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func closedTrade(pnl float64, opened time.Time, held time.Duration) Trade {
	exit := opened.Add(held)
	price := 100.0
	return Trade{
		ID:         "t",
		Symbol:     "BTCUSDT",
		Side:       SideLong,
		EntryTime:  opened,
		EntryPrice: price,
		Size:       1000,
		Commission: 2,
		ExitTime:   &exit,
		ExitPrice:  &price,
		PnL:        &pnl,
	}
}

func flatCurve(n int, balance float64) EquityCurve {
	curve := make(EquityCurve, n)
	for i := range curve {
		curve[i] = EquityPoint{
			Date:    testStart.Add(time.Duration(i) * time.Hour),
			Balance: balance,
		}
	}
	return curve
}

func TestCalculateMetricsZeroTrades(t *testing.T) {
	m := CalculateMetrics("test", testConfig(), nil, flatCurve(10, 10000))

	assert.Zero(t, m.TotalTrades)
	assert.Zero(t, m.WinRate)
	assert.Zero(t, m.ProfitFactor)
	assert.Zero(t, m.SharpeRatio)
	assert.Zero(t, m.SortinoRatio)
	assert.Zero(t, m.KellyPct)
	assert.Zero(t, m.CalmarRatio)
	assert.Zero(t, m.TotalReturnPct)
}

func TestCalculateMetricsAllWinners(t *testing.T) {
	trades := []Trade{
		closedTrade(100, testStart, time.Hour),
		closedTrade(50, testStart.Add(2*time.Hour), time.Hour),
	}
	m := CalculateMetrics("test", testConfig(), trades, flatCurve(10, 10150))

	assert.Equal(t, 2, m.TotalTrades)
	assert.Equal(t, 2, m.WinningTrades)
	assert.Zero(t, m.LosingTrades)
	assert.Equal(t, 1.0, m.WinRate)
	assert.Zero(t, m.ProfitFactor, "no losing trades yields 0, not infinity")
	assert.InDelta(t, 100.0, m.KellyPct, 1e-9)
	assert.InDelta(t, 75.0, m.AvgWin, 1e-9)
	assert.InDelta(t, 100.0, m.LargestWin, 1e-9)
	assert.Equal(t, time.Hour, m.AvgTradeDuration)
}

func TestCalculateMetricsMixedTrades(t *testing.T) {
	trades := []Trade{
		closedTrade(100, testStart, time.Hour),
		closedTrade(50, testStart.Add(2*time.Hour), time.Hour),
		closedTrade(-50, testStart.Add(4*time.Hour), 2*time.Hour),
	}
	m := CalculateMetrics("test", testConfig(), trades, flatCurve(10, 10100))

	assert.Equal(t, 3, m.TotalTrades)
	assert.InDelta(t, 2.0/3.0, m.WinRate, 1e-9)
	assert.InDelta(t, 3.0, m.ProfitFactor, 1e-9)
	assert.InDelta(t, 75.0, m.AvgWin, 1e-9)
	assert.InDelta(t, -50.0, m.AvgLoss, 1e-9)
	assert.InDelta(t, -50.0, m.LargestLoss, 1e-9)

	// Kelly = (2/3*75 - 1/3*50) / 75 * 100
	assert.InDelta(t, (2.0/3.0*75-1.0/3.0*50)/75*100, m.KellyPct, 1e-9)
	// Expectancy = 2/3*75 + 1/3*(-50)
	assert.InDelta(t, 2.0/3.0*75+1.0/3.0*(-50), m.Expectancy, 1e-9)
	assert.InDelta(t, 6.0, m.TotalCommission, 1e-9)
}

func TestCalculateMetricsZeroVarianceReturns(t *testing.T) {
	m := CalculateMetrics("test", testConfig(), nil, flatCurve(50, 10000))
	assert.Zero(t, m.SharpeRatio)
	assert.Zero(t, m.SortinoRatio)
}

func TestCalculateMetricsDrawdownAndReturn(t *testing.T) {
	curve := EquityCurve{
		{Date: testStart, Balance: 10000, Drawdown: 0},
		{Date: testStart.Add(1 * time.Hour), Balance: 12000, Drawdown: 0},
		{Date: testStart.Add(2 * time.Hour), Balance: 9000, Drawdown: 0.25},
		{Date: testStart.Add(3 * time.Hour), Balance: 10800, Drawdown: 0.10},
		{Date: testStart.Add(4 * time.Hour), Balance: 11000, Drawdown: 0.25 / 3},
	}
	m := CalculateMetrics("test", testConfig(), nil, curve)

	assert.InDelta(t, 10.0, m.TotalReturnPct, 1e-9)
	assert.InDelta(t, 25.0, m.MaxDrawdownPct, 1e-9)
	assert.Equal(t, 3, m.MaxDrawdownDuration)
	assert.NotZero(t, m.CalmarRatio)
	assert.InDelta(t, 11000.0, m.FinalBalance, 1e-9)
}

func TestCalculateMetricsMonthlyReturns(t *testing.T) {
	jan := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	curve := EquityCurve{
		{Date: jan, Balance: 10000},
		{Date: jan.AddDate(0, 0, 15), Balance: 10500},
		{Date: jan.AddDate(0, 0, 30), Balance: 11000},
		{Date: feb, Balance: 11000},
		{Date: feb.AddDate(0, 0, 20), Balance: 9900},
	}
	m := CalculateMetrics("test", testConfig(), nil, curve)

	assert.Len(t, m.MonthlyReturns, 2)
	assert.InDelta(t, 10.0, m.MonthlyReturns["2024-01"], 1e-9)
	assert.InDelta(t, -10.0, m.MonthlyReturns["2024-02"], 1e-9)
}
