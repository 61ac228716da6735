package backtest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/barsim/internal/strategy"
)

func openLong(entry, size, stop, target float64) *Trade {
	return newTrade("BTCUSDT", SideLong, testStart, entry, size, 0, 0, strategy.Signal{
		StopLoss:   stop,
		TakeProfit: target,
	})
}

func openShort(entry, size, stop, target float64) *Trade {
	return newTrade("BTCUSDT", SideShort, testStart, entry, size, 0, 0, strategy.Signal{
		StopLoss:   stop,
		TakeProfit: target,
	})
}

func TestUnrealizedPnL(t *testing.T) {
	long := openLong(100, 1000, 0, 0)
	assert.InDelta(t, 100.0, long.UnrealizedPnL(110), 1e-9)
	assert.InDelta(t, -100.0, long.UnrealizedPnL(90), 1e-9)

	short := openShort(100, 1000, 0, 0)
	assert.InDelta(t, -100.0, short.UnrealizedPnL(110), 1e-9)
	assert.InDelta(t, 100.0, short.UnrealizedPnL(90), 1e-9)
}

func TestStopTriggeredLong(t *testing.T) {
	trade := openLong(100, 1000, 95, 110)

	level, reason := trade.stopTriggered(101, 96)
	assert.Empty(t, reason, "range inside stop and target")
	assert.Zero(t, level)

	level, reason = trade.stopTriggered(101, 94)
	assert.Equal(t, ReasonStopLoss, reason)
	assert.Equal(t, 95.0, level)

	level, reason = trade.stopTriggered(111, 98)
	assert.Equal(t, ReasonTakeProfit, reason)
	assert.Equal(t, 110.0, level)
}

func TestStopTriggeredShort(t *testing.T) {
	trade := openShort(100, 1000, 105, 90)

	level, reason := trade.stopTriggered(104, 96)
	assert.Empty(t, reason)
	assert.Zero(t, level)

	level, reason = trade.stopTriggered(106, 96)
	assert.Equal(t, ReasonStopLoss, reason)
	assert.Equal(t, 105.0, level)

	level, reason = trade.stopTriggered(104, 89)
	assert.Equal(t, ReasonTakeProfit, reason)
	assert.Equal(t, 90.0, level)
}

func TestStopPrecedesTarget(t *testing.T) {
	// A bar wide enough to hit both resolves as a stop
	trade := openLong(100, 1000, 95, 110)
	_, reason := trade.stopTriggered(111, 94)
	assert.Equal(t, ReasonStopLoss, reason)
}

func TestTradeClose(t *testing.T) {
	trade := openLong(100, 1000, 0, 0)
	exitTime := testStart.Add(5 * time.Hour)

	trade.close(exitTime, 104, 1, ReasonReversal)

	require.NotNil(t, trade.PnL)
	assert.InDelta(t, 39.0, *trade.PnL, 1e-9) // 4% of 1000 minus exit commission
	assert.InDelta(t, 3.9, *trade.PnLPct, 1e-9)
	assert.Equal(t, ReasonReversal, trade.Reason)
	assert.Equal(t, 5*time.Hour, trade.Duration())
	assert.True(t, trade.Won())
}

func TestStateAccounting(t *testing.T) {
	state := NewState(10000)
	state.Position = openLong(100, 2000, 0, 0)
	state.Balance = 10000 - 2000 // size debited at open

	assert.InDelta(t, 10000.0, state.Equity(100), 1e-9)
	assert.InDelta(t, 10200.0, state.Equity(110), 1e-9)
	assert.InDelta(t, 9800.0, state.Equity(90), 1e-9)

	state.closePosition(testStart.Add(time.Hour), 110, 0, ReasonEndOfRun)
	assert.Nil(t, state.Position)
	require.Len(t, state.Trades, 1)
	assert.InDelta(t, 10200.0, state.Balance, 1e-9)
	assert.InDelta(t, 10200.0, state.Equity(123), 1e-9)
}

func TestRecordEquityPoint(t *testing.T) {
	state := NewState(10000)
	state.RecordEquityPoint(testStart, 100)
	state.Balance = 9000
	state.RecordEquityPoint(testStart.Add(time.Hour), 100)
	state.Balance = 11000
	state.RecordEquityPoint(testStart.Add(2*time.Hour), 100)

	require.Len(t, state.EquityCurve, 3)
	assert.Zero(t, state.EquityCurve[0].Drawdown)
	assert.InDelta(t, 0.1, state.EquityCurve[1].Drawdown, 1e-9)
	assert.Zero(t, state.EquityCurve[2].Drawdown, "new peak resets drawdown")
}
