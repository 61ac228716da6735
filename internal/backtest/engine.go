// Package backtest implements a deterministic bar-by-bar trading
// simulator: execution costs, margin enforcement, per-bar equity
// tracking, and post-run performance metrics.
package backtest

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/barsim/internal/marketdata"
	"github.com/yourusername/barsim/internal/metrics"
	"github.com/yourusername/barsim/internal/strategy"
)

// Engine drives a single backtest run. Each Engine owns isolated state,
// so independent engines may run in parallel with no shared mutable data.
type Engine struct {
	cfg    Config
	source marketdata.BarSource
	strat  strategy.Strategy
	log    *logrus.Entry
	stats  *metrics.Collector
}

// NewEngine validates the config and builds an engine.
func NewEngine(cfg Config, source marketdata.BarSource, strat strategy.Strategy, log *logrus.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if source == nil {
		return nil, &ConfigError{Field: "source", Reason: "bar source is required"}
	}
	if strat == nil {
		return nil, &ConfigError{Field: "strategy", Reason: "strategy is required"}
	}

	return &Engine{
		cfg:    cfg,
		source: source,
		strat:  strat,
		log: log.WithFields(logrus.Fields{
			"component": "backtest",
			"strategy":  strat.Name(),
			"symbol":    cfg.Symbol,
		}),
		stats: metrics.Default(),
	}, nil
}

// Run executes the full simulation and returns the final state and the
// computed metrics. The bar loop is single-threaded and synchronous; the
// only asynchronous boundary is the initial bulk load of historical
// bars. The context applies to that load and to strategy calls, not to
// loop cancellation.
func (e *Engine) Run(ctx context.Context) (*State, Metrics, error) {
	started := time.Now()

	result, err := e.run(ctx)
	status := "success"
	if err != nil {
		status = "error"
	}
	trades := 0
	if result.state != nil {
		trades = len(result.state.Trades)
	}
	e.stats.ObserveRun(e.strat.Name(), status, time.Since(started), trades)

	if err != nil {
		return nil, Metrics{}, err
	}
	return result.state, result.metrics, nil
}

type runResult struct {
	state   *State
	metrics Metrics
}

func (e *Engine) run(ctx context.Context) (runResult, error) {
	bars, err := e.source.GetBars(ctx, e.cfg.Symbol, e.cfg.Timeframe, e.cfg.StartDate, e.cfg.EndDate)
	if err != nil {
		return runResult{}, err
	}

	warmup := e.cfg.WarmupBars
	if len(bars) <= warmup {
		return runResult{}, marketdata.NewDataError(e.cfg.Symbol, e.cfg.Timeframe,
			fmt.Sprintf("%d bars loaded, need more than the %d-bar warmup", len(bars), warmup), nil)
	}

	e.log.WithFields(logrus.Fields{
		"bars":   len(bars),
		"warmup": warmup,
		"start":  bars[0].OpenTime.Format("2006-01-02"),
		"end":    bars[len(bars)-1].OpenTime.Format("2006-01-02"),
	}).Info("Starting backtest")

	state := NewState(e.cfg.InitialBalance)

	for i := warmup; i < len(bars); i++ {
		bar := bars[i]

		if e.checkMarginCall(state, bar) {
			state.RecordEquityPoint(bar.OpenTime, bar.Close)
			continue
		}

		e.updatePosition(state, bar)

		// The strategy sees history up to and including this bar,
		// never beyond it.
		sig, err := e.strat.Analyze(ctx, bars[:i+1], bar.Close)
		if err != nil {
			return runResult{state: state}, fmt.Errorf("strategy %s failed at bar %d: %w", e.strat.Name(), i, err)
		}

		if sig.Action != strategy.ActionHold && sig.Strength >= ExecutionThreshold {
			e.executeSignal(state, sig, bar)
		}

		state.RecordEquityPoint(bar.OpenTime, bar.Close)
		e.stats.BarsProcessed.Inc()
	}

	if state.Position != nil {
		last := bars[len(bars)-1]
		exitPrice := e.exitFillPrice(last.Close, state.Position.Side)
		exitCommission := state.Position.Size * e.cfg.CommissionRate
		state.closePosition(last.OpenTime, exitPrice, exitCommission, ReasonEndOfRun)
	}

	m := CalculateMetrics(e.strat.Name(), e.cfg, state.Trades, state.EquityCurve)

	e.log.WithFields(logrus.Fields{
		"trades":        m.TotalTrades,
		"win_rate":      fmt.Sprintf("%.1f%%", m.WinRate*100),
		"total_return":  fmt.Sprintf("%.2f%%", m.TotalReturnPct),
		"max_drawdown":  fmt.Sprintf("%.2f%%", m.MaxDrawdownPct),
		"final_balance": fmt.Sprintf("%.2f", m.FinalBalance),
	}).Info("Backtest complete")

	return runResult{state: state, metrics: m}, nil
}
