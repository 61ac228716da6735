package backtest

import (
	"time"

	"github.com/yourusername/barsim/internal/config"
	"github.com/yourusername/barsim/internal/models"
)

// DefaultWarmupBars is the number of leading bars skipped before any
// trading decision, giving indicator-driven strategies a stable history.
const DefaultWarmupBars = 100

// Config holds the parameters for a single backtest run. It is immutable
// for the run's duration.
type Config struct {
	Symbol           string
	Timeframe        models.Timeframe
	StartDate        time.Time
	EndDate          time.Time
	InitialBalance   float64
	CommissionRate   float64
	SlippageRate     float64
	SpreadPercentage float64
	Leverage         float64
	MarginCallLevel  float64
	LiquidationLevel float64
	WarmupBars       int
}

// Validate checks the run parameters and returns a ConfigError on the
// first violation.
func (c *Config) Validate() error {
	if c.Symbol == "" {
		return &ConfigError{Field: "symbol", Reason: "must not be empty"}
	}
	if c.InitialBalance <= 0 {
		return &ConfigError{Field: "initial_balance", Reason: "must be positive"}
	}
	if c.CommissionRate < 0 || c.SlippageRate < 0 || c.SpreadPercentage < 0 {
		return &ConfigError{Field: "rates", Reason: "commission, slippage and spread must not be negative"}
	}
	if c.MarginCallLevel <= 0 || c.MarginCallLevel >= 1 {
		return &ConfigError{Field: "margin_call_level", Reason: "must be in (0,1)"}
	}
	if c.LiquidationLevel <= 0 || c.LiquidationLevel >= 1 {
		return &ConfigError{Field: "liquidation_level", Reason: "must be in (0,1)"}
	}
	if c.LiquidationLevel >= c.MarginCallLevel {
		return &ConfigError{Field: "liquidation_level", Reason: "must be strictly below margin_call_level"}
	}
	if !c.StartDate.Before(c.EndDate) {
		return &ConfigError{Field: "start_date", Reason: "must be before end_date"}
	}
	if c.WarmupBars < 0 {
		return &ConfigError{Field: "warmup_bars", Reason: "must not be negative"}
	}
	return nil
}

// FromConfig builds a run Config from the application configuration.
func FromConfig(bc *config.BacktestConfig) (Config, error) {
	start, err := time.Parse("2006-01-02", bc.StartDate)
	if err != nil {
		return Config{}, &ConfigError{Field: "start_date", Reason: err.Error()}
	}
	end, err := time.Parse("2006-01-02", bc.EndDate)
	if err != nil {
		return Config{}, &ConfigError{Field: "end_date", Reason: err.Error()}
	}

	warmup := bc.WarmupBars
	if warmup == 0 {
		warmup = DefaultWarmupBars
	}

	cfg := Config{
		Symbol:           bc.Symbol,
		Timeframe:        models.Timeframe(bc.Timeframe),
		StartDate:        start,
		EndDate:          end,
		InitialBalance:   bc.InitialBalance,
		CommissionRate:   bc.CommissionRate,
		SlippageRate:     bc.SlippageRate,
		SpreadPercentage: bc.SpreadPercentage,
		Leverage:         bc.Leverage,
		MarginCallLevel:  bc.MarginCallLevel,
		LiquidationLevel: bc.LiquidationLevel,
		WarmupBars:       warmup,
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
