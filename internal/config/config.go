// Package config provides configuration management for the barsim backtester.
package config

import (
	"fmt"
)

// Config represents the complete application configuration
type Config struct {
	App      AppConfig      `mapstructure:"app" validate:"required"`
	Database DatabaseConfig `mapstructure:"database"`
	Data     DataConfig     `mapstructure:"data" validate:"required"`
	Backtest BacktestConfig `mapstructure:"backtest" validate:"required"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration for the
// Postgres/Timescale bar store. Only required when data.source=postgres.
type DatabaseConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Name           string `mapstructure:"name"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	SSLMode        string `mapstructure:"ssl_mode" validate:"omitempty,oneof=disable require verify-full"`
	MaxConnections int    `mapstructure:"max_connections" validate:"omitempty,gt=0"`
}

// DataConfig selects and configures the historical bar source.
type DataConfig struct {
	Source          string  `mapstructure:"source" validate:"required,oneof=postgres csv http"`
	CSVDirectory    string  `mapstructure:"csv_directory"`
	APIURL          string  `mapstructure:"api_url" validate:"omitempty,url"`
	APIKey          string  `mapstructure:"api_key"`
	RateLimit       float64 `mapstructure:"rate_limit" validate:"omitempty,gt=0"`
	CacheTTLSeconds int     `mapstructure:"cache_ttl_seconds" validate:"omitempty,gt=0"`
}

// BacktestConfig represents backtesting configuration
type BacktestConfig struct {
	Symbol           string  `mapstructure:"symbol" validate:"required"`
	Timeframe        string  `mapstructure:"timeframe" validate:"required,timeframe"`
	Strategy         string  `mapstructure:"strategy" validate:"required"`
	StartDate        string  `mapstructure:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate          string  `mapstructure:"end_date" validate:"required,datetime=2006-01-02"`
	InitialBalance   float64 `mapstructure:"initial_balance" validate:"required,gt=0"`
	CommissionRate   float64 `mapstructure:"commission_rate" validate:"gte=0,lte=0.1"`
	SlippageRate     float64 `mapstructure:"slippage_rate" validate:"gte=0,lte=0.1"`
	SpreadPercentage float64 `mapstructure:"spread_percentage" validate:"gte=0,lte=0.1"`
	Leverage         float64 `mapstructure:"leverage" validate:"omitempty,gte=1"`
	MarginCallLevel  float64 `mapstructure:"margin_call_level" validate:"required,gt=0,lt=1"`
	LiquidationLevel float64 `mapstructure:"liquidation_level" validate:"required,gt=0,lt=1"`
	WarmupBars       int     `mapstructure:"warmup_bars" validate:"gte=0"`
	OutputPath       string  `mapstructure:"output_path"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Path    string `mapstructure:"path"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}
