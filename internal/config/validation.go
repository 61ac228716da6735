package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	// Custom validators
	_ = validate.RegisterValidation("environment", validateEnvironment)
	_ = validate.RegisterValidation("loglevel", validateLogLevel)
	_ = validate.RegisterValidation("timeframe", validateTimeframe)
}

// Validate checks the configuration against struct tags and cross-field
// business rules.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var errs validator.ValidationErrors
		if errors.As(err, &errs) {
			return fmt.Errorf("config validation failed: %s", formatValidationErrors(errs))
		}
		return fmt.Errorf("config validation failed: %w", err)
	}

	bt := c.Backtest
	if bt.LiquidationLevel >= bt.MarginCallLevel {
		return fmt.Errorf(
			"config validation failed: liquidation_level (%.2f) must be below margin_call_level (%.2f)",
			bt.LiquidationLevel, bt.MarginCallLevel,
		)
	}

	start, err := time.Parse("2006-01-02", bt.StartDate)
	if err != nil {
		return fmt.Errorf("config validation failed: invalid start_date: %w", err)
	}
	end, err := time.Parse("2006-01-02", bt.EndDate)
	if err != nil {
		return fmt.Errorf("config validation failed: invalid end_date: %w", err)
	}
	if !start.Before(end) {
		return fmt.Errorf("config validation failed: start_date %s must be before end_date %s",
			bt.StartDate, bt.EndDate)
	}

	if c.Data.Source == "postgres" {
		if c.Database.Host == "" || c.Database.Name == "" || c.Database.User == "" {
			return fmt.Errorf("config validation failed: database host, name and user are required when data.source=postgres")
		}
	}
	if c.Data.Source == "http" && c.Data.APIURL == "" {
		return fmt.Errorf("config validation failed: data.api_url is required when data.source=http")
	}

	return nil
}

func validateEnvironment(fl validator.FieldLevel) bool {
	env := fl.Field().String()
	return env == "development" || env == "staging" || env == "production"
}

func validateLogLevel(fl validator.FieldLevel) bool {
	switch strings.ToLower(fl.Field().String()) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic":
		return true
	}
	return false
}

func validateTimeframe(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "1m", "5m", "15m", "30m", "1h", "4h", "1d":
		return true
	}
	return false
}

func formatValidationErrors(errs validator.ValidationErrors) string {
	parts := make([]string, 0, len(errs))
	for _, fe := range errs {
		parts = append(parts, fmt.Sprintf("%s failed on '%s'", fe.Namespace(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}
