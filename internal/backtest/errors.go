package backtest

import "fmt"

// ConfigError indicates an invalid backtest configuration. Validation
// fails fast before the bar loop starts.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid backtest config: %s: %s", e.Field, e.Reason)
}
