package strategy

import "fmt"

// New builds a registered strategy by name with default parameters.
func New(name string) (Strategy, error) {
	switch name {
	case "sma_cross":
		return NewSMACross(20, 50), nil
	case "rsi_reversion":
		return NewRSIReversion(), nil
	default:
		return nil, fmt.Errorf("unknown strategy %q (available: sma_cross, rsi_reversion)", name)
	}
}
