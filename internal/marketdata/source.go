// Package marketdata provides historical OHLCV bar sources for the
// backtester: Postgres, CSV files, a rate-limited HTTP kline API, and a
// caching decorator that can wrap any of them.
package marketdata

import (
	"context"
	"fmt"
	"time"

	"github.com/yourusername/barsim/internal/models"
)

// BarSource loads historical bars for a symbol and timeframe, ordered by
// open time ascending.
type BarSource interface {
	GetBars(ctx context.Context, symbol string, timeframe models.Timeframe, start, end time.Time) ([]models.Bar, error)
}

// DataError indicates the requested historical data is missing, malformed
// or otherwise unusable. The engine aborts the run when it sees one.
type DataError struct {
	Symbol    string
	Timeframe models.Timeframe
	Reason    string
	Err       error
}

func (e *DataError) Error() string {
	msg := fmt.Sprintf("market data error for %s %s: %s", e.Symbol, e.Timeframe, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DataError) Unwrap() error {
	return e.Err
}

// NewDataError builds a DataError wrapping an optional cause.
func NewDataError(symbol string, timeframe models.Timeframe, reason string, err error) *DataError {
	return &DataError{Symbol: symbol, Timeframe: timeframe, Reason: reason, Err: err}
}

// validateBars checks ordering and basic OHLC sanity so a corrupt dataset
// fails loudly instead of producing a silently wrong simulation.
func validateBars(symbol string, timeframe models.Timeframe, bars []models.Bar) error {
	if len(bars) == 0 {
		return NewDataError(symbol, timeframe, "no bars in requested range", nil)
	}
	for i, bar := range bars {
		if bar.High < bar.Low {
			return NewDataError(symbol, timeframe,
				fmt.Sprintf("bar %d at %s has high below low", i, bar.OpenTime.Format(time.RFC3339)), nil)
		}
		if i > 0 && !bars[i-1].OpenTime.Before(bar.OpenTime) {
			return NewDataError(symbol, timeframe,
				fmt.Sprintf("bars out of order at index %d (%s)", i, bar.OpenTime.Format(time.RFC3339)), nil)
		}
	}
	return nil
}
