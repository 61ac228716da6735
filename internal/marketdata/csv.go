package marketdata

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/barsim/internal/models"
)

// CSVSource loads bars from per-symbol CSV files on disk. Files are named
// <symbol>_<timeframe>.csv and contain a header row followed by
// open_time,open,high,low,close,volume records with RFC3339 timestamps.
type CSVSource struct {
	dir string
	log *logrus.Logger
}

// NewCSVSource creates a source reading from the given directory.
func NewCSVSource(dir string, log *logrus.Logger) *CSVSource {
	return &CSVSource{dir: dir, log: log}
}

// GetBars reads the file for the symbol and returns bars within [start, end).
func (s *CSVSource) GetBars(ctx context.Context, symbol string, timeframe models.Timeframe, start, end time.Time) ([]models.Bar, error) {
	path := filepath.Join(s.dir, fmt.Sprintf("%s_%s.csv", symbol, timeframe))
	f, err := os.Open(path)
	if err != nil {
		return nil, NewDataError(symbol, timeframe, fmt.Sprintf("cannot open %s", path), err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = 6

	// Skip header
	if _, err := reader.Read(); err != nil {
		return nil, NewDataError(symbol, timeframe, "cannot read header", err)
	}

	var bars []models.Bar
	line := 1
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, NewDataError(symbol, timeframe, fmt.Sprintf("malformed record at line %d", line+1), err)
		}
		line++

		bar, err := parseBarRecord(record)
		if err != nil {
			return nil, NewDataError(symbol, timeframe, fmt.Sprintf("invalid record at line %d", line), err)
		}
		if bar.OpenTime.Before(start) || !bar.OpenTime.Before(end) {
			continue
		}
		bars = append(bars, bar)
	}

	if err := validateBars(symbol, timeframe, bars); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"symbol":    symbol,
		"timeframe": timeframe,
		"file":      path,
		"bars":      len(bars),
	}).Debug("Loaded bars from CSV")
	return bars, nil
}

// parseBarRecord converts a CSV record into a Bar. Prices are parsed via
// decimal to reject garbage like "1.2.3" that strconv would also catch,
// but with exact decimal semantics for sources that emit fixed-point
// strings.
func parseBarRecord(record []string) (models.Bar, error) {
	openTime, err := time.Parse(time.RFC3339, record[0])
	if err != nil {
		return models.Bar{}, fmt.Errorf("bad open_time %q: %w", record[0], err)
	}

	prices := make([]float64, 4)
	for i, field := range record[1:5] {
		d, err := decimal.NewFromString(field)
		if err != nil {
			return models.Bar{}, fmt.Errorf("bad price %q: %w", field, err)
		}
		prices[i], _ = d.Float64()
	}

	volume, err := strconv.ParseFloat(record[5], 64)
	if err != nil {
		return models.Bar{}, fmt.Errorf("bad volume %q: %w", record[5], err)
	}

	return models.Bar{
		OpenTime: openTime,
		Open:     prices[0],
		High:     prices[1],
		Low:      prices[2],
		Close:    prices[3],
		Volume:   volume,
	}, nil
}
