package marketdata

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/barsim/internal/models"
)

// PostgresSource loads bars from a Postgres/Timescale table.
type PostgresSource struct {
	pool *pgxpool.Pool
	log  *logrus.Logger
}

// NewPostgresSource connects a pgx pool using the given DSN and verifies
// the connection with a ping.
func NewPostgresSource(ctx context.Context, dsn string, maxConns int, log *logrus.Logger) (*PostgresSource, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}
	if maxConns > 0 {
		poolCfg.MaxConns = int32(maxConns)
	}
	poolCfg.MaxConnLifetime = time.Hour
	poolCfg.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.WithField("max_conns", poolCfg.MaxConns).Info("Connected to bar database")
	return &PostgresSource{pool: pool, log: log}, nil
}

// GetBars returns bars for the symbol and timeframe ordered by open time.
func (s *PostgresSource) GetBars(ctx context.Context, symbol string, timeframe models.Timeframe, start, end time.Time) ([]models.Bar, error) {
	query := `
		SELECT open_time, open, high, low, close, volume
		FROM bars
		WHERE symbol = $1
		  AND timeframe = $2
		  AND open_time >= $3
		  AND open_time < $4
		ORDER BY open_time ASC`

	rows, err := s.pool.Query(ctx, query, symbol, string(timeframe), start, end)
	if err != nil {
		return nil, NewDataError(symbol, timeframe, "query failed", err)
	}
	defer rows.Close()

	var bars []models.Bar
	for rows.Next() {
		var bar models.Bar
		if err := rows.Scan(&bar.OpenTime, &bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume); err != nil {
			return nil, NewDataError(symbol, timeframe, "row scan failed", err)
		}
		bars = append(bars, bar)
	}
	if err := rows.Err(); err != nil {
		return nil, NewDataError(symbol, timeframe, "row iteration failed", err)
	}

	if err := validateBars(symbol, timeframe, bars); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"symbol":    symbol,
		"timeframe": timeframe,
		"bars":      len(bars),
	}).Debug("Loaded bars from database")
	return bars, nil
}

// Close releases the connection pool.
func (s *PostgresSource) Close() {
	s.pool.Close()
}
