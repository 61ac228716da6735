package marketdata

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/barsim/internal/config"
)

// New builds the bar source selected by the configuration, wrapped in
// the TTL cache. The returned cleanup releases backend resources and is
// safe to call once.
func New(ctx context.Context, cfg *config.Config, log *logrus.Logger) (BarSource, func(), error) {
	var (
		inner   BarSource
		cleanup = func() {}
	)

	switch cfg.Data.Source {
	case "postgres":
		pg, err := NewPostgresSource(ctx, cfg.GetDatabaseDSN(), cfg.Database.MaxConnections, log)
		if err != nil {
			return nil, nil, err
		}
		inner = pg
		cleanup = pg.Close
	case "csv":
		inner = NewCSVSource(cfg.Data.CSVDirectory, log)
	case "http":
		inner = NewHTTPSource(cfg.Data.APIURL, cfg.Data.APIKey, cfg.Data.RateLimit, log)
	default:
		return nil, nil, fmt.Errorf("unknown data source %q", cfg.Data.Source)
	}

	ttl := time.Duration(cfg.Data.CacheTTLSeconds) * time.Second
	return NewCachedSource(inner, ttl, log), cleanup, nil
}
