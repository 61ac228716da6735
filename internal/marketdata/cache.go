package marketdata

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/barsim/internal/models"
)

// CachedSource wraps a BarSource with an in-memory TTL cache so repeated
// runs over the same range, such as a parameter sweep, hit the backend
// only once.
type CachedSource struct {
	inner BarSource
	cache *gocache.Cache
	log   *logrus.Logger
}

// NewCachedSource wraps inner with the given TTL.
func NewCachedSource(inner BarSource, ttl time.Duration, log *logrus.Logger) *CachedSource {
	return &CachedSource{
		inner: inner,
		cache: gocache.New(ttl, 2*ttl),
		log:   log,
	}
}

// GetBars returns a cached copy when available, otherwise delegates to
// the wrapped source and stores the result. Callers must not mutate the
// returned slice.
func (s *CachedSource) GetBars(ctx context.Context, symbol string, timeframe models.Timeframe, start, end time.Time) ([]models.Bar, error) {
	key := cacheKey(symbol, timeframe, start, end)
	if cached, found := s.cache.Get(key); found {
		s.log.WithField("key", key).Debug("Bar cache hit")
		return cached.([]models.Bar), nil
	}

	bars, err := s.inner.GetBars(ctx, symbol, timeframe, start, end)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, bars, gocache.DefaultExpiration)
	return bars, nil
}

func cacheKey(symbol string, timeframe models.Timeframe, start, end time.Time) string {
	return fmt.Sprintf("%s|%s|%d|%d", symbol, timeframe, start.Unix(), end.Unix())
}
