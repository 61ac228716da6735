package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	retryablehttp "github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/yourusername/barsim/internal/models"
)

const (
	defaultKlineLimit       = 1000
	circuitBreakerThreshold = 5
	circuitBreakerCooldown  = 30 * time.Second
)

// HTTPSource fetches historical klines from a Binance-style REST API with
// retries, client-side rate limiting and a circuit breaker.
type HTTPSource struct {
	baseURL string
	apiKey  string
	client  *retryablehttp.Client
	limiter *rate.Limiter
	log     *logrus.Logger

	mu          sync.Mutex
	failures    int
	openedAt    time.Time
	circuitOpen bool
}

// NewHTTPSource creates a kline API client. rateLimit is requests per
// second.
func NewHTTPSource(baseURL, apiKey string, rateLimit float64, log *logrus.Logger) *HTTPSource {
	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.RetryWaitMin = 500 * time.Millisecond
	client.RetryWaitMax = 5 * time.Second
	client.Logger = nil
	client.HTTPClient.Timeout = 30 * time.Second

	if rateLimit <= 0 {
		rateLimit = 10
	}

	return &HTTPSource{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(rateLimit), 1),
		log:     log,
	}
}

// GetBars pages through the kline endpoint until the requested range is
// covered.
func (s *HTTPSource) GetBars(ctx context.Context, symbol string, timeframe models.Timeframe, start, end time.Time) ([]models.Bar, error) {
	interval, err := timeframe.Duration()
	if err != nil {
		return nil, NewDataError(symbol, timeframe, "unsupported timeframe", err)
	}

	var bars []models.Bar
	cursor := start

	for cursor.Before(end) {
		batch, err := s.fetchPage(ctx, symbol, timeframe, cursor, end)
		if err != nil {
			return nil, err
		}
		if len(batch) == 0 {
			break
		}
		bars = append(bars, batch...)
		next := batch[len(batch)-1].OpenTime.Add(interval)
		if !next.After(cursor) {
			break
		}
		cursor = next
	}

	if err := validateBars(symbol, timeframe, bars); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"symbol":    symbol,
		"timeframe": timeframe,
		"bars":      len(bars),
	}).Debug("Fetched bars from API")
	return bars, nil
}

func (s *HTTPSource) fetchPage(ctx context.Context, symbol string, timeframe models.Timeframe, start, end time.Time) ([]models.Bar, error) {
	if err := s.checkCircuit(); err != nil {
		return nil, NewDataError(symbol, timeframe, "circuit breaker open", err)
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/api/v3/klines", s.baseURL)
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("interval", string(timeframe))
	params.Set("startTime", strconv.FormatInt(start.UnixMilli(), 10))
	params.Set("endTime", strconv.FormatInt(end.UnixMilli(), 10))
	params.Set("limit", strconv.Itoa(defaultKlineLimit))

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, NewDataError(symbol, timeframe, "failed to build request", err)
	}
	if s.apiKey != "" {
		req.Header.Set("X-API-KEY", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		s.recordFailure()
		return nil, NewDataError(symbol, timeframe, "request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		s.recordFailure()
		return nil, NewDataError(symbol, timeframe, "failed to read response", err)
	}
	if resp.StatusCode != http.StatusOK {
		s.recordFailure()
		return nil, NewDataError(symbol, timeframe,
			fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, truncate(string(body), 200)), nil)
	}
	s.recordSuccess()

	return parseKlines(symbol, timeframe, body)
}

// parseKlines decodes the exchange kline format: an array of arrays where
// each entry is [openTime ms, open, high, low, close, volume, ...] with
// prices as strings.
func parseKlines(symbol string, timeframe models.Timeframe, body []byte) ([]models.Bar, error) {
	var raw [][]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, NewDataError(symbol, timeframe, "malformed kline payload", err)
	}

	bars := make([]models.Bar, 0, len(raw))
	for i, entry := range raw {
		if len(entry) < 6 {
			return nil, NewDataError(symbol, timeframe,
				fmt.Sprintf("kline %d has %d fields, want at least 6", i, len(entry)), nil)
		}

		var openMillis int64
		if err := json.Unmarshal(entry[0], &openMillis); err != nil {
			return nil, NewDataError(symbol, timeframe, fmt.Sprintf("kline %d has bad open time", i), err)
		}

		prices := make([]float64, 5)
		for j := 0; j < 5; j++ {
			var str string
			if err := json.Unmarshal(entry[j+1], &str); err != nil {
				return nil, NewDataError(symbol, timeframe, fmt.Sprintf("kline %d field %d is not a string", i, j+1), err)
			}
			v, err := strconv.ParseFloat(str, 64)
			if err != nil {
				return nil, NewDataError(symbol, timeframe, fmt.Sprintf("kline %d has bad price %q", i, str), err)
			}
			prices[j] = v
		}

		bars = append(bars, models.Bar{
			OpenTime: time.UnixMilli(openMillis).UTC(),
			Open:     prices[0],
			High:     prices[1],
			Low:      prices[2],
			Close:    prices[3],
			Volume:   prices[4],
		})
	}
	return bars, nil
}

func (s *HTTPSource) checkCircuit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.circuitOpen {
		return nil
	}
	if time.Since(s.openedAt) > circuitBreakerCooldown {
		// Half-open: allow the next request through
		s.circuitOpen = false
		s.failures = 0
		return nil
	}
	return fmt.Errorf("too many consecutive failures, retry after %s", circuitBreakerCooldown)
}

func (s *HTTPSource) recordFailure() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures++
	if s.failures >= circuitBreakerThreshold && !s.circuitOpen {
		s.circuitOpen = true
		s.openedAt = time.Now()
		s.log.WithField("failures", s.failures).Warn("Data API circuit breaker opened")
	}
}

func (s *HTTPSource) recordSuccess() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = 0
	s.circuitOpen = false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
