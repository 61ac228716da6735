// Package metrics exposes Prometheus instrumentation for backtest runs.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the Prometheus metrics for the application.
type Collector struct {
	registry *prometheus.Registry

	RunsTotal      *prometheus.CounterVec
	RunDuration    *prometheus.HistogramVec
	TradesPerRun   *prometheus.HistogramVec
	BarsProcessed  prometheus.Counter
	SignalsDropped *prometheus.CounterVec
}

var (
	defaultCollector *Collector
	once             sync.Once
)

// Default returns the process-wide collector, creating it on first use.
func Default() *Collector {
	once.Do(func() {
		defaultCollector = NewCollector(prometheus.NewRegistry())
	})
	return defaultCollector
}

// NewCollector creates and registers the metric set on the given
// registry.
func NewCollector(registry *prometheus.Registry) *Collector {
	c := &Collector{
		registry: registry,
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "barsim_runs_total",
			Help: "Backtest runs by strategy and outcome",
		}, []string{"strategy", "status"}),
		RunDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "barsim_run_duration_seconds",
			Help:    "Wall-clock duration of backtest runs",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}, []string{"strategy"}),
		TradesPerRun: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "barsim_trades_per_run",
			Help:    "Number of closed trades per backtest run",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}, []string{"strategy"}),
		BarsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "barsim_bars_processed_total",
			Help: "Total bars processed across all runs",
		}),
		SignalsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "barsim_signals_dropped_total",
			Help: "Signals dropped before execution, by cause",
		}, []string{"cause"}),
	}

	registry.MustRegister(
		c.RunsTotal,
		c.RunDuration,
		c.TradesPerRun,
		c.BarsProcessed,
		c.SignalsDropped,
	)
	return c
}

// ObserveRun records one completed run.
func (c *Collector) ObserveRun(strategyName, status string, duration time.Duration, trades int) {
	c.RunsTotal.WithLabelValues(strategyName, status).Inc()
	c.RunDuration.WithLabelValues(strategyName).Observe(duration.Seconds())
	if status == "success" {
		c.TradesPerRun.WithLabelValues(strategyName).Observe(float64(trades))
	}
}

// Handler returns an HTTP handler serving this collector's registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
