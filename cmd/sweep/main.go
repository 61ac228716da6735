// Command sweep runs a grid of moving-average crossover parameters in
// parallel and ranks the results.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"sort"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/yourusername/barsim/internal/backtest"
	"github.com/yourusername/barsim/internal/config"
	"github.com/yourusername/barsim/internal/logger"
	"github.com/yourusername/barsim/internal/marketdata"
	"github.com/yourusername/barsim/internal/metrics"
	"github.com/yourusername/barsim/internal/strategy"
)

func main() {
	var (
		configPath  string
		workers     int
		fastPeriods []int
		slowPeriods []int
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run a parameter sweep over SMA crossover strategies",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSweep(cmd.Context(), configPath, workers, fastPeriods, slowPeriods, metricsAddr)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "config/config.yaml", "Path to configuration file")
	cmd.Flags().IntVar(&workers, "workers", runtime.NumCPU(), "Parallel backtest workers")
	cmd.Flags().IntSliceVar(&fastPeriods, "fast", []int{10, 20, 30}, "Fast SMA periods")
	cmd.Flags().IntSliceVar(&slowPeriods, "slow", []int{50, 100, 200}, "Slow SMA periods")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while sweeping")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runSweep(ctx context.Context, configPath string, workers int, fastPeriods, slowPeriods []int, metricsAddr string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := logger.New(cfg.App.LogLevel, cfg.App.Environment)

	if metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Default().Handler())
		go func() {
			if err := http.ListenAndServe(metricsAddr, mux); err != nil {
				log.WithError(err).Warn("Metrics server stopped")
			}
		}()
	}

	source, cleanup, err := marketdata.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	runCfg, err := backtest.FromConfig(&cfg.Backtest)
	if err != nil {
		return err
	}

	var variants []backtest.Variant
	for _, fast := range fastPeriods {
		for _, slow := range slowPeriods {
			if fast >= slow {
				continue
			}
			strat := strategy.NewSMACross(fast, slow)
			variants = append(variants, backtest.Variant{
				Name:     strat.Name(),
				Config:   runCfg,
				Strategy: strat,
			})
		}
	}
	if len(variants) == 0 {
		return fmt.Errorf("no valid fast/slow combinations")
	}

	log.WithField("variants", len(variants)).Info("Starting parameter sweep")
	results := backtest.RunSweep(ctx, variants, source, workers, log)

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Metrics.SharpeRatio > results[j].Metrics.SharpeRatio
	})

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "VARIANT\tTRADES\tWIN RATE\tRETURN\tMAX DD\tSHARPE\tPROFIT FACTOR")
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(tw, "%s\tfailed: %v\n", r.Name, r.Err)
			continue
		}
		m := r.Metrics
		fmt.Fprintf(tw, "%s\t%d\t%.1f%%\t%.2f%%\t%.2f%%\t%.3f\t%.3f\n",
			r.Name, m.TotalTrades, m.WinRate*100, m.TotalReturnPct, m.MaxDrawdownPct, m.SharpeRatio, m.ProfitFactor)
	}
	return tw.Flush()
}
