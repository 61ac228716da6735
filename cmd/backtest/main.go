// Command backtest runs a single backtest from a YAML config file and
// prints the performance report.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/yourusername/barsim/internal/backtest"
	"github.com/yourusername/barsim/internal/config"
	"github.com/yourusername/barsim/internal/logger"
	"github.com/yourusername/barsim/internal/marketdata"
	"github.com/yourusername/barsim/internal/strategy"
)

func main() {
	var (
		configPath   = flag.String("config", "config/config.yaml", "Path to configuration file")
		strategyName = flag.String("strategy", "", "Override the configured strategy")
		outputPath   = flag.String("output", "", "Override the configured JSON output path")
		secretName   = flag.String("secret", "", "AWS Secrets Manager secret name (production only)")
	)
	flag.Parse()

	if err := run(*configPath, *strategyName, *outputPath, *secretName); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, strategyName, outputPath, secretName string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if strategyName != "" {
		cfg.Backtest.Strategy = strategyName
	}
	if outputPath != "" {
		cfg.Backtest.OutputPath = outputPath
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := logger.New(cfg.App.LogLevel, cfg.App.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cfg.LoadSecrets(ctx, secretName); err != nil {
		return err
	}

	source, cleanup, err := marketdata.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	strat, err := strategy.New(cfg.Backtest.Strategy)
	if err != nil {
		return err
	}

	runCfg, err := backtest.FromConfig(&cfg.Backtest)
	if err != nil {
		return err
	}

	engine, err := backtest.NewEngine(runCfg, source, strat, log)
	if err != nil {
		return err
	}

	_, m, err := engine.Run(ctx)
	if err != nil {
		return err
	}

	if err := backtest.NewReporter(os.Stdout).WriteReport(m); err != nil {
		return err
	}

	if cfg.Backtest.OutputPath != "" {
		if err := backtest.ExportJSON(cfg.Backtest.OutputPath, m); err != nil {
			return err
		}
		log.WithField("path", cfg.Backtest.OutputPath).Info("Results exported")
	}
	return nil
}
