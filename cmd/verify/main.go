// Package main cross-checks the incremental window engine against the batch
// reference engine over the same sample stream and reports divergences.
// Exits non-zero when the two paths disagree.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"price-stats-lab/internal/config"
	"price-stats-lab/internal/loader"
	"price-stats-lab/internal/logging"
	"price-stats-lab/internal/reference"
	"price-stats-lab/internal/reporting"
	"price-stats-lab/internal/rolling"
	"price-stats-lab/internal/verification"
)

func main() {
	configFile := flag.String("config", "configs/stdev.yaml", "Path to the configuration file")
	reportPath := flag.String("report", "", "Optional path for the Markdown report (stdout when empty)")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: failed to load configuration from %s: %v\n", *configFile, err)
		os.Exit(1)
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ok, err := run(cfg, logger, *reportPath)
	if err != nil {
		logger.Error("verification failed to run", zap.Error(err))
		os.Exit(1)
	}
	if !ok {
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *zap.Logger, reportPath string) (bool, error) {
	tr, err := cfg.Engine.ReportingRange()
	if err != nil {
		return false, fmt.Errorf("reporting range: %w", err)
	}

	samples, dropped, err := loader.Samples(cfg.Input.SamplesCSV)
	if err != nil {
		return false, err
	}
	if dropped > 0 {
		logger.Warn("dropped malformed sample rows", zap.Int("dropped", dropped))
	}

	incremental := rolling.New(rolling.Options{WindowSize: cfg.Engine.WindowSize})
	got := incremental.Run(samples, tr, cfg.Engine.Lookback)

	oracle := reference.New(cfg.Engine.WindowSize, 0)
	want := oracle.Run(samples, tr, cfg.Engine.Lookback)

	report := verification.CompareRecords(got, want, verification.DefaultRelTolerance)
	logger.Info("cross-check complete",
		zap.Int("total", report.Total),
		zap.Int("matched", report.Matched),
		zap.Int("divergences", len(report.Divergences)),
		zap.Int("missing", len(report.Missing)),
		zap.Int("extra", len(report.Extra)),
	)

	rendered := reporting.RenderVerificationMarkdown(report)
	if reportPath == "" {
		fmt.Print(rendered)
	} else if err := reporting.WriteFile(reportPath, rendered); err != nil {
		return false, err
	}

	return report.OK(), nil
}
