// Package main converts currency-pair prices using reference conversion
// data and recent spot mid rates, writing one reasoned row per input price.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"price-stats-lab/internal/config"
	"price-stats-lab/internal/loader"
	"price-stats-lab/internal/logging"
	"price-stats-lab/internal/rates"
	"price-stats-lab/internal/reporting"
)

func main() {
	configFile := flag.String("config", "configs/rates.yaml", "Path to the configuration file")
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

	if err := run(cfg, logger); err != nil {
		logger.Error("run failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	pairs, err := loader.CcyPairs(cfg.Input.CcyPairsCSV)
	if err != nil {
		return err
	}
	spots, err := loader.SpotRates(cfg.Input.SpotCSV)
	if err != nil {
		return err
	}
	prices, err := loader.RatePrices(cfg.Input.PricesCSV)
	if err != nil {
		return err
	}

	converter := rates.NewConverter(pairs, spots)
	converted := converter.Convert(prices)

	logger.Info("conversion complete",
		zap.Int("pairs", len(pairs)),
		zap.Int("spot_rates", len(spots)),
		zap.Int("prices", len(prices)),
	)

	out := reporting.RenderRatesCSV(converted)
	if cfg.Output.RatesCSV == "" {
		fmt.Print(out)
		return nil
	}
	if err := reporting.WriteFile(cfg.Output.RatesCSV, out); err != nil {
		return err
	}
	logger.Info("output written", zap.String("path", cfg.Output.RatesCSV), zap.Int("rows", len(converted)))
	return nil
}
