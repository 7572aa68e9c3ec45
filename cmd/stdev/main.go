// Package main computes rolling bid/mid/ask standard deviations over
// contiguous hourly windows and writes them to CSV, checkpointing engine
// state between runs.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"price-stats-lab/internal/config"
	"price-stats-lab/internal/loader"
	"price-stats-lab/internal/logging"
	"price-stats-lab/internal/pipeline"
	"price-stats-lab/internal/reporting"
	"price-stats-lab/internal/storage"
	chstore "price-stats-lab/internal/storage/clickhouse"
	"price-stats-lab/internal/storage/memory"
	"price-stats-lab/internal/storage/migrations"
	pgstore "price-stats-lab/internal/storage/postgres"
	"price-stats-lab/internal/storage/sqlite"
)

func main() {
	configFile := flag.String("config", "configs/stdev.yaml", "Path to the configuration file")
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received signal, cancelling run", zap.String("signal", sig.String()))
		cancel()
	}()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("run failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	tr, err := cfg.Engine.ReportingRange()
	if err != nil {
		return fmt.Errorf("reporting range: %w", err)
	}

	sampleStore, cleanupSamples, err := buildSampleStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanupSamples()

	snapshotStore, cleanupSnapshots, err := buildSnapshotStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanupSnapshots()

	runner := pipeline.NewRunner(pipeline.Options{
		Samples:    sampleStore,
		Snapshots:  snapshotStore,
		Logger:     logger,
		WindowSize: cfg.Engine.WindowSize,
		Lookback:   cfg.Engine.Lookback,
	})

	records, err := runner.Run(ctx, tr)
	if err != nil {
		return err
	}

	out := reporting.RenderStdevCSV(records)
	if cfg.Output.StdevCSV == "" {
		fmt.Print(out)
		return nil
	}
	if err := reporting.WriteFile(cfg.Output.StdevCSV, out); err != nil {
		return err
	}
	logger.Info("output written", zap.String("path", cfg.Output.StdevCSV), zap.Int("records", len(records)))
	return nil
}

// buildSampleStore selects the sample backend and, when a samples CSV is
// configured, ingests it first.
func buildSampleStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (storage.SampleStore, func(), error) {
	var store storage.SampleStore
	cleanup := func() {}

	switch cfg.Storage.SampleBackend {
	case config.SampleBackendClickhouse:
		conn, err := migrations.RunClickhouseMigrations(ctx, cfg.Storage.ClickhouseDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("clickhouse migrations: %w", err)
		}
		store = chstore.NewSampleStore(conn)
		cleanup = func() { _ = conn.Close() }
	default:
		store = memory.NewSampleStore()
	}

	if cfg.Input.SamplesCSV != "" {
		samples, dropped, err := loader.Samples(cfg.Input.SamplesCSV)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("load samples csv: %w", err)
		}
		if dropped > 0 {
			logger.Warn("dropped malformed sample rows", zap.Int("dropped", dropped))
		}
		if err := store.InsertBulk(ctx, samples); err != nil {
			if errors.Is(err, storage.ErrDuplicateKey) {
				logger.Warn("samples already ingested, reusing stored data")
			} else {
				cleanup()
				return nil, nil, fmt.Errorf("ingest samples: %w", err)
			}
		}
	}

	return store, cleanup, nil
}

// buildSnapshotStore selects the checkpoint backend.
func buildSnapshotStore(ctx context.Context, cfg *config.Config) (storage.SnapshotStore, func(), error) {
	switch cfg.Storage.SnapshotBackend {
	case config.SnapshotBackendPostgres:
		pool, err := pgstore.NewPool(ctx, cfg.Storage.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres pool: %w", err)
		}
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("postgres migrations: %w", err)
		}
		return pgstore.NewSnapshotStore(pool), pool.Close, nil
	case config.SnapshotBackendSQLite:
		store, err := sqlite.NewSnapshotStore(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("sqlite snapshot store: %w", err)
		}
		return store, func() { _ = store.Close() }, nil
	default:
		return nil, func() {}, nil
	}
}
