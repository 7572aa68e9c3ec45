// Package pipeline wires stores, the window engine and checkpointing into
// one run: restore state, fold the sample stream, emit in-range records,
// persist state.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"price-stats-lab/internal/domain"
	"price-stats-lab/internal/rolling"
	"price-stats-lab/internal/storage"
)

// Options configures a pipeline runner.
type Options struct {
	Samples    storage.SampleStore
	Snapshots  storage.SnapshotStore // nil disables checkpointing
	Logger     *zap.Logger
	WindowSize int
	Lookback   time.Duration
}

// Runner executes the rolling stdev pipeline against injected stores.
type Runner struct {
	samples    storage.SampleStore
	snapshots  storage.SnapshotStore
	logger     *zap.Logger
	windowSize int
	lookback   time.Duration
}

// NewRunner creates a pipeline runner.
func NewRunner(opts Options) *Runner {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		samples:    opts.Samples,
		snapshots:  opts.Snapshots,
		logger:     logger,
		windowSize: opts.WindowSize,
		lookback:   opts.Lookback,
	}
}

// Run computes rolling stdev records for the reporting range. When a
// snapshot store is configured, engine state is restored before the run and
// persisted after it, so consecutive runs over adjoining sample streams are
// equivalent to one continuous run. A missing, corrupted or incompatible
// snapshot is never fatal: the engine cold-starts.
func (r *Runner) Run(ctx context.Context, tr domain.TimeRange) ([]*domain.StdevRecord, error) {
	engine := rolling.New(rolling.Options{WindowSize: r.windowSize})

	r.restore(ctx, engine)

	samples, err := r.samples.GetAllOrdered(ctx)
	if err != nil {
		return nil, fmt.Errorf("load samples: %w", err)
	}

	records := engine.Run(samples, tr, r.lookback)

	if r.snapshots != nil {
		if err := r.snapshots.Save(ctx, engine.ExportSnapshot()); err != nil {
			return nil, fmt.Errorf("save snapshot: %w", err)
		}
	}

	r.logger.Info("pipeline run complete",
		zap.Int("samples", len(samples)),
		zap.Int("records", len(records)),
		zap.Int("window_size", engine.WindowSize()),
		zap.Time("range_start", tr.Start),
		zap.Time("range_end", tr.End),
	)

	return records, nil
}

// restore loads and applies the persisted snapshot, if any.
func (r *Runner) restore(ctx context.Context, engine *rolling.Engine) {
	if r.snapshots == nil {
		return
	}

	snap, err := r.snapshots.Load(ctx)
	switch {
	case err == nil:
	case errors.Is(err, storage.ErrNotFound):
		r.logger.Debug("no snapshot found, starting cold")
		return
	default:
		r.logger.Warn("snapshot unreadable, starting cold", zap.Error(err))
		return
	}

	if err := engine.RestoreSnapshot(snap); err != nil {
		r.logger.Warn("snapshot incompatible, starting cold",
			zap.Error(err),
			zap.Int("snapshot_window_size", snap.WindowSize),
			zap.Int("engine_window_size", engine.WindowSize()),
		)
	}
}
