// Package storage defines the persistence interfaces of the lab. Backends
// live in subpackages; the memory implementations back tests and local runs.
package storage

import (
	"context"

	"price-stats-lab/internal/domain"
)

// SampleStore provides access to hourly price samples.
type SampleStore interface {
	// InsertBulk adds multiple samples. Fails the entire batch on a
	// duplicate (security_id, snap_time).
	InsertBulk(ctx context.Context, samples []*domain.Sample) error

	// GetBySecurityID retrieves all samples for a security, ordered by
	// snap_time ASC.
	GetBySecurityID(ctx context.Context, securityID string) ([]*domain.Sample, error)

	// GetByTimeRange retrieves a security's samples within [start, end]
	// (inclusive), ordered by snap_time ASC.
	GetByTimeRange(ctx context.Context, securityID string, r domain.TimeRange) ([]*domain.Sample, error)

	// ListSecurityIDs returns all distinct security IDs, sorted ASC.
	ListSecurityIDs(ctx context.Context) ([]string, error)

	// GetAllOrdered retrieves every sample ordered by (security_id,
	// snap_time) ASC, the canonical engine input order.
	GetAllOrdered(ctx context.Context) ([]*domain.Sample, error)
}

// SnapshotStore persists window engine checkpoints between runs. One
// snapshot per store; concurrent runs against the same store must be
// serialized by the caller.
type SnapshotStore interface {
	// Load reads the persisted snapshot. Returns ErrNotFound when none has
	// been saved yet; any other error means the snapshot is unreadable and
	// callers should cold-start.
	Load(ctx context.Context) (*domain.Snapshot, error)

	// Save writes the snapshot, replacing any previous one.
	Save(ctx context.Context, snap *domain.Snapshot) error
}
