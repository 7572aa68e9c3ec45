package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"price-stats-lab/internal/domain"
	"price-stats-lab/internal/storage"
)

// SnapshotStore is a PostgreSQL implementation of storage.SnapshotStore.
// It keeps a single checkpoint row, upserted after each run, with the
// per-(security, field) entries as a JSONB payload.
type SnapshotStore struct {
	pool *Pool
}

// NewSnapshotStore creates a new PostgreSQL snapshot store.
func NewSnapshotStore(pool *Pool) *SnapshotStore {
	return &SnapshotStore{pool: pool}
}

// Compile-time interface check.
var _ storage.SnapshotStore = (*SnapshotStore)(nil)

// Load reads the persisted snapshot. Returns ErrNotFound when no checkpoint
// has been saved yet.
func (s *SnapshotStore) Load(ctx context.Context) (*domain.Snapshot, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT schema_version, window_size, created_at, entries
		FROM stdev_snapshot
		WHERE id = 1
	`)

	var snap domain.Snapshot
	var payload []byte
	err := row.Scan(&snap.SchemaVersion, &snap.WindowSize, &snap.CreatedAt, &payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}

	if err := json.Unmarshal(payload, &snap.Entries); err != nil {
		return nil, fmt.Errorf("decode snapshot entries: %w", err)
	}

	return &snap, nil
}

// Save writes the snapshot, replacing any previous checkpoint.
func (s *SnapshotStore) Save(ctx context.Context, snap *domain.Snapshot) error {
	if snap == nil {
		return storage.ErrInvalidInput
	}

	payload, err := json.Marshal(snap.Entries)
	if err != nil {
		return fmt.Errorf("encode snapshot entries: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO stdev_snapshot (id, schema_version, window_size, created_at, entries)
		VALUES (1, $1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET schema_version = EXCLUDED.schema_version,
		    window_size = EXCLUDED.window_size,
		    created_at = EXCLUDED.created_at,
		    entries = EXCLUDED.entries
	`, snap.SchemaVersion, snap.WindowSize, snap.CreatedAt, payload)

	return err
}
