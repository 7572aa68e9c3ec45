// Package sqlite provides a local-file snapshot store. It is the default
// backend for single-machine runs: one SQLite file per snapshot path, no
// server required.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"price-stats-lab/internal/domain"
	"price-stats-lab/internal/storage"
)

// SnapshotStore is a SQLite-backed implementation of storage.SnapshotStore.
type SnapshotStore struct {
	db *sql.DB
}

// NewSnapshotStore opens or creates the SQLite database at dbPath.
func NewSnapshotStore(dbPath string) (*SnapshotStore, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("%w: empty snapshot path", storage.ErrInvalidInput)
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open snapshot database: %w", err)
	}
	db.SetMaxOpenConns(1) // single writer

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS stdev_snapshot (
			id             INTEGER PRIMARY KEY CHECK (id = 1),
			schema_version INTEGER NOT NULL,
			window_size    INTEGER NOT NULL,
			created_at     INTEGER NOT NULL,
			entries        TEXT NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create snapshot table: %w", err)
	}

	return &SnapshotStore{db: db}, nil
}

// Close closes the underlying database.
func (s *SnapshotStore) Close() error {
	return s.db.Close()
}

// Compile-time interface check.
var _ storage.SnapshotStore = (*SnapshotStore)(nil)

// Load reads the persisted snapshot. Returns ErrNotFound when none exists.
func (s *SnapshotStore) Load(ctx context.Context) (*domain.Snapshot, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT schema_version, window_size, created_at, entries
		FROM stdev_snapshot
		WHERE id = 1
	`)

	var snap domain.Snapshot
	var createdAt int64
	var payload string
	err := row.Scan(&snap.SchemaVersion, &snap.WindowSize, &createdAt, &payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	snap.CreatedAt = time.Unix(createdAt, 0).UTC()

	if err := json.Unmarshal([]byte(payload), &snap.Entries); err != nil {
		return nil, fmt.Errorf("decode snapshot entries: %w", err)
	}

	return &snap, nil
}

// Save writes the snapshot, replacing any previous one.
func (s *SnapshotStore) Save(ctx context.Context, snap *domain.Snapshot) error {
	if snap == nil {
		return storage.ErrInvalidInput
	}

	payload, err := json.Marshal(snap.Entries)
	if err != nil {
		return fmt.Errorf("encode snapshot entries: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO stdev_snapshot (id, schema_version, window_size, created_at, entries)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE
		SET schema_version = excluded.schema_version,
		    window_size = excluded.window_size,
		    created_at = excluded.created_at,
		    entries = excluded.entries
	`, snap.SchemaVersion, snap.WindowSize, snap.CreatedAt.Unix(), string(payload))

	return err
}
