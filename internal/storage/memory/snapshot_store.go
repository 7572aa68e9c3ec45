package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"price-stats-lab/internal/domain"
	"price-stats-lab/internal/storage"
)

// SnapshotStore is an in-memory implementation of storage.SnapshotStore.
// It round-trips snapshots through JSON so tests exercise the same encoding
// the persistent backends use.
type SnapshotStore struct {
	mu      sync.RWMutex
	payload []byte
}

// NewSnapshotStore creates a new in-memory snapshot store.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{}
}

// Load reads the stored snapshot. Returns ErrNotFound when none was saved.
func (s *SnapshotStore) Load(_ context.Context) (*domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.payload == nil {
		return nil, storage.ErrNotFound
	}

	var snap domain.Snapshot
	if err := json.Unmarshal(s.payload, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snap, nil
}

// Save stores the snapshot, replacing any previous one.
func (s *SnapshotStore) Save(_ context.Context, snap *domain.Snapshot) error {
	if snap == nil {
		return storage.ErrInvalidInput
	}

	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.payload = payload
	return nil
}

var _ storage.SnapshotStore = (*SnapshotStore)(nil)
