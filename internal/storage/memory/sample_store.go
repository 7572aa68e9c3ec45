package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"price-stats-lab/internal/domain"
	"price-stats-lab/internal/storage"
)

// SampleStore is an in-memory implementation of storage.SampleStore.
type SampleStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Sample // keyed by (security_id, snap_time)
}

// NewSampleStore creates a new in-memory sample store.
func NewSampleStore() *SampleStore {
	return &SampleStore{
		data: make(map[string]*domain.Sample),
	}
}

// sampleKey generates a unique key for a sample.
func sampleKey(securityID string, snapTimeUnix int64) string {
	return fmt.Sprintf("%s|%d", securityID, snapTimeUnix)
}

// InsertBulk adds multiple samples. Fails entire batch on duplicate.
func (s *SampleStore) InsertBulk(_ context.Context, samples []*domain.Sample) error {
	if len(samples) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Track keys in this batch to detect intra-batch duplicates
	batchKeys := make(map[string]struct{}, len(samples))

	// First pass: check for duplicates (existing + intra-batch)
	for _, p := range samples {
		if p == nil || p.SecurityID == "" {
			return storage.ErrInvalidInput
		}
		key := sampleKey(p.SecurityID, p.SnapTime.Unix())

		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	// Second pass: insert all
	for _, p := range samples {
		key := sampleKey(p.SecurityID, p.SnapTime.Unix())
		sampleCopy := *p
		s.data[key] = &sampleCopy
	}

	return nil
}

// GetBySecurityID retrieves all samples for a security, ordered by snap_time ASC.
func (s *SampleStore) GetBySecurityID(_ context.Context, securityID string) ([]*domain.Sample, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Sample
	for _, p := range s.data {
		if p.SecurityID == securityID {
			sampleCopy := *p
			result = append(result, &sampleCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].SnapTime.Before(result[j].SnapTime)
	})

	return result, nil
}

// GetByTimeRange retrieves a security's samples within [start, end] (inclusive).
func (s *SampleStore) GetByTimeRange(_ context.Context, securityID string, r domain.TimeRange) ([]*domain.Sample, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Sample
	for _, p := range s.data {
		if p.SecurityID == securityID && r.Contains(p.SnapTime) {
			sampleCopy := *p
			result = append(result, &sampleCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].SnapTime.Before(result[j].SnapTime)
	})

	return result, nil
}

// ListSecurityIDs returns all distinct security IDs, sorted ASC.
func (s *SampleStore) ListSecurityIDs(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, p := range s.data {
		seen[p.SecurityID] = struct{}{}
	}

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return ids, nil
}

// GetAllOrdered retrieves every sample ordered by (security_id, snap_time) ASC.
func (s *SampleStore) GetAllOrdered(_ context.Context) ([]*domain.Sample, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Sample, 0, len(s.data))
	for _, p := range s.data {
		sampleCopy := *p
		result = append(result, &sampleCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].SecurityID != result[j].SecurityID {
			return result[i].SecurityID < result[j].SecurityID
		}
		return result[i].SnapTime.Before(result[j].SnapTime)
	})

	return result, nil
}

var _ storage.SampleStore = (*SampleStore)(nil)
