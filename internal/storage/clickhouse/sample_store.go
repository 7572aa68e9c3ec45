package clickhouse

import (
	"context"
	"fmt"
	"time"

	"price-stats-lab/internal/domain"
	"price-stats-lab/internal/storage"
)

// SampleStore implements storage.SampleStore using ClickHouse.
type SampleStore struct {
	conn *Conn
}

// NewSampleStore creates a new SampleStore.
func NewSampleStore(conn *Conn) *SampleStore {
	return &SampleStore{conn: conn}
}

// Compile-time interface check.
var _ storage.SampleStore = (*SampleStore)(nil)

// InsertBulk adds multiple samples. Fails entire batch on duplicate
// (security_id, snap_time).
func (s *SampleStore) InsertBulk(ctx context.Context, samples []*domain.Sample) error {
	if len(samples) == 0 {
		return nil
	}

	// Check for intra-batch duplicates
	type key struct {
		securityID string
		snapTime   int64
	}
	seen := make(map[key]struct{}, len(samples))
	for _, p := range samples {
		if p == nil || p.SecurityID == "" {
			return storage.ErrInvalidInput
		}
		k := key{p.SecurityID, p.SnapTime.Unix()}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	// Check for duplicates against existing rows
	for _, p := range samples {
		exists, err := s.exists(ctx, p.SecurityID, p.SnapTime)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO price_samples (
			security_id, snap_time, bid, mid, ask
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, p := range samples {
		err = batch.Append(
			p.SecurityID, p.SnapTime.UTC(),
			p.Bid, p.Mid, p.Ask,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// exists checks whether a sample with this key is already stored.
func (s *SampleStore) exists(ctx context.Context, securityID string, snapTime time.Time) (bool, error) {
	row := s.conn.QueryRow(ctx, `
		SELECT count() FROM price_samples
		WHERE security_id = ? AND snap_time = ?
	`, securityID, snapTime.UTC())

	var count uint64
	if err := row.Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetBySecurityID retrieves all samples for a security, ordered by snap_time ASC.
func (s *SampleStore) GetBySecurityID(ctx context.Context, securityID string) ([]*domain.Sample, error) {
	return s.querySamples(ctx, `
		SELECT security_id, snap_time, bid, mid, ask
		FROM price_samples
		WHERE security_id = ?
		ORDER BY snap_time ASC
	`, securityID)
}

// GetByTimeRange retrieves a security's samples within [start, end] (inclusive).
func (s *SampleStore) GetByTimeRange(ctx context.Context, securityID string, r domain.TimeRange) ([]*domain.Sample, error) {
	return s.querySamples(ctx, `
		SELECT security_id, snap_time, bid, mid, ask
		FROM price_samples
		WHERE security_id = ? AND snap_time >= ? AND snap_time <= ?
		ORDER BY snap_time ASC
	`, securityID, r.Start.UTC(), r.End.UTC())
}

// ListSecurityIDs returns all distinct security IDs, sorted ASC.
func (s *SampleStore) ListSecurityIDs(ctx context.Context) ([]string, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT DISTINCT security_id
		FROM price_samples
		ORDER BY security_id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query security ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan security id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// GetAllOrdered retrieves every sample ordered by (security_id, snap_time) ASC.
func (s *SampleStore) GetAllOrdered(ctx context.Context) ([]*domain.Sample, error) {
	return s.querySamples(ctx, `
		SELECT security_id, snap_time, bid, mid, ask
		FROM price_samples
		ORDER BY security_id ASC, snap_time ASC
	`)
}

func (s *SampleStore) querySamples(ctx context.Context, query string, args ...any) ([]*domain.Sample, error) {
	rows, err := s.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query samples: %w", err)
	}
	defer rows.Close()

	var result []*domain.Sample
	for rows.Next() {
		var p domain.Sample
		if err := rows.Scan(&p.SecurityID, &p.SnapTime, &p.Bid, &p.Mid, &p.Ask); err != nil {
			return nil, fmt.Errorf("scan sample: %w", err)
		}
		p.SnapTime = p.SnapTime.UTC()
		result = append(result, &p)
	}
	return result, rows.Err()
}
