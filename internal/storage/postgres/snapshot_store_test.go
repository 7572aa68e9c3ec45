package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"price-stats-lab/internal/domain"
	"price-stats-lab/internal/storage"
)

func TestSnapshotStore_RoundTrip(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewSnapshotStore(pool)

	ts := time.Date(2021, 11, 20, 10, 0, 0, 0, time.UTC)
	saved := &domain.Snapshot{
		SchemaVersion: domain.SnapshotSchemaVersion,
		WindowSize:    20,
		CreatedAt:     ts,
		Entries: map[string]domain.FieldState{
			domain.SnapshotKey("sec_1", domain.FieldMid): {
				Values:       []float64{1, 2, 3},
				Timestamps:   []time.Time{ts.Add(-2 * time.Hour), ts.Add(-time.Hour), ts},
				Sum:          6,
				SumSquares:   14,
				LastSnapTime: ts,
			},
		},
	}
	require.NoError(t, store.Save(ctx, saved))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)

	assert.Equal(t, saved.SchemaVersion, loaded.SchemaVersion)
	assert.Equal(t, saved.WindowSize, loaded.WindowSize)
	assert.True(t, loaded.CreatedAt.Equal(ts))

	key := domain.SnapshotKey("sec_1", domain.FieldMid)
	require.Contains(t, loaded.Entries, key)
	fs := loaded.Entries[key]
	assert.Equal(t, []float64{1, 2, 3}, fs.Values)
	assert.Equal(t, 6.0, fs.Sum)
	assert.Equal(t, 14.0, fs.SumSquares)
	require.Len(t, fs.Timestamps, 3)
	assert.True(t, fs.Timestamps[2].Equal(ts))
	assert.True(t, fs.LastSnapTime.Equal(ts))
}

func TestSnapshotStore_LoadEmpty(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSnapshotStore(pool)
	_, err := store.Load(context.Background())
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSnapshotStore_SaveReplaces(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewSnapshotStore(pool)

	first := &domain.Snapshot{
		SchemaVersion: domain.SnapshotSchemaVersion,
		WindowSize:    20,
		CreatedAt:     time.Now().UTC(),
		Entries:       map[string]domain.FieldState{},
	}
	require.NoError(t, store.Save(ctx, first))

	second := &domain.Snapshot{
		SchemaVersion: domain.SnapshotSchemaVersion,
		WindowSize:    5,
		CreatedAt:     time.Now().UTC(),
		Entries: map[string]domain.FieldState{
			domain.SnapshotKey("sec_9", domain.FieldAsk): {
				Sum: 1, SumSquares: 1, LastSnapTime: time.Now().UTC(),
				Values:     []float64{1},
				Timestamps: []time.Time{time.Now().UTC()},
			},
		},
	}
	require.NoError(t, store.Save(ctx, second))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, loaded.WindowSize)
	assert.Len(t, loaded.Entries, 1)
}

func TestSnapshotStore_SaveNil(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSnapshotStore(pool)
	assert.ErrorIs(t, store.Save(context.Background(), nil), storage.ErrInvalidInput)
}
