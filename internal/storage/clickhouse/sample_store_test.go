package clickhouse

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"price-stats-lab/internal/domain"
	"price-stats-lab/internal/storage"
)

var chBase = time.Date(2021, 11, 20, 0, 0, 0, 0, time.UTC)

func chSample(securityID string, h int, mid float64) *domain.Sample {
	return &domain.Sample{
		SecurityID: securityID,
		SnapTime:   chBase.Add(time.Duration(h) * time.Hour),
		Bid:        mid - 0.5,
		Mid:        mid,
		Ask:        mid + 0.5,
	}
}

func TestSampleStore_InsertAndGet(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewSampleStore(conn)

	err := store.InsertBulk(ctx, []*domain.Sample{
		chSample("sec_1", 1, 101),
		chSample("sec_1", 0, 100),
		chSample("sec_2", 0, 50),
	})
	require.NoError(t, err)

	got, err := store.GetBySecurityID(ctx, "sec_1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, chBase, got[0].SnapTime)
	assert.Equal(t, 100.0, got[0].Mid)
	assert.Equal(t, 99.5, got[0].Bid)
	assert.Equal(t, 100.5, got[0].Ask)
	assert.Equal(t, chBase.Add(time.Hour), got[1].SnapTime)
}

func TestSampleStore_DuplicateDetection(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewSampleStore(conn)

	require.NoError(t, store.InsertBulk(ctx, []*domain.Sample{chSample("sec_1", 0, 100)}))

	err := store.InsertBulk(ctx, []*domain.Sample{chSample("sec_1", 0, 101)})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	err = store.InsertBulk(ctx, []*domain.Sample{
		chSample("sec_2", 0, 1),
		chSample("sec_2", 0, 2),
	})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestSampleStore_InvalidInput(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewSampleStore(conn)

	err := store.InsertBulk(ctx, []*domain.Sample{{SnapTime: chBase}})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}

func TestSampleStore_GetByTimeRange(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewSampleStore(conn)

	var batch []*domain.Sample
	for h := 0; h < 6; h++ {
		batch = append(batch, chSample("sec_1", h, float64(100+h)))
	}
	require.NoError(t, store.InsertBulk(ctx, batch))

	r := domain.TimeRange{
		Start: chBase.Add(2 * time.Hour),
		End:   chBase.Add(4 * time.Hour),
	}
	got, err := store.GetByTimeRange(ctx, "sec_1", r)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, r.Start, got[0].SnapTime)
	assert.Equal(t, r.End, got[2].SnapTime)
}

func TestSampleStore_ListSecurityIDs(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewSampleStore(conn)

	require.NoError(t, store.InsertBulk(ctx, []*domain.Sample{
		chSample("sec_b", 0, 1),
		chSample("sec_a", 0, 1),
		chSample("sec_b", 1, 1),
	}))

	ids, err := store.ListSecurityIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"sec_a", "sec_b"}, ids)
}

func TestSampleStore_GetAllOrdered(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewSampleStore(conn)

	require.NoError(t, store.InsertBulk(ctx, []*domain.Sample{
		chSample("sec_b", 0, 1),
		chSample("sec_a", 1, 2),
		chSample("sec_a", 0, 3),
	}))

	got, err := store.GetAllOrdered(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "sec_a", got[0].SecurityID)
	assert.Equal(t, chBase, got[0].SnapTime)
	assert.Equal(t, "sec_a", got[1].SecurityID)
	assert.Equal(t, "sec_b", got[2].SecurityID)
}
