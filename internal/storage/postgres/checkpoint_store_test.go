package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuniezzx/MarketSeer/internal/domain"
	"github.com/yuniezzx/MarketSeer/internal/storage"
)

func TestCheckpointStore_SaveAndGet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewCheckpointStore(pool)

	mark := time.Date(2025, 12, 19, 8, 0, 0, 0, time.UTC)
	err := store.Save(ctx, &domain.IngestCheckpoint{
		Endpoint:      "stock_individual_info_em",
		LastFetchedAt: mark,
		Params:        `{"symbol":"002104"}`,
	})
	require.NoError(t, err)

	got, err := store.Get(ctx, "stock_individual_info_em")
	require.NoError(t, err)
	assert.True(t, got.LastFetchedAt.Equal(mark))
	assert.Equal(t, `{"symbol":"002104"}`, got.Params)
}

func TestCheckpointStore_SaveReplaces(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewCheckpointStore(pool)

	first := time.Date(2025, 12, 18, 8, 0, 0, 0, time.UTC)
	require.NoError(t, store.Save(ctx, &domain.IngestCheckpoint{Endpoint: "daily", LastFetchedAt: first, Params: "{}"}))
	require.NoError(t, store.Save(ctx, &domain.IngestCheckpoint{Endpoint: "daily", LastFetchedAt: first.Add(24 * time.Hour), Params: "{}"}))

	got, err := store.Get(ctx, "daily")
	require.NoError(t, err)
	assert.True(t, got.LastFetchedAt.Equal(first.Add(24*time.Hour)))

	all, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestCheckpointStore_GetNotFound(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewCheckpointStore(pool)

	_, err := store.Get(context.Background(), "never_fetched")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
