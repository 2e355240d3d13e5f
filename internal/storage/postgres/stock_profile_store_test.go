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

func TestStockProfileStore_UpsertAndGetByCode(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewStockProfileStore(pool)

	listDate := time.Date(2006, 5, 17, 0, 0, 0, 0, time.UTC)
	patch := &domain.StockProfilePatch{
		Code:           "002104",
		Name:           "恒宝股份",
		Exchange:       "SZ",
		FullName:       ptr("恒宝股份有限公司"),
		Industry:       ptr("计算机设备"),
		ListDate:       &listDate,
		TotalShares:    ptr(int64(709275177)),
		TotalMarketCap: ptr(1.5e10),
	}

	outcome, err := store.Upsert(ctx, patch)
	require.NoError(t, err)
	assert.Equal(t, storage.OutcomeCreated, outcome)

	p, err := store.GetByCode(ctx, "002104")
	require.NoError(t, err)

	assert.Equal(t, "002104", p.Code)
	assert.Equal(t, "恒宝股份", p.Name)
	assert.Equal(t, "SZ", p.Exchange)
	require.NotNil(t, p.FullName)
	assert.Equal(t, "恒宝股份有限公司", *p.FullName)
	require.NotNil(t, p.ListDate)
	assert.True(t, p.ListDate.Equal(listDate))
	require.NotNil(t, p.TotalShares)
	assert.Equal(t, int64(709275177), *p.TotalShares)
	assert.False(t, p.CreatedAt.IsZero())
}

func TestStockProfileStore_SparsePatchNeverBlanks(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewStockProfileStore(pool)

	_, err := store.Upsert(ctx, &domain.StockProfilePatch{
		Code:        "002104",
		Name:        "恒宝股份",
		Exchange:    "SZ",
		Industry:    ptr("计算机设备"),
		TotalShares: ptr(int64(709275177)),
	})
	require.NoError(t, err)

	// A later run where only identity fields resolved must not erase
	// the previously stored fields.
	outcome, err := store.Upsert(ctx, &domain.StockProfilePatch{
		Code:     "002104",
		Name:     "恒宝股份",
		Exchange: "SZ",
	})
	require.NoError(t, err)
	assert.Equal(t, storage.OutcomeUpdated, outcome)

	p, err := store.GetByCode(ctx, "002104")
	require.NoError(t, err)
	require.NotNil(t, p.Industry)
	assert.Equal(t, "计算机设备", *p.Industry)
	require.NotNil(t, p.TotalShares)
	assert.Equal(t, int64(709275177), *p.TotalShares)
}

func TestStockProfileStore_ReUpsertIsIdempotent(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewStockProfileStore(pool)

	patch := &domain.StockProfilePatch{
		Code:           "002104",
		Name:           "恒宝股份",
		Exchange:       "SZ",
		TotalMarketCap: ptr(1.5e10),
	}

	_, err := store.Upsert(ctx, patch)
	require.NoError(t, err)

	first, err := store.GetByCode(ctx, "002104")
	require.NoError(t, err)

	patch.TotalMarketCap = ptr(1.6e10)
	outcome, err := store.Upsert(ctx, patch)
	require.NoError(t, err)
	assert.Equal(t, storage.OutcomeUpdated, outcome)

	profiles, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, profiles, 1, "re-upsert must not duplicate the row")

	second, err := store.GetByCode(ctx, "002104")
	require.NoError(t, err)
	assert.Equal(t, 1.6e10, *second.TotalMarketCap)
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt) || second.UpdatedAt.Equal(first.UpdatedAt))
	assert.True(t, second.CreatedAt.Equal(first.CreatedAt), "created_at must not move")
}

func TestStockProfileStore_GetByCodeNotFound(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewStockProfileStore(pool)

	_, err := store.GetByCode(context.Background(), "000000")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStockProfileStore_ListOrdered(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewStockProfileStore(pool)

	for _, code := range []string{"600519", "000001", "002104"} {
		_, err := store.Upsert(ctx, &domain.StockProfilePatch{Code: code, Name: "n" + code, Exchange: "SZ"})
		require.NoError(t, err)
	}

	profiles, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, profiles, 3)
	assert.Equal(t, "000001", profiles[0].Code)
	assert.Equal(t, "002104", profiles[1].Code)
	assert.Equal(t, "600519", profiles[2].Code)
}
