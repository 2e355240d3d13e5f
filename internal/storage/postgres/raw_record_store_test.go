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

func testRaw(symbol, endpoint, payload string) *domain.RawRecord {
	return &domain.RawRecord{
		Symbol:    ptr(symbol),
		Source:    domain.SourceAkshare,
		Endpoint:  endpoint,
		Kind:      domain.EndpointMetadata,
		Payload:   payload,
		FetchedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
}

func TestRawRecordStore_InsertAssignsID(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewRawRecordStore(pool)

	r := testRaw("002104", "stock_individual_info_em", `{"data":{"f57":"002104"}}`)
	err := store.Insert(ctx, r)
	require.NoError(t, err)
	assert.Greater(t, r.ID, int64(0))

	got, err := store.GetByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, r.Payload, got.Payload, "payload must round-trip verbatim")
	assert.Equal(t, domain.SourceAkshare, got.Source)
	assert.Equal(t, domain.EndpointMetadata, got.Kind)
}

func TestRawRecordStore_DuplicatePayloadsBothKept(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewRawRecordStore(pool)

	payload := `{"data":{"f57":"002104"}}`
	require.NoError(t, store.Insert(ctx, testRaw("002104", "stock_individual_info_em", payload)))
	require.NoError(t, store.Insert(ctx, testRaw("002104", "stock_individual_info_em", payload)))

	records, err := store.GetBySymbolSourceEndpoint(ctx, "002104", domain.SourceAkshare, "stock_individual_info_em")
	require.NoError(t, err)
	assert.Len(t, records, 2, "identical payloads are separate archive entries")
	assert.Less(t, records[0].ID, records[1].ID)
}

func TestRawRecordStore_UnicodePayloadPreserved(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewRawRecordStore(pool)

	payload := `{"result":{"data":[{"EXPLANATION":"买一主买，成交活跃","SECURITY_NAME_ABBR":"恒宝股份"}]}}`
	r := testRaw("002104", "stock_lhb_detail_em", payload)
	require.NoError(t, store.Insert(ctx, r))

	got, err := store.GetByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, payload, got.Payload, "original characters must survive storage")
}

func TestRawRecordStore_CountBySource(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewRawRecordStore(pool)

	require.NoError(t, store.Insert(ctx, testRaw("002104", "stock_individual_info_em", "{}")))
	tushareRec := testRaw("002104", "stock_basic", "{}")
	tushareRec.Source = domain.SourceTushare
	require.NoError(t, store.Insert(ctx, tushareRec))

	counts, err := store.CountBySource(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[domain.SourceAkshare])
	assert.Equal(t, int64(1), counts[domain.SourceTushare])
}

func TestRawRecordStore_GetByIDNotFound(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewRawRecordStore(pool)

	_, err := store.GetByID(context.Background(), 999999)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRawRecordStore_ResetSequence(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewRawRecordStore(pool)

	first := testRaw("002104", "stock_individual_info_em", "{}")
	require.NoError(t, store.Insert(ctx, first))
	require.NoError(t, store.ResetSequence(ctx))

	second := testRaw("002104", "stock_individual_info_em", "{}")
	require.NoError(t, store.Insert(ctx, second))
	assert.Greater(t, second.ID, first.ID, "sequence must continue past existing rows")
}
