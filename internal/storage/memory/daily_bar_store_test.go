package memory

import (
	"context"
	"testing"

	"github.com/yuniezzx/MarketSeer/internal/domain"
)

func bar(symbol, date string, close float64) *domain.DailyBar {
	return &domain.DailyBar{
		Symbol:    symbol,
		TradeDate: date,
		Source:    domain.SourceAkshare,
		Open:      close - 0.1,
		High:      close + 0.2,
		Low:       close - 0.3,
		Close:     close,
		Volume:    1000,
		Amount:    close * 1000,
	}
}

func TestDailyBarStore_InsertBulkAndGet(t *testing.T) {
	store := NewDailyBarStore()
	ctx := context.Background()

	bars := []*domain.DailyBar{
		bar("002104.SZ", "2025-12-17", 10.1),
		bar("002104.SZ", "2025-12-18", 10.3),
		bar("600519.SH", "2025-12-18", 1500.0),
	}
	if err := store.InsertBulk(ctx, bars); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	got, err := store.GetBySymbol(ctx, "002104.SZ")
	if err != nil {
		t.Fatalf("GetBySymbol failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].TradeDate != "2025-12-17" || got[1].TradeDate != "2025-12-18" {
		t.Errorf("bars not ordered by date: %s, %s", got[0].TradeDate, got[1].TradeDate)
	}
}

func TestDailyBarStore_ReInsertReplaces(t *testing.T) {
	store := NewDailyBarStore()
	ctx := context.Background()

	if err := store.InsertBulk(ctx, []*domain.DailyBar{bar("002104.SZ", "2025-12-18", 10.3)}); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}
	// Re-ingest of the same date, corrected close.
	if err := store.InsertBulk(ctx, []*domain.DailyBar{bar("002104.SZ", "2025-12-18", 10.4)}); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	got, err := store.GetBySymbol(ctx, "002104.SZ")
	if err != nil {
		t.Fatalf("GetBySymbol failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("re-insert duplicated the bar: %d rows", len(got))
	}
	if got[0].Close != 10.4 {
		t.Errorf("close = %v, want replaced 10.4", got[0].Close)
	}
}

func TestDailyBarStore_GetByDateRange(t *testing.T) {
	store := NewDailyBarStore()
	ctx := context.Background()

	var bars []*domain.DailyBar
	for _, d := range []string{"2025-12-15", "2025-12-16", "2025-12-17", "2025-12-18"} {
		bars = append(bars, bar("002104.SZ", d, 10))
	}
	if err := store.InsertBulk(ctx, bars); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	got, err := store.GetByDateRange(ctx, "002104.SZ", "2025-12-16", "2025-12-17")
	if err != nil {
		t.Fatalf("GetByDateRange failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want inclusive range of 2", len(got))
	}
}
