package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/yuniezzx/MarketSeer/internal/domain"
	"github.com/yuniezzx/MarketSeer/internal/idhash"
	"github.com/yuniezzx/MarketSeer/internal/storage"
)

func lhbEvent(code, date, reasons, analysis string) *domain.ListEvent {
	return &domain.ListEvent{
		EventID:    idhash.ComputeListEventID(code, date, reasons, analysis),
		Code:       code,
		Name:       "恒宝股份",
		ListedDate: date,
		Reasons:    reasons,
		Analysis:   analysis,
		Source:     domain.SourceAkshare,
	}
}

func TestListEventStore_UpsertCreates(t *testing.T) {
	store := NewListEventStore()
	ctx := context.Background()

	e := lhbEvent("002104", "2025-12-19", "日涨幅偏离值达7%", "买一主买")
	outcome, err := store.Upsert(ctx, e)
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if outcome != storage.OutcomeCreated {
		t.Errorf("outcome = %s, want created", outcome)
	}

	got, err := store.GetByID(ctx, e.EventID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Reasons != e.Reasons {
		t.Errorf("reasons mismatch: %q", got.Reasons)
	}
}

func TestListEventStore_DistinctReasonsStayDistinct(t *testing.T) {
	store := NewListEventStore()
	ctx := context.Background()

	// Same instrument, same day, two reasons: two rows, always.
	a := lhbEvent("002104", "2025-12-19", "日涨幅偏离值达7%", "")
	b := lhbEvent("002104", "2025-12-19", "连续三个交易日内涨幅偏离值累计达20%", "")

	if _, err := store.Upsert(ctx, a); err != nil {
		t.Fatalf("Upsert a failed: %v", err)
	}
	if _, err := store.Upsert(ctx, b); err != nil {
		t.Fatalf("Upsert b failed: %v", err)
	}

	events, err := store.GetByDate(ctx, "2025-12-19")
	if err != nil {
		t.Fatalf("GetByDate failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("events collapsed: got %d rows, want 2", len(events))
	}
}

func TestListEventStore_ReUpsertIsIdempotent(t *testing.T) {
	store := NewListEventStore()
	ctx := context.Background()

	e := lhbEvent("002104", "2025-12-19", "日涨幅偏离值达7%", "")
	e.ClosePrice = f64p(10.5)

	if _, err := store.Upsert(ctx, e); err != nil {
		t.Fatalf("first Upsert failed: %v", err)
	}

	again := lhbEvent("002104", "2025-12-19", "日涨幅偏离值达7%", "")
	again.ClosePrice = f64p(10.6)
	outcome, err := store.Upsert(ctx, again)
	if err != nil {
		t.Fatalf("second Upsert failed: %v", err)
	}
	if outcome != storage.OutcomeUpdated {
		t.Errorf("outcome = %s, want updated", outcome)
	}
	if store.Len() != 1 {
		t.Errorf("re-upsert duplicated the row: %d events", store.Len())
	}

	got, _ := store.GetByID(ctx, e.EventID)
	if *got.ClosePrice != 10.6 {
		t.Errorf("close price = %v, want refreshed 10.6", *got.ClosePrice)
	}
}

func TestListEventStore_UpsertKeepsMetricsTheNewEventLacks(t *testing.T) {
	store := NewListEventStore()
	ctx := context.Background()

	e := lhbEvent("002104", "2025-12-19", "日涨幅偏离值达7%", "")
	e.BuyAmount = f64p(1.2e8)
	if _, err := store.Upsert(ctx, e); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	sparse := lhbEvent("002104", "2025-12-19", "日涨幅偏离值达7%", "")
	if _, err := store.Upsert(ctx, sparse); err != nil {
		t.Fatalf("sparse Upsert failed: %v", err)
	}

	got, _ := store.GetByID(ctx, e.EventID)
	if got.BuyAmount == nil || *got.BuyAmount != 1.2e8 {
		t.Errorf("buy amount blanked: %v", got.BuyAmount)
	}
}

func TestListEventStore_GetByCode(t *testing.T) {
	store := NewListEventStore()
	ctx := context.Background()

	for _, date := range []string{"2025-12-19", "2025-11-03", "2025-12-01"} {
		if _, err := store.Upsert(ctx, lhbEvent("002104", date, "日涨幅偏离值达7%", "")); err != nil {
			t.Fatalf("Upsert %s failed: %v", date, err)
		}
	}
	if _, err := store.Upsert(ctx, lhbEvent("600519", "2025-12-19", "日涨幅偏离值达7%", "")); err != nil {
		t.Fatalf("Upsert other code failed: %v", err)
	}

	events, err := store.GetByCode(ctx, "002104")
	if err != nil {
		t.Fatalf("GetByCode failed: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("len = %d, want 3", len(events))
	}
	for i := 1; i < len(events); i++ {
		if events[i-1].ListedDate > events[i].ListedDate {
			t.Errorf("events not ordered by date: %s before %s", events[i-1].ListedDate, events[i].ListedDate)
		}
	}
}

func TestListEventStore_GetByIDNotFound(t *testing.T) {
	store := NewListEventStore()

	_, err := store.GetByID(context.Background(), "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
