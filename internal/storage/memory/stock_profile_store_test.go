package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yuniezzx/MarketSeer/internal/domain"
	"github.com/yuniezzx/MarketSeer/internal/storage"
)

func strp(s string) *string   { return &s }
func i64p(n int64) *int64     { return &n }
func f64p(f float64) *float64 { return &f }

func TestStockProfileStore_UpsertCreates(t *testing.T) {
	store := NewStockProfileStore()
	ctx := context.Background()

	patch := &domain.StockProfilePatch{
		Code:     "002104",
		Name:     "恒宝股份",
		Exchange: "SZ",
		Industry: strp("计算机设备"),
	}

	outcome, err := store.Upsert(ctx, patch)
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if outcome != storage.OutcomeCreated {
		t.Errorf("outcome = %s, want created", outcome)
	}

	p, err := store.GetByCode(ctx, "002104")
	if err != nil {
		t.Fatalf("GetByCode failed: %v", err)
	}
	if p.Name != "恒宝股份" || *p.Industry != "计算机设备" {
		t.Errorf("stored profile mismatch: %+v", p)
	}
	if p.CreatedAt.IsZero() || p.UpdatedAt.IsZero() {
		t.Error("timestamps not set on create")
	}
}

func TestStockProfileStore_UpsertNeverBlanksFields(t *testing.T) {
	store := NewStockProfileStore()
	ctx := context.Background()

	full := &domain.StockProfilePatch{
		Code:        "002104",
		Name:        "恒宝股份",
		Exchange:    "SZ",
		Industry:    strp("计算机设备"),
		TotalShares: i64p(709275177),
	}
	if _, err := store.Upsert(ctx, full); err != nil {
		t.Fatalf("Upsert full failed: %v", err)
	}

	// Second run: the richer sources were down, the patch only knows
	// the identity fields.
	sparse := &domain.StockProfilePatch{
		Code:     "002104",
		Name:     "恒宝股份",
		Exchange: "SZ",
	}
	outcome, err := store.Upsert(ctx, sparse)
	if err != nil {
		t.Fatalf("Upsert sparse failed: %v", err)
	}
	if outcome != storage.OutcomeUpdated {
		t.Errorf("outcome = %s, want updated", outcome)
	}

	p, err := store.GetByCode(ctx, "002104")
	if err != nil {
		t.Fatalf("GetByCode failed: %v", err)
	}
	if p.Industry == nil || *p.Industry != "计算机设备" {
		t.Errorf("industry blanked by sparse patch: %v", p.Industry)
	}
	if p.TotalShares == nil || *p.TotalShares != 709275177 {
		t.Errorf("total shares blanked by sparse patch: %v", p.TotalShares)
	}
}

func TestStockProfileStore_UpsertOverwritesWithNewValues(t *testing.T) {
	store := NewStockProfileStore()
	ctx := context.Background()

	if _, err := store.Upsert(ctx, &domain.StockProfilePatch{
		Code: "002104", Name: "恒宝股份", Exchange: "SZ",
		TotalMarketCap: f64p(1.5e10),
	}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	if _, err := store.Upsert(ctx, &domain.StockProfilePatch{
		Code: "002104", Name: "恒宝股份", Exchange: "SZ",
		TotalMarketCap: f64p(1.6e10),
	}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	p, err := store.GetByCode(ctx, "002104")
	if err != nil {
		t.Fatalf("GetByCode failed: %v", err)
	}
	if *p.TotalMarketCap != 1.6e10 {
		t.Errorf("market cap = %v, want refreshed 1.6e10", *p.TotalMarketCap)
	}

	profiles, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(profiles) != 1 {
		t.Errorf("re-upsert duplicated the row: %d profiles", len(profiles))
	}
}

func TestStockProfileStore_UpdatedAtAdvances(t *testing.T) {
	store := NewStockProfileStore()
	ctx := context.Background()

	patch := &domain.StockProfilePatch{Code: "002104", Name: "恒宝股份", Exchange: "SZ"}
	if _, err := store.Upsert(ctx, patch); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	first, _ := store.GetByCode(ctx, "002104")

	time.Sleep(5 * time.Millisecond)
	if _, err := store.Upsert(ctx, patch); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	second, _ := store.GetByCode(ctx, "002104")

	if !second.UpdatedAt.After(first.UpdatedAt) {
		t.Error("UpdatedAt did not advance on re-upsert")
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Error("CreatedAt changed on re-upsert")
	}
}

func TestStockProfileStore_GetByCodeNotFound(t *testing.T) {
	store := NewStockProfileStore()

	_, err := store.GetByCode(context.Background(), "000000")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestStockProfileStore_UpsertInvalidInput(t *testing.T) {
	store := NewStockProfileStore()
	ctx := context.Background()

	if _, err := store.Upsert(ctx, nil); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("nil patch: err = %v, want ErrInvalidInput", err)
	}
	if _, err := store.Upsert(ctx, &domain.StockProfilePatch{Code: "002104"}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("missing name: err = %v, want ErrInvalidInput", err)
	}
}

func TestStockProfileStore_ListOrdered(t *testing.T) {
	store := NewStockProfileStore()
	ctx := context.Background()

	for _, code := range []string{"600519", "002104", "000001"} {
		if _, err := store.Upsert(ctx, &domain.StockProfilePatch{Code: code, Name: "n" + code, Exchange: "SZ"}); err != nil {
			t.Fatalf("Upsert %s failed: %v", code, err)
		}
	}

	profiles, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(profiles) != 3 {
		t.Fatalf("len = %d, want 3", len(profiles))
	}
	for i, want := range []string{"000001", "002104", "600519"} {
		if profiles[i].Code != want {
			t.Errorf("profiles[%d].Code = %s, want %s", i, profiles[i].Code, want)
		}
	}
}
