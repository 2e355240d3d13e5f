package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/yuniezzx/MarketSeer/internal/domain"
	"github.com/yuniezzx/MarketSeer/internal/storage"
)

// DailyBarStore is an in-memory implementation of
// storage.DailyBarStore. Re-inserting a (symbol, trade_date) pair
// replaces the bar, mirroring the ReplacingMergeTree behavior of the
// ClickHouse store.
type DailyBarStore struct {
	mu    sync.RWMutex
	byKey map[barKey]*domain.DailyBar
}

type barKey struct {
	symbol    string
	tradeDate string
}

// NewDailyBarStore creates a new in-memory daily bar store.
func NewDailyBarStore() *DailyBarStore {
	return &DailyBarStore{byKey: make(map[barKey]*domain.DailyBar)}
}

// InsertBulk adds bars, replacing any existing (symbol, trade_date) rows.
func (s *DailyBarStore) InsertBulk(_ context.Context, bars []*domain.DailyBar) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, b := range bars {
		if b == nil || b.Symbol == "" || b.TradeDate == "" {
			return storage.ErrInvalidInput
		}
		barCopy := *b
		s.byKey[barKey{b.Symbol, b.TradeDate}] = &barCopy
	}
	return nil
}

// GetBySymbol retrieves all bars for a symbol, ordered by trade_date ASC.
func (s *DailyBarStore) GetBySymbol(_ context.Context, symbol string) ([]*domain.DailyBar, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var bars []*domain.DailyBar
	for k, b := range s.byKey {
		if k.symbol == symbol {
			barCopy := *b
			bars = append(bars, &barCopy)
		}
	}
	sortBars(bars)
	return bars, nil
}

// GetByDateRange retrieves bars for a symbol within [start, end]
// (inclusive, YYYY-MM-DD). Lexical comparison is date comparison for
// this layout.
func (s *DailyBarStore) GetByDateRange(_ context.Context, symbol, start, end string) ([]*domain.DailyBar, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var bars []*domain.DailyBar
	for k, b := range s.byKey {
		if k.symbol == symbol && k.tradeDate >= start && k.tradeDate <= end {
			barCopy := *b
			bars = append(bars, &barCopy)
		}
	}
	sortBars(bars)
	return bars, nil
}

func sortBars(bars []*domain.DailyBar) {
	sort.Slice(bars, func(i, j int) bool { return bars[i].TradeDate < bars[j].TradeDate })
}

var _ storage.DailyBarStore = (*DailyBarStore)(nil)
