package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/yuniezzx/MarketSeer/internal/domain"
	"github.com/yuniezzx/MarketSeer/internal/storage"
)

// ListEventStore is an in-memory implementation of
// storage.ListEventStore keyed by event_id.
type ListEventStore struct {
	mu   sync.RWMutex
	byID map[string]*domain.ListEvent
}

// NewListEventStore creates a new in-memory list event store.
func NewListEventStore() *ListEventStore {
	return &ListEventStore{byID: make(map[string]*domain.ListEvent)}
}

// Upsert inserts the event or refreshes the row with the same event_id.
func (s *ListEventStore) Upsert(_ context.Context, e *domain.ListEvent) (storage.UpsertOutcome, error) {
	if e == nil || e.EventID == "" || e.Code == "" || e.ListedDate == "" {
		return "", storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	existing, exists := s.byID[e.EventID]
	if !exists {
		eventCopy := *e
		eventCopy.CreatedAt = now
		eventCopy.UpdatedAt = now
		s.byID[e.EventID] = &eventCopy
		return storage.OutcomeCreated, nil
	}

	// Identity fields are part of the hash and cannot change; refresh
	// everything else, keeping stored metrics the new event lacks.
	existing.Name = e.Name
	existing.Source = e.Source
	coalesceFloat(&existing.ClosePrice, e.ClosePrice)
	coalesceFloat(&existing.ChangePercent, e.ChangePercent)
	coalesceFloat(&existing.TurnoverRate, e.TurnoverRate)
	coalesceFloat(&existing.CirculatingMktCap, e.CirculatingMktCap)
	coalesceFloat(&existing.BuyAmount, e.BuyAmount)
	coalesceFloat(&existing.SellAmount, e.SellAmount)
	coalesceFloat(&existing.NetAmount, e.NetAmount)
	coalesceFloat(&existing.TradeAmount, e.TradeAmount)
	coalesceFloat(&existing.MarketTotal, e.MarketTotal)
	coalesceFloat(&existing.NetRatio, e.NetRatio)
	coalesceFloat(&existing.TradeRatio, e.TradeRatio)
	existing.UpdatedAt = now
	return storage.OutcomeUpdated, nil
}

func coalesceFloat(dst **float64, src *float64) {
	if src != nil {
		v := *src
		*dst = &v
	}
}

// GetByID retrieves one event. Returns ErrNotFound if not exists.
func (s *ListEventStore) GetByID(_ context.Context, eventID string) (*domain.ListEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, exists := s.byID[eventID]
	if !exists {
		return nil, storage.ErrNotFound
	}
	eventCopy := *e
	return &eventCopy, nil
}

// GetByDate retrieves all events for one date, ordered by code ASC.
func (s *ListEventStore) GetByDate(_ context.Context, date string) ([]*domain.ListEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var events []*domain.ListEvent
	for _, e := range s.byID {
		if e.ListedDate == date {
			eventCopy := *e
			events = append(events, &eventCopy)
		}
	}
	sort.Slice(events, func(i, j int) bool {
		if events[i].Code != events[j].Code {
			return events[i].Code < events[j].Code
		}
		return events[i].EventID < events[j].EventID
	})
	return events, nil
}

// GetByCode retrieves all events for one instrument, ordered by
// listed_date ASC.
func (s *ListEventStore) GetByCode(_ context.Context, code string) ([]*domain.ListEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var events []*domain.ListEvent
	for _, e := range s.byID {
		if e.Code == code {
			eventCopy := *e
			events = append(events, &eventCopy)
		}
	}
	sort.Slice(events, func(i, j int) bool {
		if events[i].ListedDate != events[j].ListedDate {
			return events[i].ListedDate < events[j].ListedDate
		}
		return events[i].EventID < events[j].EventID
	})
	return events, nil
}

// Len reports the number of distinct events stored.
func (s *ListEventStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

var _ storage.ListEventStore = (*ListEventStore)(nil)
