package memory

import (
	"context"
	"sync"

	"github.com/yuniezzx/MarketSeer/internal/domain"
	"github.com/yuniezzx/MarketSeer/internal/storage"
)

// RawRecordStore is an in-memory implementation of
// storage.RawRecordStore. IDs are assigned from a monotonic sequence
// the way the Postgres BIGSERIAL does.
type RawRecordStore struct {
	mu      sync.RWMutex
	nextID  int64
	records []*domain.RawRecord // append order
}

// NewRawRecordStore creates a new in-memory raw record store.
func NewRawRecordStore() *RawRecordStore {
	return &RawRecordStore{nextID: 1}
}

// Insert appends one raw payload and fills in its assigned ID.
func (s *RawRecordStore) Insert(_ context.Context, r *domain.RawRecord) error {
	if r == nil || r.Source == "" || r.Endpoint == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	recCopy := *r
	recCopy.ID = s.nextID
	s.nextID++
	s.records = append(s.records, &recCopy)

	r.ID = recCopy.ID
	return nil
}

// GetByID retrieves one archived payload. Returns ErrNotFound if not exists.
func (s *RawRecordStore) GetByID(_ context.Context, id int64) (*domain.RawRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.records {
		if r.ID == id {
			recCopy := *r
			return &recCopy, nil
		}
	}
	return nil, storage.ErrNotFound
}

// GetBySymbolSourceEndpoint retrieves the archive trail for one
// (symbol, source, endpoint) in append order, which matches
// fetched_at order for a single writer.
func (s *RawRecordStore) GetBySymbolSourceEndpoint(_ context.Context, symbol string, source domain.Source, endpoint string) ([]*domain.RawRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.RawRecord
	for _, r := range s.records {
		if r.Source != source || r.Endpoint != endpoint {
			continue
		}
		if (r.Symbol == nil && symbol != "") || (r.Symbol != nil && *r.Symbol != symbol) {
			continue
		}
		recCopy := *r
		result = append(result, &recCopy)
	}
	return result, nil
}

// CountBySource reports archive depth per source.
func (s *RawRecordStore) CountBySource(_ context.Context) (map[domain.Source]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[domain.Source]int64)
	for _, r := range s.records {
		counts[r.Source]++
	}
	return counts, nil
}

// ResetSequence realigns the ID sequence with the highest stored ID.
func (s *RawRecordStore) ResetSequence(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var maxID int64
	for _, r := range s.records {
		if r.ID > maxID {
			maxID = r.ID
		}
	}
	s.nextID = maxID + 1
	return nil
}

// Len reports the total number of archived payloads.
func (s *RawRecordStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

var _ storage.RawRecordStore = (*RawRecordStore)(nil)
