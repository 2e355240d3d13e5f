package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/yuniezzx/MarketSeer/internal/domain"
	"github.com/yuniezzx/MarketSeer/internal/storage"
)

// CheckpointStore is an in-memory implementation of
// storage.CheckpointStore.
type CheckpointStore struct {
	mu         sync.RWMutex
	byEndpoint map[string]*domain.IngestCheckpoint
}

// NewCheckpointStore creates a new in-memory checkpoint store.
func NewCheckpointStore() *CheckpointStore {
	return &CheckpointStore{byEndpoint: make(map[string]*domain.IngestCheckpoint)}
}

// Save records the checkpoint, replacing any previous one for the
// same endpoint.
func (s *CheckpointStore) Save(_ context.Context, c *domain.IngestCheckpoint) error {
	if c == nil || c.Endpoint == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cpCopy := *c
	cpCopy.UpdatedAt = time.Now()
	s.byEndpoint[c.Endpoint] = &cpCopy
	return nil
}

// Get retrieves the checkpoint for an endpoint. Returns ErrNotFound
// if the endpoint has never completed a fetch.
func (s *CheckpointStore) Get(_ context.Context, endpoint string) (*domain.IngestCheckpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, exists := s.byEndpoint[endpoint]
	if !exists {
		return nil, storage.ErrNotFound
	}
	cpCopy := *c
	return &cpCopy, nil
}

// List retrieves all checkpoints ordered by endpoint ASC.
func (s *CheckpointStore) List(_ context.Context) ([]*domain.IngestCheckpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	checkpoints := make([]*domain.IngestCheckpoint, 0, len(s.byEndpoint))
	for _, c := range s.byEndpoint {
		cpCopy := *c
		checkpoints = append(checkpoints, &cpCopy)
	}
	sort.Slice(checkpoints, func(i, j int) bool { return checkpoints[i].Endpoint < checkpoints[j].Endpoint })
	return checkpoints, nil
}

var _ storage.CheckpointStore = (*CheckpointStore)(nil)
