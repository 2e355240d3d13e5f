package postgres

import (
	"context"
	"fmt"

	"github.com/yuniezzx/MarketSeer/internal/domain"
	"github.com/yuniezzx/MarketSeer/internal/storage"
)

// CheckpointStore implements storage.CheckpointStore using PostgreSQL.
type CheckpointStore struct {
	pool *Pool
}

// NewCheckpointStore creates a new CheckpointStore.
func NewCheckpointStore(pool *Pool) *CheckpointStore {
	return &CheckpointStore{pool: pool}
}

// Compile-time interface check.
var _ storage.CheckpointStore = (*CheckpointStore)(nil)

// Save records the checkpoint, replacing any previous one for the
// same endpoint.
func (s *CheckpointStore) Save(ctx context.Context, c *domain.IngestCheckpoint) error {
	if c == nil || c.Endpoint == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO ingest_checkpoints (endpoint, last_fetched_at, params)
		VALUES ($1, $2, $3)
		ON CONFLICT (endpoint) DO UPDATE SET
			last_fetched_at = EXCLUDED.last_fetched_at,
			params          = EXCLUDED.params,
			updated_at      = NOW()
	`

	if _, err := s.pool.Exec(ctx, query, c.Endpoint, c.LastFetchedAt, c.Params); err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}
	return nil
}

// Get retrieves the checkpoint for an endpoint. Returns ErrNotFound
// if the endpoint has never completed a fetch.
func (s *CheckpointStore) Get(ctx context.Context, endpoint string) (*domain.IngestCheckpoint, error) {
	query := `
		SELECT endpoint, last_fetched_at, params, updated_at
		FROM ingest_checkpoints
		WHERE endpoint = $1
	`

	var c domain.IngestCheckpoint
	err := s.pool.QueryRow(ctx, query, endpoint).Scan(&c.Endpoint, &c.LastFetchedAt, &c.Params, &c.UpdatedAt)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get checkpoint: %w", err)
	}
	return &c, nil
}

// List retrieves all checkpoints ordered by endpoint ASC.
func (s *CheckpointStore) List(ctx context.Context) ([]*domain.IngestCheckpoint, error) {
	query := `
		SELECT endpoint, last_fetched_at, params, updated_at
		FROM ingest_checkpoints
		ORDER BY endpoint ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list checkpoints: %w", err)
	}
	defer rows.Close()

	var checkpoints []*domain.IngestCheckpoint
	for rows.Next() {
		var c domain.IngestCheckpoint
		if err := rows.Scan(&c.Endpoint, &c.LastFetchedAt, &c.Params, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan checkpoint: %w", err)
		}
		checkpoints = append(checkpoints, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate checkpoints: %w", err)
	}
	return checkpoints, nil
}
