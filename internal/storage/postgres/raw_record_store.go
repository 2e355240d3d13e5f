package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/yuniezzx/MarketSeer/internal/domain"
	"github.com/yuniezzx/MarketSeer/internal/storage"
)

// RawRecordStore implements storage.RawRecordStore using PostgreSQL.
// The raw_records table is the verbatim audit trail: ingest only ever
// appends to it.
type RawRecordStore struct {
	pool *Pool
}

// NewRawRecordStore creates a new RawRecordStore.
func NewRawRecordStore(pool *Pool) *RawRecordStore {
	return &RawRecordStore{pool: pool}
}

// Compile-time interface check.
var _ storage.RawRecordStore = (*RawRecordStore)(nil)

// Insert appends one raw payload and fills in its assigned ID.
func (s *RawRecordStore) Insert(ctx context.Context, r *domain.RawRecord) error {
	if r == nil || r.Source == "" || r.Endpoint == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO raw_records (
			symbol, source, endpoint, kind, payload, fetched_at
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := s.pool.QueryRow(ctx, query,
		r.Symbol,
		string(r.Source),
		r.Endpoint,
		string(r.Kind),
		r.Payload,
		r.FetchedAt,
	).Scan(&r.ID)
	if err != nil {
		return fmt.Errorf("insert raw record: %w", err)
	}
	return nil
}

// GetByID retrieves one archived payload. Returns ErrNotFound if not exists.
func (s *RawRecordStore) GetByID(ctx context.Context, id int64) (*domain.RawRecord, error) {
	query := `
		SELECT id, symbol, source, endpoint, kind, payload, fetched_at
		FROM raw_records
		WHERE id = $1
	`

	row := s.pool.QueryRow(ctx, query, id)
	r, err := scanRawRecord(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get raw record by id: %w", err)
	}
	return r, nil
}

// GetBySymbolSourceEndpoint retrieves the archive trail for one
// (symbol, source, endpoint), ordered by fetched_at ASC.
func (s *RawRecordStore) GetBySymbolSourceEndpoint(ctx context.Context, symbol string, source domain.Source, endpoint string) ([]*domain.RawRecord, error) {
	query := `
		SELECT id, symbol, source, endpoint, kind, payload, fetched_at
		FROM raw_records
		WHERE symbol = $1 AND source = $2 AND endpoint = $3
		ORDER BY fetched_at ASC, id ASC
	`

	rows, err := s.pool.Query(ctx, query, symbol, string(source), endpoint)
	if err != nil {
		return nil, fmt.Errorf("get raw records: %w", err)
	}
	defer rows.Close()

	var records []*domain.RawRecord
	for rows.Next() {
		r, err := scanRawRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan raw record: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate raw records: %w", err)
	}
	return records, nil
}

// CountBySource reports archive depth per source.
func (s *RawRecordStore) CountBySource(ctx context.Context) (map[domain.Source]int64, error) {
	query := `
		SELECT source, COUNT(*)
		FROM raw_records
		GROUP BY source
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("count raw records: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.Source]int64)
	for rows.Next() {
		var source string
		var n int64
		if err := rows.Scan(&source, &n); err != nil {
			return nil, fmt.Errorf("scan raw record count: %w", err)
		}
		counts[domain.Source(source)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate raw record counts: %w", err)
	}
	return counts, nil
}

// ResetSequence realigns the BIGSERIAL sequence with the highest
// stored ID, after a manual import or restore left them apart.
func (s *RawRecordStore) ResetSequence(ctx context.Context) error {
	query := `
		SELECT setval(
			pg_get_serial_sequence('raw_records', 'id'),
			COALESCE(MAX(id), 0) + 1,
			false
		)
		FROM raw_records
	`

	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("reset raw record sequence: %w", err)
	}
	return nil
}

// scanRawRecord scans a single row into RawRecord.
func scanRawRecord(row pgx.Row) (*domain.RawRecord, error) {
	var r domain.RawRecord
	var source, kind string

	err := row.Scan(
		&r.ID,
		&r.Symbol,
		&source,
		&r.Endpoint,
		&kind,
		&r.Payload,
		&r.FetchedAt,
	)
	if err != nil {
		return nil, err
	}
	r.Source = domain.Source(source)
	r.Kind = domain.EndpointKind(kind)
	return &r, nil
}
