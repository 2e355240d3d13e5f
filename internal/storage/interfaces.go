package storage

import (
	"context"

	"github.com/yuniezzx/MarketSeer/internal/domain"
)

// UpsertOutcome reports what an idempotent upsert did.
type UpsertOutcome string

const (
	// OutcomeCreated means the record did not exist and was inserted.
	OutcomeCreated UpsertOutcome = "created"
	// OutcomeUpdated means an existing record absorbed the new values.
	OutcomeUpdated UpsertOutcome = "updated"
)

// RawRecordStore provides access to the append-only raw archive.
// Rows are never updated or deleted by ingest paths; every fetch
// appends, even when the payload is byte-identical to a previous one.
type RawRecordStore interface {
	// Insert appends one raw payload and fills in its assigned ID.
	Insert(ctx context.Context, r *domain.RawRecord) error

	// GetByID retrieves one archived payload. Returns ErrNotFound if
	// not exists.
	GetByID(ctx context.Context, id int64) (*domain.RawRecord, error)

	// GetBySymbolSourceEndpoint retrieves the archive trail for one
	// (symbol, source, endpoint), ordered by fetched_at ASC.
	GetBySymbolSourceEndpoint(ctx context.Context, symbol string, source domain.Source, endpoint string) ([]*domain.RawRecord, error)

	// CountBySource reports archive depth per source, for run reports.
	CountBySource(ctx context.Context) (map[domain.Source]int64, error)

	// ResetSequence realigns the ID sequence with the highest stored
	// ID. An administrative operation, never called by ingest paths.
	ResetSequence(ctx context.Context) error
}

// StockProfileStore provides access to reconciled stock profiles.
type StockProfileStore interface {
	// Upsert applies a reconciled patch to the profile keyed by
	// patch.Code. Nil patch fields never overwrite stored values.
	Upsert(ctx context.Context, p *domain.StockProfilePatch) (UpsertOutcome, error)

	// GetByCode retrieves one profile. Returns ErrNotFound if not exists.
	GetByCode(ctx context.Context, code string) (*domain.StockProfile, error)

	// List retrieves all profiles ordered by code ASC.
	List(ctx context.Context) ([]*domain.StockProfile, error)
}

// ListEventStore provides access to Dragon-Tiger list events.
type ListEventStore interface {
	// Upsert inserts the event or refreshes the metrics of the row
	// with the same event_id. Events whose natural keys differ in any
	// component stay separate rows.
	Upsert(ctx context.Context, e *domain.ListEvent) (UpsertOutcome, error)

	// GetByID retrieves one event. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, eventID string) (*domain.ListEvent, error)

	// GetByDate retrieves all events for one YYYY-MM-DD date, ordered
	// by code ASC.
	GetByDate(ctx context.Context, date string) ([]*domain.ListEvent, error)

	// GetByCode retrieves all events for one instrument, ordered by
	// listed_date ASC.
	GetByCode(ctx context.Context, code string) ([]*domain.ListEvent, error)
}

// DailyBarStore provides access to daily OHLCV bars.
type DailyBarStore interface {
	// InsertBulk adds bars for one symbol. Re-inserting a
	// (symbol, trade_date) pair replaces the bar rather than
	// duplicating it.
	InsertBulk(ctx context.Context, bars []*domain.DailyBar) error

	// GetBySymbol retrieves all bars for a symbol, ordered by
	// trade_date ASC.
	GetBySymbol(ctx context.Context, symbol string) ([]*domain.DailyBar, error)

	// GetByDateRange retrieves bars for a symbol within
	// [start, end] (inclusive, YYYY-MM-DD).
	GetByDateRange(ctx context.Context, symbol, start, end string) ([]*domain.DailyBar, error)
}

// CheckpointStore tracks per-endpoint ingest high-water marks.
type CheckpointStore interface {
	// Save records the checkpoint, replacing any previous one for the
	// same endpoint.
	Save(ctx context.Context, c *domain.IngestCheckpoint) error

	// Get retrieves the checkpoint for an endpoint. Returns
	// ErrNotFound if the endpoint has never completed a fetch.
	Get(ctx context.Context, endpoint string) (*domain.IngestCheckpoint, error)

	// List retrieves all checkpoints ordered by endpoint ASC.
	List(ctx context.Context) ([]*domain.IngestCheckpoint, error)
}
