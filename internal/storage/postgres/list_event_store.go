package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/yuniezzx/MarketSeer/internal/domain"
	"github.com/yuniezzx/MarketSeer/internal/storage"
)

// ListEventStore implements storage.ListEventStore using PostgreSQL.
// Rows are keyed by the deterministic event hash, so re-ingesting a
// day refreshes metrics in place while events that differ in reason
// or analysis remain separate rows.
type ListEventStore struct {
	pool *Pool
}

// NewListEventStore creates a new ListEventStore.
func NewListEventStore(pool *Pool) *ListEventStore {
	return &ListEventStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ListEventStore = (*ListEventStore)(nil)

// Upsert inserts the event or refreshes the row with the same event_id.
func (s *ListEventStore) Upsert(ctx context.Context, e *domain.ListEvent) (storage.UpsertOutcome, error) {
	if e == nil || e.EventID == "" || e.Code == "" || e.ListedDate == "" {
		return "", storage.ErrInvalidInput
	}

	query := `
		INSERT INTO list_events (
			event_id, code, name, listed_date, reasons, analysis,
			close_price, change_percent, turnover_rate, circulating_mktcap,
			buy_amount, sell_amount, net_amount, trade_amount, market_total,
			net_ratio, trade_ratio, source
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		ON CONFLICT (event_id) DO UPDATE SET
			name               = EXCLUDED.name,
			close_price        = COALESCE(EXCLUDED.close_price, list_events.close_price),
			change_percent     = COALESCE(EXCLUDED.change_percent, list_events.change_percent),
			turnover_rate      = COALESCE(EXCLUDED.turnover_rate, list_events.turnover_rate),
			circulating_mktcap = COALESCE(EXCLUDED.circulating_mktcap, list_events.circulating_mktcap),
			buy_amount         = COALESCE(EXCLUDED.buy_amount, list_events.buy_amount),
			sell_amount        = COALESCE(EXCLUDED.sell_amount, list_events.sell_amount),
			net_amount         = COALESCE(EXCLUDED.net_amount, list_events.net_amount),
			trade_amount       = COALESCE(EXCLUDED.trade_amount, list_events.trade_amount),
			market_total       = COALESCE(EXCLUDED.market_total, list_events.market_total),
			net_ratio          = COALESCE(EXCLUDED.net_ratio, list_events.net_ratio),
			trade_ratio        = COALESCE(EXCLUDED.trade_ratio, list_events.trade_ratio),
			source             = EXCLUDED.source,
			updated_at         = NOW()
		RETURNING (xmax = 0) AS inserted
	`

	var inserted bool
	err := s.pool.QueryRow(ctx, query,
		e.EventID,
		e.Code,
		e.Name,
		e.ListedDate,
		e.Reasons,
		e.Analysis,
		e.ClosePrice,
		e.ChangePercent,
		e.TurnoverRate,
		e.CirculatingMktCap,
		e.BuyAmount,
		e.SellAmount,
		e.NetAmount,
		e.TradeAmount,
		e.MarketTotal,
		e.NetRatio,
		e.TradeRatio,
		string(e.Source),
	).Scan(&inserted)
	if err != nil {
		return "", fmt.Errorf("upsert list event: %w", err)
	}
	if inserted {
		return storage.OutcomeCreated, nil
	}
	return storage.OutcomeUpdated, nil
}

// GetByID retrieves one event. Returns ErrNotFound if not exists.
func (s *ListEventStore) GetByID(ctx context.Context, eventID string) (*domain.ListEvent, error) {
	row := s.pool.QueryRow(ctx, selectListEvent+` WHERE event_id = $1`, eventID)
	e, err := scanListEvent(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get list event by id: %w", err)
	}
	return e, nil
}

// GetByDate retrieves all events for one date, ordered by code ASC.
func (s *ListEventStore) GetByDate(ctx context.Context, date string) ([]*domain.ListEvent, error) {
	return s.query(ctx, selectListEvent+` WHERE listed_date = $1 ORDER BY code ASC, event_id ASC`, date)
}

// GetByCode retrieves all events for one instrument, ordered by
// listed_date ASC.
func (s *ListEventStore) GetByCode(ctx context.Context, code string) ([]*domain.ListEvent, error) {
	return s.query(ctx, selectListEvent+` WHERE code = $1 ORDER BY listed_date ASC, event_id ASC`, code)
}

func (s *ListEventStore) query(ctx context.Context, query string, args ...any) ([]*domain.ListEvent, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query list events: %w", err)
	}
	defer rows.Close()

	var events []*domain.ListEvent
	for rows.Next() {
		e, err := scanListEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan list event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate list events: %w", err)
	}
	return events, nil
}

const selectListEvent = `
	SELECT event_id, code, name, listed_date, reasons, analysis,
	       close_price, change_percent, turnover_rate, circulating_mktcap,
	       buy_amount, sell_amount, net_amount, trade_amount, market_total,
	       net_ratio, trade_ratio, source, created_at, updated_at
	FROM list_events
`

// scanListEvent scans a single row into ListEvent.
func scanListEvent(row pgx.Row) (*domain.ListEvent, error) {
	var e domain.ListEvent
	var source string

	err := row.Scan(
		&e.EventID,
		&e.Code,
		&e.Name,
		&e.ListedDate,
		&e.Reasons,
		&e.Analysis,
		&e.ClosePrice,
		&e.ChangePercent,
		&e.TurnoverRate,
		&e.CirculatingMktCap,
		&e.BuyAmount,
		&e.SellAmount,
		&e.NetAmount,
		&e.TradeAmount,
		&e.MarketTotal,
		&e.NetRatio,
		&e.TradeRatio,
		&source,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.Source = domain.Source(source)
	return &e, nil
}
