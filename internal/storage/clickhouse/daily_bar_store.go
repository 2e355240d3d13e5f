package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/yuniezzx/MarketSeer/internal/domain"
	"github.com/yuniezzx/MarketSeer/internal/storage"
)

// DailyBarStore implements storage.DailyBarStore using ClickHouse.
// The daily_bars table is a ReplacingMergeTree keyed by
// (symbol, trade_date), so re-ingesting a date range is idempotent:
// the newest inserted version of a bar wins at merge time and reads
// use FINAL to collapse not-yet-merged duplicates.
type DailyBarStore struct {
	conn *Conn
}

// NewDailyBarStore creates a new DailyBarStore.
func NewDailyBarStore(conn *Conn) *DailyBarStore {
	return &DailyBarStore{conn: conn}
}

// Compile-time interface check.
var _ storage.DailyBarStore = (*DailyBarStore)(nil)

const dateLayout = "2006-01-02"

// InsertBulk adds bars in one batch.
func (s *DailyBarStore) InsertBulk(ctx context.Context, bars []*domain.DailyBar) error {
	if len(bars) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO daily_bars (
			symbol, trade_date, source, open, high, low, close,
			volume, amount, turnover_rate, pct_change, pre_close
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare daily bar batch: %w", err)
	}

	for _, b := range bars {
		if b.Symbol == "" || b.TradeDate == "" {
			return storage.ErrInvalidInput
		}
		tradeDate, err := time.Parse(dateLayout, b.TradeDate)
		if err != nil {
			return fmt.Errorf("daily bar %s: bad trade date %q: %w", b.Symbol, b.TradeDate, err)
		}
		if err := batch.Append(
			b.Symbol,
			tradeDate,
			string(b.Source),
			b.Open,
			b.High,
			b.Low,
			b.Close,
			b.Volume,
			b.Amount,
			b.TurnoverRate,
			b.PctChange,
			b.PreClose,
		); err != nil {
			return fmt.Errorf("append daily bar: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send daily bar batch: %w", err)
	}
	return nil
}

// GetBySymbol retrieves all bars for a symbol, ordered by trade_date ASC.
func (s *DailyBarStore) GetBySymbol(ctx context.Context, symbol string) ([]*domain.DailyBar, error) {
	query := selectDailyBar + `
		WHERE symbol = ?
		ORDER BY trade_date ASC
	`
	return s.query(ctx, query, symbol)
}

// GetByDateRange retrieves bars for a symbol within [start, end]
// (inclusive, YYYY-MM-DD).
func (s *DailyBarStore) GetByDateRange(ctx context.Context, symbol, start, end string) ([]*domain.DailyBar, error) {
	startDate, err := time.Parse(dateLayout, start)
	if err != nil {
		return nil, fmt.Errorf("bad start date %q: %w", start, err)
	}
	endDate, err := time.Parse(dateLayout, end)
	if err != nil {
		return nil, fmt.Errorf("bad end date %q: %w", end, err)
	}

	query := selectDailyBar + `
		WHERE symbol = ? AND trade_date >= ? AND trade_date <= ?
		ORDER BY trade_date ASC
	`
	return s.query(ctx, query, symbol, startDate, endDate)
}

const selectDailyBar = `
	SELECT symbol, trade_date, source, open, high, low, close,
	       volume, amount, turnover_rate, pct_change, pre_close
	FROM daily_bars FINAL
`

func (s *DailyBarStore) query(ctx context.Context, query string, args ...any) ([]*domain.DailyBar, error) {
	rows, err := s.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query daily bars: %w", err)
	}
	defer rows.Close()

	var bars []*domain.DailyBar
	for rows.Next() {
		var b domain.DailyBar
		var tradeDate time.Time
		var source string
		if err := rows.Scan(
			&b.Symbol,
			&tradeDate,
			&source,
			&b.Open,
			&b.High,
			&b.Low,
			&b.Close,
			&b.Volume,
			&b.Amount,
			&b.TurnoverRate,
			&b.PctChange,
			&b.PreClose,
		); err != nil {
			return nil, fmt.Errorf("scan daily bar: %w", err)
		}
		b.TradeDate = tradeDate.Format(dateLayout)
		b.Source = domain.Source(source)
		bars = append(bars, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate daily bars: %w", err)
	}
	return bars, nil
}
