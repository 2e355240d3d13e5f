package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/yuniezzx/MarketSeer/internal/domain"
	"github.com/yuniezzx/MarketSeer/internal/storage"
)

// StockProfileStore implements storage.StockProfileStore using
// PostgreSQL. There is exactly one row per code; re-ingesting applies
// patches idempotently.
type StockProfileStore struct {
	pool *Pool
}

// NewStockProfileStore creates a new StockProfileStore.
func NewStockProfileStore(pool *Pool) *StockProfileStore {
	return &StockProfileStore{pool: pool}
}

// Compile-time interface check.
var _ storage.StockProfileStore = (*StockProfileStore)(nil)

// Upsert applies a reconciled patch keyed by code. COALESCE keeps the
// stored value whenever the patch carries nil, so a source outage can
// never blank a previously known field. updated_at moves on every
// upsert, created_at only on insert.
func (s *StockProfileStore) Upsert(ctx context.Context, p *domain.StockProfilePatch) (storage.UpsertOutcome, error) {
	if p == nil || p.Code == "" || p.Name == "" {
		return "", storage.ErrInvalidInput
	}

	query := `
		INSERT INTO stock_profiles (
			code, name, exchange, full_name, market, industry_code, industry,
			list_date, establish_date, main_business, operating_scope, status,
			total_shares, float_shares, total_market_cap, float_market_cap
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (code) DO UPDATE SET
			name             = EXCLUDED.name,
			exchange         = EXCLUDED.exchange,
			full_name        = COALESCE(EXCLUDED.full_name, stock_profiles.full_name),
			market           = COALESCE(EXCLUDED.market, stock_profiles.market),
			industry_code    = COALESCE(EXCLUDED.industry_code, stock_profiles.industry_code),
			industry         = COALESCE(EXCLUDED.industry, stock_profiles.industry),
			list_date        = COALESCE(EXCLUDED.list_date, stock_profiles.list_date),
			establish_date   = COALESCE(EXCLUDED.establish_date, stock_profiles.establish_date),
			main_business    = COALESCE(EXCLUDED.main_business, stock_profiles.main_business),
			operating_scope  = COALESCE(EXCLUDED.operating_scope, stock_profiles.operating_scope),
			status           = COALESCE(EXCLUDED.status, stock_profiles.status),
			total_shares     = COALESCE(EXCLUDED.total_shares, stock_profiles.total_shares),
			float_shares     = COALESCE(EXCLUDED.float_shares, stock_profiles.float_shares),
			total_market_cap = COALESCE(EXCLUDED.total_market_cap, stock_profiles.total_market_cap),
			float_market_cap = COALESCE(EXCLUDED.float_market_cap, stock_profiles.float_market_cap),
			updated_at       = NOW()
		RETURNING (xmax = 0) AS inserted
	`

	var inserted bool
	err := s.pool.QueryRow(ctx, query,
		p.Code,
		p.Name,
		p.Exchange,
		p.FullName,
		p.Market,
		p.IndustryCode,
		p.Industry,
		p.ListDate,
		p.EstablishDate,
		p.MainBusiness,
		p.Scope,
		p.Status,
		p.TotalShares,
		p.FloatShares,
		p.TotalMarketCap,
		p.FloatMarketCap,
	).Scan(&inserted)
	if err != nil {
		return "", fmt.Errorf("upsert stock profile: %w", err)
	}
	if inserted {
		return storage.OutcomeCreated, nil
	}
	return storage.OutcomeUpdated, nil
}

// GetByCode retrieves one profile. Returns ErrNotFound if not exists.
func (s *StockProfileStore) GetByCode(ctx context.Context, code string) (*domain.StockProfile, error) {
	query := selectProfile + ` WHERE code = $1`

	row := s.pool.QueryRow(ctx, query, code)
	p, err := scanStockProfile(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get stock profile by code: %w", err)
	}
	return p, nil
}

// List retrieves all profiles ordered by code ASC.
func (s *StockProfileStore) List(ctx context.Context) ([]*domain.StockProfile, error) {
	rows, err := s.pool.Query(ctx, selectProfile+` ORDER BY code ASC`)
	if err != nil {
		return nil, fmt.Errorf("list stock profiles: %w", err)
	}
	defer rows.Close()

	var profiles []*domain.StockProfile
	for rows.Next() {
		p, err := scanStockProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stock profiles: %w", err)
	}
	return profiles, nil
}

const selectProfile = `
	SELECT code, name, exchange, full_name, market, industry_code, industry,
	       list_date, establish_date, main_business, operating_scope, status,
	       total_shares, float_shares, total_market_cap, float_market_cap,
	       created_at, updated_at
	FROM stock_profiles
`

// scanStockProfile scans a single row into StockProfile.
func scanStockProfile(row pgx.Row) (*domain.StockProfile, error) {
	var p domain.StockProfile

	err := row.Scan(
		&p.Code,
		&p.Name,
		&p.Exchange,
		&p.FullName,
		&p.Market,
		&p.IndustryCode,
		&p.Industry,
		&p.ListDate,
		&p.EstablishDate,
		&p.MainBusiness,
		&p.Scope,
		&p.Status,
		&p.TotalShares,
		&p.FloatShares,
		&p.TotalMarketCap,
		&p.FloatMarketCap,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
