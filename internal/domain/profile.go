package domain

import "time"

// StockProfile is the reconciled basic-info record for one
// instrument: exactly one row per code. Every non-identity field was
// supplied by at least one source during the last successful
// reconciliation.
// Corresponds to the stock_profiles table in PostgreSQL.
type StockProfile struct {
	Code     string // six-digit instrument code, unique
	Name     string // short name, e.g. 恒宝股份
	Exchange string // SH | SZ | BJ

	FullName     *string    // registered company name
	Market       *string    // market segment, e.g. 深A
	IndustryCode *string    // industry classification code
	Industry     *string    // industry name
	ListDate     *time.Time // listing date
	EstablishDate *time.Time // company establishment date
	MainBusiness *string    // main operation business
	Scope        *string    // registered operating scope
	Status       *string    // 上市 / 退市 / 停牌

	TotalShares    *int64   // total share count
	FloatShares    *int64   // circulating share count
	TotalMarketCap *float64 // total market cap, CNY
	FloatMarketCap *float64 // circulating market cap, CNY

	CreatedAt time.Time
	UpdatedAt time.Time
}

// StockProfilePatch is the output of one reconciliation: the set of
// canonical fields the consulted sources actually supplied. Nil means
// "no source had a value" and must leave any previously stored value
// untouched on upsert.
type StockProfilePatch struct {
	Code     string // required identity field
	Name     string // required identity field
	Exchange string

	FullName     *string
	Market       *string
	IndustryCode *string
	Industry     *string
	ListDate     *time.Time
	EstablishDate *time.Time
	MainBusiness *string
	Scope        *string
	Status       *string

	TotalShares    *int64
	FloatShares    *int64
	TotalMarketCap *float64
	FloatMarketCap *float64
}
