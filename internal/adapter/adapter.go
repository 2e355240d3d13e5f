// Package adapter provides one client per external market-data
// provider behind a uniform capability contract. Adapters reshape
// canonical symbols into the provider's expected format, parse the
// response into a Table, and classify failures as transient or
// permanent. They never touch storage.
package adapter

import (
	"context"
	"fmt"

	"github.com/yuniezzx/MarketSeer/internal/domain"
)

// Params are optional provider-specific query parameters, e.g. a
// date range for daily bars.
type Params map[string]string

// Common parameter keys understood by the adapters.
const (
	ParamStartDate = "start_date" // YYYY-MM-DD
	ParamEndDate   = "end_date"   // YYYY-MM-DD
	ParamTradeDate = "trade_date" // YYYY-MM-DD, for list-event queries
)

// Adapter is the uniform provider contract. ref may be the zero
// Symbol for endpoints that are not instrument-scoped (the
// Dragon-Tiger list is keyed by date, not symbol).
//
// A provider may serve one capability from several endpoints (akshare
// consults both eastmoney and xueqiu for metadata); Fetch returns one
// Table per endpoint that answered. Tables and a non-nil error can
// coexist: the tables are what succeeded, the error is the first
// endpoint failure. The caller archives what arrived and records the
// failure; re-fetching an already-archived endpoint is harmless
// because the archive is append-only.
//
// Errors are always *FetchError; an empty table is success.
type Adapter interface {
	Source() domain.Source
	Fetch(ctx context.Context, ref domain.Symbol, kind domain.EndpointKind, params Params) ([]*Table, error)
}

// New constructs the adapter for a provider. Tushare needs an API
// token; pass it via opts on the HTTP client's owner (see
// NewTushare).
func New(source domain.Source, client *HTTPClient) (Adapter, error) {
	switch source {
	case domain.SourceAkshare:
		return NewAkshare(client), nil
	case domain.SourceEfinance:
		return NewEfinance(client), nil
	case domain.SourceYfinance:
		return NewYfinance(client), nil
	case domain.SourceTushare:
		return nil, fmt.Errorf("tushare adapter requires a token, use NewTushare")
	default:
		return nil, fmt.Errorf("unknown source %q", source)
	}
}

// unsupported is the shared permanent error for a capability a
// provider does not offer.
func unsupported(source domain.Source, kind domain.EndpointKind) *FetchError {
	return NewPermanent(source, string(kind), fmt.Sprintf("endpoint kind %q not supported by %s", kind, source), nil)
}
