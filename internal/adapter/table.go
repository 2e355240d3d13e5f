package adapter

import (
	"strconv"
	"time"

	"github.com/yuniezzx/MarketSeer/internal/domain"
)

// Row is one record with provider-native column names. Values keep
// whatever shape the provider's JSON gave them (string, float64,
// nil); normalization happens in the reconcile layer.
type Row map[string]any

// Table is the uniform result of one adapter call. Raw carries the
// provider response verbatim for archival; Rows carry the parsed
// records. An empty Rows slice is a valid "no data" result, not an
// error.
type Table struct {
	Source    domain.Source
	Endpoint  string
	Kind      domain.EndpointKind
	Raw       string // verbatim response body, original characters preserved
	Rows      []Row
	FetchedAt time.Time
}

// rawOnly wraps a payload that arrived on an error branch in a
// row-less table so the caller can still archive it. Returns nil for
// an empty payload (nothing arrived, nothing to archive).
func rawOnly(source domain.Source, endpoint string, kind domain.EndpointKind, raw string) *Table {
	if raw == "" {
		return nil
	}
	return &Table{
		Source:    source,
		Endpoint:  endpoint,
		Kind:      kind,
		Raw:       raw,
		FetchedAt: time.Now(),
	}
}

// asTables lifts a single-table fetch result into the Fetch return
// shape, dropping a nil table.
func asTables(t *Table) []*Table {
	if t == nil {
		return nil
	}
	return []*Table{t}
}

// First returns the first row, or nil for an empty table. Metadata
// endpoints produce single-row tables.
func (t *Table) First() Row {
	if t == nil || len(t.Rows) == 0 {
		return nil
	}
	return t.Rows[0]
}

// Get returns the named cell. Empty strings and nils count as absent.
func (r Row) Get(column string) (any, bool) {
	v, ok := r[column]
	if !ok || v == nil {
		return nil, false
	}
	if s, isStr := v.(string); isStr && s == "" {
		return nil, false
	}
	return v, true
}

// Str returns the named cell rendered as a string, "" when absent.
func (r Row) Str(column string) string {
	v, ok := r.Get(column)
	if !ok {
		return ""
	}
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(x, 10)
	default:
		return ""
	}
}

// Float returns the named cell as float64 when it is numeric or a
// numeric string.
func (r Row) Float(column string) (float64, bool) {
	v, ok := r.Get(column)
	if !ok {
		return 0, false
	}
	switch x := v.(type) {
	case float64:
		return x, true
	case int64:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
