package stub

import (
	"context"
	"sync"

	"github.com/yuniezzx/MarketSeer/internal/adapter"
	"github.com/yuniezzx/MarketSeer/internal/domain"
)

// call identifies one scripted fetch.
type call struct {
	ref  string // plain code, "" for non-instrument endpoints
	kind domain.EndpointKind
}

// Adapter returns scripted tables or errors for testing the
// orchestrator. Implements adapter.Adapter.
type Adapter struct {
	mu         sync.Mutex
	source     domain.Source
	tables     map[call][]*adapter.Table
	errs       map[call]error
	fails      map[call]int  // remaining failures before tables are served
	joint      map[call]bool // tables and error returned together
	FetchCount int
}

// New creates an empty stub adapter for the given source.
func New(source domain.Source) *Adapter {
	return &Adapter{
		source: source,
		tables: make(map[call][]*adapter.Table),
		errs:   make(map[call]error),
		fails:  make(map[call]int),
		joint:  make(map[call]bool),
	}
}

var _ adapter.Adapter = (*Adapter)(nil)

func (a *Adapter) Source() domain.Source {
	return a.source
}

// Script registers the tables to return for a (code, kind) pair.
// Use code "" for endpoints that are not instrument-scoped.
func (a *Adapter) Script(code string, kind domain.EndpointKind, tables ...*adapter.Table) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.tables[call{code, kind}] = tables
}

// ScriptError registers an error to return for a (code, kind) pair.
func (a *Adapter) ScriptError(code string, kind domain.EndpointKind, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.errs[call{code, kind}] = err
}

// ScriptWithError registers tables and an error returned together for
// a (code, kind) pair, modeling a provider that answered with a
// payload the adapter could not parse into rows.
func (a *Adapter) ScriptWithError(code string, kind domain.EndpointKind, err error, tables ...*adapter.Table) {
	a.mu.Lock()
	defer a.mu.Unlock()
	key := call{code, kind}
	a.tables[key] = tables
	a.errs[key] = err
	a.joint[key] = true
}

// FailFirst makes the first n fetches for a (code, kind) pair return
// err before the scripted tables are served, for retry testing.
func (a *Adapter) FailFirst(code string, kind domain.EndpointKind, n int, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.fails[call{code, kind}] = n
	a.errs[call{code, kind}] = err
}

// Fetch serves the scripted response. Unscripted calls return an
// empty table set.
func (a *Adapter) Fetch(_ context.Context, ref domain.Symbol, kind domain.EndpointKind, _ adapter.Params) ([]*adapter.Table, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.FetchCount++
	key := call{ref.Code, kind}

	if n := a.fails[key]; n > 0 {
		a.fails[key] = n - 1
		return nil, a.errs[key]
	}
	if a.joint[key] {
		return a.tables[key], a.errs[key]
	}
	if err, ok := a.errs[key]; ok && a.failsExhausted(key) {
		if _, scripted := a.tables[key]; !scripted {
			return nil, err
		}
	}
	return a.tables[key], nil
}

// failsExhausted reports whether the scripted failure budget for key
// has been used up (always true when none was set).
func (a *Adapter) failsExhausted(key call) bool {
	return a.fails[key] == 0
}

// Table is a convenience constructor for scripted metadata tables.
func Table(source domain.Source, endpoint string, kind domain.EndpointKind, rows ...adapter.Row) *adapter.Table {
	return &adapter.Table{
		Source:   source,
		Endpoint: endpoint,
		Kind:     kind,
		Raw:      `{"stub":true}`,
		Rows:     rows,
	}
}
