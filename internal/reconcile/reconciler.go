package reconcile

import (
	"fmt"
	"log"

	"github.com/yuniezzx/MarketSeer/internal/adapter"
	"github.com/yuniezzx/MarketSeer/internal/domain"
)

// Reconciler folds the source tables of one symbol into a single
// profile patch following the schema's per-field precedence chains.
type Reconciler struct {
	schema *Schema
	logger *log.Logger
}

// NewReconciler validates the schema up front and returns the
// reconciler. A nil logger falls back to the default logger.
func NewReconciler(schema *Schema, logger *log.Logger) (*Reconciler, error) {
	if err := schema.Validate(); err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Reconciler{schema: schema, logger: logger}, nil
}

type tableKey struct {
	source   domain.Source
	endpoint string
}

// Reconcile resolves every schema field against the given tables.
// Malformed or rejected cells are logged and treated as absent, so a
// bad value in a high-precedence source falls through to the next
// source instead of poisoning the patch. The returned patch leaves
// unresolved optional fields nil; unresolved required fields fail
// with MissingRequiredError.
func (r *Reconciler) Reconcile(sym domain.Symbol, tables []*adapter.Table) (*domain.StockProfilePatch, error) {
	byKey := make(map[tableKey]adapter.Row, len(tables))
	for _, t := range tables {
		if row := t.First(); row != nil {
			byKey[tableKey{t.Source, t.Endpoint}] = row
		}
	}

	patch := &domain.StockProfilePatch{Exchange: string(sym.Exchange)}
	var missing []string

	for _, rule := range r.schema.Rules {
		v := r.resolve(sym, rule, byKey)
		if v == nil {
			if rule.Required {
				missing = append(missing, rule.Name)
			}
			continue
		}
		rule.Assign(patch, v)
	}

	if len(missing) > 0 {
		return nil, &MissingRequiredError{Symbol: sym.String(), Fields: missing}
	}
	return patch, nil
}

// resolve walks one precedence chain and returns the first usable
// value, or nil when every source is absent or malformed.
func (r *Reconciler) resolve(sym domain.Symbol, rule FieldRule, byKey map[tableKey]adapter.Row) any {
	for _, sf := range rule.Chain {
		row, ok := byKey[tableKey{sf.Source, sf.Endpoint}]
		if !ok {
			continue
		}
		cell, ok := row.Get(sf.Column)
		if !ok {
			continue
		}
		v, err := sf.Convert(cell)
		if err != nil {
			r.logger.Printf("reconcile %s: field %s: %s/%s column %q: %v",
				sym, rule.Name, sf.Source, sf.Endpoint, sf.Column, err)
			continue
		}
		if v == nil {
			continue
		}
		if rule.Validate != nil {
			if err := rule.Validate(sym, v); err != nil {
				r.logger.Printf("reconcile %s: field %s: %s/%s rejected: %v",
					sym, rule.Name, sf.Source, sf.Endpoint, err)
				continue
			}
		}
		return v
	}
	return nil
}
