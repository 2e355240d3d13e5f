package reconcile

import (
	"fmt"

	"github.com/yuniezzx/MarketSeer/internal/domain"
)

// SourceField names one provider column that can supply a canonical
// field, plus the conversion that normalizes its value.
type SourceField struct {
	Source   domain.Source
	Endpoint string
	Column   string
	Convert  ConvertFunc
}

// FieldRule declares how one canonical field is resolved: an ordered
// precedence chain of source columns, first non-nil value wins. The
// chain order is fixed configuration, so resolution is deterministic
// regardless of the order source tables arrive at runtime.
type FieldRule struct {
	Name     string // canonical field name, for diagnostics
	Required bool   // identity fields fail the reconcile when unresolvable
	Chain    []SourceField

	// Assign writes the converted value into the patch. The value has
	// the type the chain's Convert functions produce.
	Assign func(p *domain.StockProfilePatch, v any)

	// Validate optionally rejects a candidate value; rejected values
	// are treated as absent and the chain continues.
	Validate func(sym domain.Symbol, v any) error
}

// Schema is the full declarative mapping for one entity type.
type Schema struct {
	Rules []FieldRule
}

// Validate checks the schema at configuration time so a bad mapping
// fails startup, not an ingest run.
func (s *Schema) Validate() error {
	if len(s.Rules) == 0 {
		return fmt.Errorf("schema has no rules")
	}
	seen := make(map[string]bool, len(s.Rules))
	for i, rule := range s.Rules {
		if rule.Name == "" {
			return fmt.Errorf("rule %d: missing name", i)
		}
		if seen[rule.Name] {
			return fmt.Errorf("rule %q: duplicate canonical field", rule.Name)
		}
		seen[rule.Name] = true
		if rule.Assign == nil {
			return fmt.Errorf("rule %q: missing assign func", rule.Name)
		}
		if len(rule.Chain) == 0 {
			return fmt.Errorf("rule %q: empty precedence chain", rule.Name)
		}
		for j, sf := range rule.Chain {
			if !sf.Source.IsValid() {
				return fmt.Errorf("rule %q chain %d: unknown source %q", rule.Name, j, sf.Source)
			}
			if sf.Endpoint == "" {
				return fmt.Errorf("rule %q chain %d: missing endpoint", rule.Name, j)
			}
			if sf.Column == "" {
				return fmt.Errorf("rule %q chain %d: missing column", rule.Name, j)
			}
			if sf.Convert == nil {
				return fmt.Errorf("rule %q chain %d: missing convert func", rule.Name, j)
			}
		}
	}
	return nil
}
