package reconcile

import (
	"fmt"
	"strings"
)

// MissingRequiredError reports that identity fields could not be
// resolved from any source table. The record cannot be upserted.
type MissingRequiredError struct {
	Symbol string
	Fields []string
}

func (e *MissingRequiredError) Error() string {
	return fmt.Sprintf("reconcile %s: required fields unresolved: %s",
		e.Symbol, strings.Join(e.Fields, ", "))
}
