// Package sheets defines the outbound port for mirroring expenses into a
// spreadsheet. The mirror is eventually consistent with the record store:
// it is fed by expense events, never read back by the server.
package sheets

import (
	"context"

	"spendlog/internal/core"
)

// ExpenseMirror keeps one row per expense, keyed by expense id.
//
// Both operations are idempotent so redelivered events are harmless:
// appending an id that already has a row returns the existing reference,
// deleting an unknown id is a no-op.
type ExpenseMirror interface {
	Append(ctx context.Context, e core.Expense) (rowRef string, err error)
	Delete(ctx context.Context, id string) error
}

// Row renders e in mirror column order: id, date, description, amount, category.
func Row(e core.Expense) []any {
	return []any{e.ID, e.Date.Format("2006-01-02"), e.Description, e.Amount.String(), e.Category}
}
