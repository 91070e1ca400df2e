// Package state holds the client-side view of the record store: a pure
// reducer over a closed set of actions and a Store that serializes dispatch.
package state

import "spendlog/internal/core"

// Action is a state transition request. The set of actions is closed.
type Action interface {
	isAction()
}

type (
	SetLoading struct{ Loading bool }

	// SetError records a user-facing message. An empty message clears the error.
	SetError struct{ Message string }

	SetExpenses struct{ Expenses []core.Expense }

	// AddExpense prepends a freshly created expense.
	AddExpense struct{ Expense core.Expense }

	DeleteExpense struct{ ID string }

	SetCategories struct{ Categories []core.Category }

	AddCategory struct{ Category core.Category }

	// SetSummaries replaces every period entry at once.
	SetSummaries struct{ Summaries map[core.Period]core.Summary }

	UpdateSummary struct {
		Period  core.Period
		Summary core.Summary
	}
)

func (SetLoading) isAction()    {}
func (SetError) isAction()      {}
func (SetExpenses) isAction()   {}
func (AddExpense) isAction()    {}
func (DeleteExpense) isAction() {}
func (SetCategories) isAction() {}
func (AddCategory) isAction()   {}
func (SetSummaries) isAction()  {}
func (UpdateSummary) isAction() {}
