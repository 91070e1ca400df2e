// Package storage persists expenses, categories and budgets for the record
// store server.
package storage

import (
	"context"
	"errors"

	"spendlog/internal/core"
)

var ErrNotFound = errors.New("record not found")

// Repository is the durable store behind the HTTP API. Implementations are
// safe for concurrent use. ListExpenses returns newest first.
type Repository interface {
	CreateExpense(ctx context.Context, e core.NewExpense) (core.Expense, error)
	GetExpense(ctx context.Context, id string) (core.Expense, error)
	ListExpenses(ctx context.Context, filter core.ExpenseFilter) ([]core.Expense, error)
	DeleteExpense(ctx context.Context, id string) error

	ListCategories(ctx context.Context) ([]core.Category, error)
	// CreateCategory fails with core.ErrDuplicateCategory when the name is taken.
	CreateCategory(ctx context.Context, c core.NewCategory) (core.Category, error)
	CountCategories(ctx context.Context) (int, error)

	// ListBudgets returns budgets in creation order.
	ListBudgets(ctx context.Context) ([]core.Budget, error)
	CreateBudget(ctx context.Context, b core.NewBudget) (core.Budget, error)
	// UpdateBudget replaces every field but the id; ErrNotFound when id is unknown.
	UpdateBudget(ctx context.Context, id string, b core.NewBudget) (core.Budget, error)
	DeleteBudget(ctx context.Context, id string) error

	Ping(ctx context.Context) error
	Close() error
}
