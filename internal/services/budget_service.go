package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"spendlog/internal/aggregate"
	"spendlog/internal/core"
	applog "spendlog/internal/log"
	"spendlog/internal/storage"
)

// ListBudgets returns every budget with its spending in the current month.
func (s *ExpenseService) ListBudgets(ctx context.Context) ([]core.BudgetStatus, error) {
	budgets, err := s.repo.ListBudgets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	if len(budgets) == 0 {
		return []core.BudgetStatus{}, nil
	}
	return s.withSpent(ctx, budgets...)
}

func (s *ExpenseService) CreateBudget(ctx context.Context, in core.NewBudget) (core.BudgetStatus, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return core.BudgetStatus{}, &ValidationError{Field: budgetField(err), Err: err}
	}
	created, err := s.repo.CreateBudget(ctx, in)
	if err != nil {
		return core.BudgetStatus{}, fmt.Errorf("create budget: %w", err)
	}
	s.logBudget(ctx, applog.OpCreate, created)
	return s.one(ctx, created)
}

// UpdateBudget replaces a budget; storage.ErrNotFound for unknown ids.
func (s *ExpenseService) UpdateBudget(ctx context.Context, id string, in core.NewBudget) (core.BudgetStatus, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return core.BudgetStatus{}, &ValidationError{Field: budgetField(err), Err: err}
	}
	updated, err := s.repo.UpdateBudget(ctx, id, in)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return core.BudgetStatus{}, err
		}
		return core.BudgetStatus{}, fmt.Errorf("update budget: %w", err)
	}
	s.logBudget(ctx, applog.OpUpdate, updated)
	return s.one(ctx, updated)
}

// DeleteBudget removes a budget; storage.ErrNotFound for unknown ids.
func (s *ExpenseService) DeleteBudget(ctx context.Context, id string) error {
	if err := s.repo.DeleteBudget(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return err
		}
		return fmt.Errorf("delete budget: %w", err)
	}
	s.logger.InfoContext(ctx, "Budget deleted", applog.FieldOperation, applog.OpDelete, applog.FieldBudgetID, id)
	return nil
}

func (s *ExpenseService) one(ctx context.Context, b core.Budget) (core.BudgetStatus, error) {
	statuses, err := s.withSpent(ctx, b)
	if err != nil {
		return core.BudgetStatus{}, err
	}
	return statuses[0], nil
}

// withSpent loads the month's expenses once and measures every budget against them.
func (s *ExpenseService) withSpent(ctx context.Context, budgets ...core.Budget) ([]core.BudgetStatus, error) {
	now := s.now()
	start, end := aggregate.Window(aggregate.BudgetPeriod, now)
	expenses, err := s.repo.ListExpenses(ctx, core.ExpenseFilter{
		StartDate: start,
		EndDate:   end.Add(-time.Nanosecond),
	})
	if err != nil {
		return nil, fmt.Errorf("list expenses for budgets: %w", err)
	}
	return aggregate.BudgetStatuses(budgets, expenses, now), nil
}

func (s *ExpenseService) logBudget(ctx context.Context, op string, b core.Budget) {
	s.logger.InfoContext(ctx, "Budget saved",
		applog.FieldOperation, op,
		applog.FieldBudgetID, b.ID,
		applog.FieldAmountCents, b.Amount.Cents,
		applog.FieldCategory, b.Category)
}

func budgetField(err error) string {
	switch {
	case errors.Is(err, core.ErrInvalidAmount):
		return "amount"
	case errors.Is(err, core.ErrCategoryTooLong):
		return "category"
	default:
		return "name"
	}
}
