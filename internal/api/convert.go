package api

import (
	"time"

	"spendlog/internal/core"
)

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func FromExpense(e core.Expense) Expense {
	return Expense{
		ID:          e.ID,
		Amount:      Amount(e.Amount),
		Category:    e.Category,
		Description: optional(e.Description),
		Date:        Timestamp(e.Date),
	}
}

func (e Expense) Core() core.Expense {
	return core.Expense{
		ID:          e.ID,
		Amount:      core.Money(e.Amount),
		Category:    e.Category,
		Description: deref(e.Description),
		Date:        e.Date.Time(),
	}
}

func FromExpenses(in []core.Expense) []Expense {
	out := make([]Expense, 0, len(in))
	for _, e := range in {
		out = append(out, FromExpense(e))
	}
	return out
}

func ToExpenses(in []Expense) []core.Expense {
	out := make([]core.Expense, 0, len(in))
	for _, e := range in {
		out = append(out, e.Core())
	}
	return out
}

func FromNewExpense(e core.NewExpense) NewExpense {
	out := NewExpense{
		Amount:      Amount(e.Amount),
		Category:    e.Category,
		Description: optional(e.Description),
	}
	if !e.Date.IsZero() {
		ts := Timestamp(e.Date)
		out.Date = &ts
	}
	return out
}

// Core converts the payload, leaving Date zero when it was omitted.
func (e NewExpense) Core() core.NewExpense {
	out := core.NewExpense{
		Amount:      core.Money(e.Amount),
		Category:    e.Category,
		Description: deref(e.Description),
	}
	if e.Date != nil {
		out.Date = e.Date.Time()
	}
	return out
}

func FromCategory(c core.Category) Category {
	return Category{ID: c.ID, Name: c.Name, Color: c.Color, Icon: optional(c.Icon)}
}

func (c Category) Core() core.Category {
	return core.Category{ID: c.ID, Name: c.Name, Color: c.Color, Icon: deref(c.Icon)}
}

func FromCategories(in []core.Category) []Category {
	out := make([]Category, 0, len(in))
	for _, c := range in {
		out = append(out, FromCategory(c))
	}
	return out
}

func ToCategories(in []Category) []core.Category {
	out := make([]core.Category, 0, len(in))
	for _, c := range in {
		out = append(out, c.Core())
	}
	return out
}

func FromNewCategory(c core.NewCategory) NewCategory {
	return NewCategory{Name: c.Name, Color: c.Color, Icon: optional(c.Icon)}
}

func (c NewCategory) Core() core.NewCategory {
	return core.NewCategory{Name: c.Name, Color: c.Color, Icon: deref(c.Icon)}
}

func FromBudgetStatus(b core.BudgetStatus) Budget {
	return Budget{
		ID:       b.ID,
		Name:     b.Name,
		Amount:   Amount(b.Amount),
		Spent:    Amount(b.Spent),
		Category: optional(b.Category),
	}
}

func (b Budget) Core() core.BudgetStatus {
	return core.BudgetStatus{
		Budget: core.Budget{ID: b.ID, Name: b.Name, Amount: core.Money(b.Amount), Category: deref(b.Category)},
		Spent:  core.Money(b.Spent),
	}
}

func FromBudgetStatuses(in []core.BudgetStatus) []Budget {
	out := make([]Budget, 0, len(in))
	for _, b := range in {
		out = append(out, FromBudgetStatus(b))
	}
	return out
}

func ToBudgetStatuses(in []Budget) []core.BudgetStatus {
	out := make([]core.BudgetStatus, 0, len(in))
	for _, b := range in {
		out = append(out, b.Core())
	}
	return out
}

func FromNewBudget(b core.NewBudget) NewBudget {
	return NewBudget{Name: b.Name, Amount: Amount(b.Amount), Category: optional(b.Category)}
}

func (b NewBudget) Core() core.NewBudget {
	return core.NewBudget{Name: b.Name, Amount: core.Money(b.Amount), Category: deref(b.Category)}
}

func FromSummary(s core.Summary) Summary {
	top := make([]CategoryTotal, 0, len(s.TopCategories))
	for _, c := range s.TopCategories {
		top = append(top, CategoryTotal{Category: c.Category, Amount: Amount(c.Amount), Count: c.Count})
	}
	return Summary{TotalAmount: Amount(s.TotalAmount), ExpenseCount: s.ExpenseCount, TopCategories: top}
}

// Core tags the wire summary with the period it was requested for.
func (s Summary) Core(p core.Period) core.Summary {
	top := make([]core.CategoryTotal, 0, len(s.TopCategories))
	for _, c := range s.TopCategories {
		top = append(top, core.CategoryTotal{Category: c.Category, Amount: core.Money(c.Amount), Count: c.Count})
	}
	return core.Summary{Period: p, TotalAmount: core.Money(s.TotalAmount), ExpenseCount: s.ExpenseCount, TopCategories: top}
}

func NewHealth(status string, now time.Time) HealthResponse {
	return HealthResponse{Status: status, Timestamp: Timestamp(now)}
}
