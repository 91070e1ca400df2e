package aggregate

import (
	"time"

	"spendlog/internal/core"
)

// BudgetPeriod is the window every budget is measured against.
const BudgetPeriod = core.Month

// Spent sums the expenses of category inside the window of p at now. An
// empty category counts every expense.
func Spent(expenses []core.Expense, category string, p core.Period, now time.Time) core.Money {
	start, end := Window(p, now)
	var total core.Money
	for _, e := range expenses {
		if category != "" && e.Category != category {
			continue
		}
		if Contains(start, end, e.Date) {
			total = total.Add(e.Amount)
		}
	}
	return total
}

// BudgetStatuses pairs each budget with its spending in the current
// BudgetPeriod, keeping the order of budgets.
func BudgetStatuses(budgets []core.Budget, expenses []core.Expense, now time.Time) []core.BudgetStatus {
	out := make([]core.BudgetStatus, 0, len(budgets))
	for _, b := range budgets {
		out = append(out, core.BudgetStatus{Budget: b, Spent: Spent(expenses, b.Category, BudgetPeriod, now)})
	}
	return out
}
