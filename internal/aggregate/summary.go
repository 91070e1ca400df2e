package aggregate

import (
	"slices"
	"time"

	"spendlog/internal/core"
)

// ComputeSummary filters expenses to the window of period at now and derives
// totals and the full category ranking. Categories are sorted by summed amount,
// descending; equal sums keep first-seen order.
func ComputeSummary(expenses []core.Expense, period core.Period, now time.Time) core.Summary {
	start, end := Window(period, now)
	summary := core.EmptySummary(period)
	index := make(map[string]int)

	for _, e := range expenses {
		if !Contains(start, end, e.Date) {
			continue
		}
		summary.TotalAmount = summary.TotalAmount.Add(e.Amount)
		summary.ExpenseCount++

		i, seen := index[e.Category]
		if !seen {
			i = len(summary.TopCategories)
			index[e.Category] = i
			summary.TopCategories = append(summary.TopCategories, core.CategoryTotal{Category: e.Category})
		}
		summary.TopCategories[i].Amount = summary.TopCategories[i].Amount.Add(e.Amount)
		summary.TopCategories[i].Count++
	}

	slices.SortStableFunc(summary.TopCategories, func(a, b core.CategoryTotal) int {
		switch {
		case a.Amount.Cents > b.Amount.Cents:
			return -1
		case a.Amount.Cents < b.Amount.Cents:
			return 1
		default:
			return 0
		}
	})
	return summary
}

// ComputeAll returns the summary of every period in core.Periods.
func ComputeAll(expenses []core.Expense, now time.Time) map[core.Period]core.Summary {
	out := make(map[core.Period]core.Summary, len(core.Periods))
	for _, p := range core.Periods {
		out[p] = ComputeSummary(expenses, p, now)
	}
	return out
}

// Top returns a copy of s with the ranking truncated to n entries.
// Truncation is a display concern; totals are left untouched.
func Top(s core.Summary, n int) core.Summary {
	if n < 0 || len(s.TopCategories) <= n {
		s.TopCategories = slices.Clone(s.TopCategories)
		return s
	}
	s.TopCategories = slices.Clone(s.TopCategories[:n])
	return s
}
