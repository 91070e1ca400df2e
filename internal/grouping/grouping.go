// Package grouping turns a flat expense list into per-day groups for display.
package grouping

import (
	"slices"
	"time"

	"spendlog/internal/core"
)

const labelLayout = "Jan 02, 2006"

// GroupByDate buckets expenses by calendar date in the local time zone.
func GroupByDate(expenses []core.Expense) []core.ExpenseGroup {
	return GroupByDateIn(expenses, time.Local)
}

// GroupByDateIn buckets expenses by calendar date in loc. Members keep their
// input order and groups are sorted newest date first.
func GroupByDateIn(expenses []core.Expense, loc *time.Location) []core.ExpenseGroup {
	if loc == nil {
		loc = time.Local
	}
	groups := make([]core.ExpenseGroup, 0)
	index := make(map[time.Time]int)
	for _, e := range expenses {
		day := dayOf(e.Date, loc)
		i, ok := index[day]
		if !ok {
			i = len(groups)
			index[day] = i
			groups = append(groups, core.ExpenseGroup{Date: day})
		}
		groups[i].Expenses = append(groups[i].Expenses, e)
		groups[i].Total = groups[i].Total.Add(e.Amount)
	}
	slices.SortStableFunc(groups, func(a, b core.ExpenseGroup) int {
		return b.Date.Compare(a.Date)
	})
	return groups
}

// Label names a group date relative to now: "Today", "Yesterday" or the date itself.
func Label(groupDate, now time.Time) string {
	loc := now.Location()
	day := dayOf(groupDate, loc)
	today := dayOf(now, loc)
	switch {
	case day.Equal(today):
		return "Today"
	case day.Equal(time.Date(today.Year(), today.Month(), today.Day()-1, 0, 0, 0, 0, loc)):
		return "Yesterday"
	default:
		return day.Format(labelLayout)
	}
}

func dayOf(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
