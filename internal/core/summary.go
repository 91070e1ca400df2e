package core

import (
	"fmt"
	"strings"
	"time"
)

// Period is a named aggregation window, recomputed relative to "now".
type Period string

const (
	Day   Period = "day"
	Week  Period = "week"
	Month Period = "month"
)

// Periods lists every supported period in display order.
var Periods = []Period{Day, Week, Month}

func (p Period) String() string { return string(p) }

func (p Period) Valid() bool {
	switch p {
	case Day, Week, Month:
		return true
	default:
		return false
	}
}

// ParsePeriod accepts "day", "week", "month" and their -ly forms.
func ParsePeriod(s string) (Period, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "day", "daily", "today":
		return Day, nil
	case "week", "weekly":
		return Week, nil
	case "month", "monthly":
		return Month, nil
	default:
		return "", fmt.Errorf("unknown period %q", s)
	}
}

// CategoryTotal is one entry of a summary ranking.
type CategoryTotal struct {
	Category string
	Amount   Money
	Count    int
}

// Summary holds derived totals for one period. It is never persisted.
type Summary struct {
	Period        Period
	TotalAmount   Money
	ExpenseCount  int
	TopCategories []CategoryTotal
}

// EmptySummary returns the zero summary for p with a non-nil ranking.
func EmptySummary(p Period) Summary {
	return Summary{Period: p, TopCategories: []CategoryTotal{}}
}

// ExpenseGroup is a set of expenses sharing a calendar date.
type ExpenseGroup struct {
	Date     time.Time
	Total    Money
	Expenses []Expense
}
