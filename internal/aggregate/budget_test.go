package aggregate

import (
	"testing"
	"time"

	"spendlog/internal/core"
)

func TestSpent(t *testing.T) {
	expenses := []core.Expense{
		exp("1", 1000, "Food", now),
		exp("2", 250, "Food", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
		exp("3", 700, "Bills", time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC)),
		exp("4", 9000, "Food", time.Date(2023, 12, 31, 23, 59, 59, 0, time.UTC)),
		exp("5", 9000, "Food", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)),
	}
	cases := []struct {
		category string
		period   core.Period
		want     int64
	}{
		{"Food", core.Month, 1250},
		{"Bills", core.Month, 700},
		{"", core.Month, 1950},
		{"Food", core.Day, 1000},
		{"Travel", core.Month, 0},
	}
	for _, tc := range cases {
		if got := Spent(expenses, tc.category, tc.period, now); got.Cents != tc.want {
			t.Errorf("Spent(%q, %s) = %d, want %d", tc.category, tc.period, got.Cents, tc.want)
		}
	}
}

func TestBudgetStatuses(t *testing.T) {
	budgets := []core.Budget{
		{ID: "b2", Name: "Groceries", Amount: core.Money{Cents: 1000}, Category: "Food"},
		{ID: "b1", Name: "Total", Amount: core.Money{Cents: 5000}},
	}
	expenses := []core.Expense{
		exp("1", 1200, "Food", now),
		exp("2", 300, "Bills", now.Add(-48*time.Hour)),
	}
	got := BudgetStatuses(budgets, expenses, now)
	if len(got) != 2 || got[0].ID != "b2" || got[1].ID != "b1" {
		t.Fatalf("statuses = %+v", got)
	}
	if got[0].Spent.Cents != 1200 || !got[0].Exceeded() {
		t.Errorf("groceries = %+v", got[0])
	}
	if got[1].Spent.Cents != 1500 || got[1].Remaining().Cents != 3500 {
		t.Errorf("total = %+v", got[1])
	}
	if len(BudgetStatuses(nil, expenses, now)) != 0 {
		t.Errorf("no budgets must yield no statuses")
	}
}
