package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"spendlog/internal/core"
	"spendlog/internal/storage"
)

func TestBudgets_SpentComesFromExpenses(t *testing.T) {
	s, _ := newService(t)
	ctx := context.Background()
	mustCreate(t, s, 2500, "Food", testNow.Add(-time.Hour))
	mustCreate(t, s, 1500, "Bills", testNow.Add(-48*time.Hour))
	mustCreate(t, s, 9900, "Food", time.Date(2023, 12, 31, 12, 0, 0, 0, time.UTC)) // last month

	food, err := s.CreateBudget(ctx, core.NewBudget{Name: " Groceries ", Amount: core.Money{Cents: 2000}, Category: "Food"})
	if err != nil {
		t.Fatal(err)
	}
	if food.Name != "Groceries" || food.Spent.Cents != 2500 || !food.Exceeded() {
		t.Fatalf("created = %+v", food)
	}
	if _, err := s.CreateBudget(ctx, core.NewBudget{Name: "Monthly", Amount: core.Money{Cents: 10000}}); err != nil {
		t.Fatal(err)
	}

	mustCreate(t, s, 500, "Food", testNow)

	list, err := s.ListBudgets(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 {
		t.Fatalf("budgets = %+v", list)
	}
	if list[0].ID != food.ID || list[0].Spent.Cents != 3000 {
		t.Errorf("food budget = %+v", list[0])
	}
	if list[1].Spent.Cents != 4500 || list[1].Remaining().Cents != 5500 {
		t.Errorf("overall budget = %+v", list[1])
	}
}

func TestBudgets_UpdateAndDelete(t *testing.T) {
	s, _ := newService(t)
	ctx := context.Background()
	mustCreate(t, s, 700, "Bills", testNow)

	b, err := s.CreateBudget(ctx, core.NewBudget{Name: "Food", Amount: core.Money{Cents: 1000}, Category: "Food"})
	if err != nil {
		t.Fatal(err)
	}
	updated, err := s.UpdateBudget(ctx, b.ID, core.NewBudget{Name: "Bills", Amount: core.Money{Cents: 600}, Category: "Bills"})
	if err != nil {
		t.Fatal(err)
	}
	if updated.ID != b.ID || updated.Spent.Cents != 700 || updated.Remaining().Cents != -100 {
		t.Fatalf("updated = %+v", updated)
	}

	if _, err := s.UpdateBudget(ctx, "missing", core.NewBudget{Name: "x", Amount: core.Money{Cents: 1}}); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("update missing = %v", err)
	}
	if err := s.DeleteBudget(ctx, b.ID); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteBudget(ctx, b.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("delete twice = %v", err)
	}
	list, err := s.ListBudgets(ctx)
	if err != nil || list == nil || len(list) != 0 {
		t.Fatalf("list after delete = %#v, %v", list, err)
	}
}

func TestBudgets_Validation(t *testing.T) {
	s, _ := newService(t)
	tests := []struct {
		name  string
		in    core.NewBudget
		field string
	}{
		{"blank name", core.NewBudget{Name: "  ", Amount: core.Money{Cents: 1}}, "name"},
		{"zero amount", core.NewBudget{Name: "Food"}, "amount"},
		{"long category", core.NewBudget{Name: "Food", Amount: core.Money{Cents: 1}, Category: strings.Repeat("c", 51)}, "category"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for op, call := range map[string]func() error{
				"create": func() error { _, err := s.CreateBudget(context.Background(), tt.in); return err },
				"update": func() error { _, err := s.UpdateBudget(context.Background(), "any", tt.in); return err },
			} {
				var verr *ValidationError
				if err := call(); !errors.As(err, &verr) || verr.Field != tt.field {
					t.Errorf("%s: err = %v, want field %q", op, err, tt.field)
				}
			}
		})
	}
}
