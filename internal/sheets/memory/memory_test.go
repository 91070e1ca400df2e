package memory

import (
	"context"
	"testing"
	"time"

	"spendlog/internal/core"
)

func TestMirrorAppendAndDelete(t *testing.T) {
	ctx := context.Background()
	m := New()
	e := core.Expense{
		ID:          "a1",
		Amount:      core.Money{Cents: 1250},
		Category:    "Food",
		Description: "lunch",
		Date:        time.Date(2024, 1, 17, 12, 0, 0, 0, time.UTC),
	}

	ref, err := m.Append(ctx, e)
	if err != nil || ref != "mem:1" {
		t.Fatalf("unexpected append: ref=%q err=%v", ref, err)
	}
	// Redelivery keeps a single row.
	ref, err = m.Append(ctx, e)
	if err != nil || ref != "mem:1" {
		t.Fatalf("unexpected re-append: ref=%q err=%v", ref, err)
	}

	rows := m.Rows()
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	want := []any{"a1", "2024-01-17", "lunch", "12.50", "Food"}
	for i := range want {
		if rows[0][i] != want[i] {
			t.Errorf("column %d: got %v, want %v", i, rows[0][i], want[i])
		}
	}

	if err := m.Delete(ctx, "missing"); err != nil {
		t.Fatalf("delete of unknown id: %v", err)
	}
	if err := m.Delete(ctx, "a1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(m.Rows()) != 0 {
		t.Fatalf("expected no rows after delete")
	}
}

func TestMirrorRejectsMissingID(t *testing.T) {
	if _, err := New().Append(context.Background(), core.Expense{Amount: core.Money{Cents: 1}}); err == nil {
		t.Fatal("expected error for expense without id")
	}
}
