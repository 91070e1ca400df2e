package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"spendlog/internal/core"
	"spendlog/internal/sheets"
)

var _ sheets.ExpenseMirror = (*Mirror)(nil)

// Mirror is an in-process ExpenseMirror used by tests and the memory backend.
type Mirror struct {
	mu   sync.Mutex
	rows [][]any
	next int
}

func New() *Mirror {
	return &Mirror{}
}

// Append stores the expense and returns a synthetic row reference.
func (m *Mirror) Append(_ context.Context, e core.Expense) (string, error) {
	if e.ID == "" {
		return "", errors.New("expense without id")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := m.indexLocked(e.ID); i >= 0 {
		return fmt.Sprintf("mem:%d", i+1), nil
	}
	m.rows = append(m.rows, sheets.Row(e))
	return fmt.Sprintf("mem:%d", len(m.rows)), nil
}

func (m *Mirror) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := m.indexLocked(id); i >= 0 {
		m.rows = append(m.rows[:i], m.rows[i+1:]...)
	}
	return nil
}

// Rows returns a copy of the mirrored rows in sheet order.
func (m *Mirror) Rows() [][]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]any, len(m.rows))
	for i, r := range m.rows {
		out[i] = append([]any(nil), r...)
	}
	return out
}

func (m *Mirror) indexLocked(id string) int {
	for i, r := range m.rows {
		if r[0] == id {
			return i
		}
	}
	return -1
}
