// Package memory is a process-local storage.Repository for development and tests.
package memory

import (
	"bufio"
	"cmp"
	"context"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"spendlog/internal/core"
	"spendlog/internal/storage"
)

type Store struct {
	mu         sync.Mutex
	expenses   []core.Expense // insertion order
	categories []core.Category
	budgets    []core.Budget
}

var _ storage.Repository = (*Store)(nil)

func New() *Store {
	return &Store{}
}

func (s *Store) CreateExpense(_ context.Context, e core.NewExpense) (core.Expense, error) {
	created := core.Expense{
		ID:          uuid.NewString(),
		Amount:      e.Amount,
		Category:    e.Category,
		Description: e.Description,
		Date:        e.Date,
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expenses = append(s.expenses, created)
	return created, nil
}

func (s *Store) GetExpense(_ context.Context, id string) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.expenses {
		if e.ID == id {
			return e, nil
		}
	}
	return core.Expense{}, storage.ErrNotFound
}

// ListExpenses sorts by date descending; equal dates list the later insert first.
func (s *Store) ListExpenses(_ context.Context, filter core.ExpenseFilter) ([]core.Expense, error) {
	s.mu.Lock()
	matched := make([]core.Expense, 0, len(s.expenses))
	for i := len(s.expenses) - 1; i >= 0; i-- {
		if filter.Matches(s.expenses[i]) {
			matched = append(matched, s.expenses[i])
		}
	}
	s.mu.Unlock()

	slices.SortStableFunc(matched, func(a, b core.Expense) int {
		return cmp.Compare(b.Date.UnixNano(), a.Date.UnixNano())
	})
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

func (s *Store) DeleteExpense(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.expenses, func(e core.Expense) bool { return e.ID == id })
	if i < 0 {
		return storage.ErrNotFound
	}
	s.expenses = slices.Delete(s.expenses, i, i+1)
	return nil
}

func (s *Store) ListCategories(_ context.Context) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.categories), nil
}

func (s *Store) CreateCategory(_ context.Context, c core.NewCategory) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.categories {
		if existing.Name == c.Name {
			return core.Category{}, core.ErrDuplicateCategory
		}
	}
	created := core.Category{ID: uuid.NewString(), Name: c.Name, Color: c.Color, Icon: c.Icon}
	s.categories = append(s.categories, created)
	return created, nil
}

func (s *Store) CountCategories(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.categories), nil
}

func (s *Store) ListBudgets(_ context.Context) ([]core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.budgets), nil
}

func (s *Store) CreateBudget(_ context.Context, b core.NewBudget) (core.Budget, error) {
	created := core.Budget{ID: uuid.NewString(), Name: b.Name, Amount: b.Amount, Category: b.Category}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.budgets = append(s.budgets, created)
	return created, nil
}

func (s *Store) UpdateBudget(_ context.Context, id string, b core.NewBudget) (core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.budgets, func(existing core.Budget) bool { return existing.ID == id })
	if i < 0 {
		return core.Budget{}, storage.ErrNotFound
	}
	s.budgets[i] = core.Budget{ID: id, Name: b.Name, Amount: b.Amount, Category: b.Category}
	return s.budgets[i], nil
}

func (s *Store) DeleteBudget(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.budgets, func(b core.Budget) bool { return b.ID == id })
	if i < 0 {
		return storage.ErrNotFound
	}
	s.budgets = slices.Delete(s.budgets, i, i+1)
	return nil
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }

// ReadSeedCategories reads "name|#RRGGBB|icon" lines from path. Blank lines
// and lines starting with # are skipped. A missing file yields nil.
func ReadSeedCategories(path string) []core.NewCategory {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var out []core.NewCategory
	seen := map[string]struct{}{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "|", 3)
		c := core.NewCategory{Name: strings.TrimSpace(parts[0])}
		if len(parts) > 1 {
			c.Color = strings.TrimSpace(parts[1])
		}
		if len(parts) > 2 {
			c.Icon = strings.TrimSpace(parts[2])
		}
		if _, dup := seen[c.Name]; dup || c.Validate() != nil {
			continue
		}
		seen[c.Name] = struct{}{}
		out = append(out, c)
	}
	return out
}
