package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"spendlog/internal/aggregate"
	"spendlog/internal/core"
	applog "spendlog/internal/log"
	"spendlog/internal/recordstore"
	"spendlog/internal/state"
)

var testNow = time.Date(2024, 1, 17, 12, 0, 0, 0, time.UTC)

// fakeStore is an in-memory RecordStore whose summaries are computed from
// its own expenses, like the real server.
type fakeStore struct {
	mu         sync.Mutex
	expenses   []core.Expense
	categories []core.Category
	nextID     int

	summaryCalls int
	failList     error
	failCreate   error
	failDelete   error
	failSummary  error
	failCategory error
	block        chan struct{}
}

func (f *fakeStore) ListExpenses(ctx context.Context, filter core.ExpenseFilter) ([]core.Expense, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failList != nil {
		return nil, f.failList
	}
	var out []core.Expense
	for _, e := range f.expenses {
		if filter.Matches(e) {
			out = append(out, e)
		}
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

func (f *fakeStore) CreateExpense(ctx context.Context, e core.NewExpense) (core.Expense, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreate != nil {
		return core.Expense{}, f.failCreate
	}
	f.nextID++
	created := core.Expense{
		ID:          string(rune('a' + f.nextID - 1)),
		Amount:      e.Amount,
		Category:    e.Category,
		Description: e.Description,
		Date:        e.Date,
	}
	f.expenses = append([]core.Expense{created}, f.expenses...)
	return created, nil
}

func (f *fakeStore) DeleteExpense(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDelete != nil {
		return f.failDelete
	}
	for i, e := range f.expenses {
		if e.ID == id {
			f.expenses = append(f.expenses[:i], f.expenses[i+1:]...)
			return nil
		}
	}
	return recordstore.StatusError(404, "Expense not found")
}

func (f *fakeStore) Summary(ctx context.Context, p core.Period) (core.Summary, error) {
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return core.Summary{}, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.summaryCalls++
	if f.failSummary != nil {
		return core.Summary{}, f.failSummary
	}
	return aggregate.Top(aggregate.ComputeSummary(f.expenses, p, testNow), 5), nil
}

func (f *fakeStore) ListCategories(ctx context.Context) ([]core.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCategory != nil {
		return nil, f.failCategory
	}
	return append([]core.Category(nil), f.categories...), nil
}

func (f *fakeStore) CreateCategory(ctx context.Context, c core.NewCategory) (core.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCategory != nil {
		return core.Category{}, f.failCategory
	}
	created := core.Category{ID: "c" + c.Name, Name: c.Name, Color: c.Color, Icon: c.Icon}
	f.categories = append(f.categories, created)
	return created, nil
}

func newTestOrchestrator(f *fakeStore, opts ...Option) *Orchestrator {
	opts = append([]Option{
		WithLogger(applog.Discard()),
		WithClock(func() time.Time { return testNow }),
	}, opts...)
	return New(state.NewStore(), f, opts...)
}

func TestInitialize(t *testing.T) {
	f := &fakeStore{
		expenses:   []core.Expense{{ID: "x", Amount: core.Money{Cents: 2000}, Category: "Food", Date: testNow}},
		categories: []core.Category{{ID: "c1", Name: "Food"}},
	}
	o := newTestOrchestrator(f)
	if err := o.Initialize(context.Background()); err != nil {
		t.Fatal(err)
	}
	s := o.State()
	if s.Loading || s.Error != "" {
		t.Fatalf("loading=%v error=%q", s.Loading, s.Error)
	}
	if len(s.Categories) != 1 || len(s.Expenses) != 1 {
		t.Fatalf("state = %+v", s)
	}
	for _, p := range core.Periods {
		if s.Summaries[p].TotalAmount.Cents != 2000 {
			t.Fatalf("%s summary = %+v", p, s.Summaries[p])
		}
	}
}

func TestInitializeFailureKeepsData(t *testing.T) {
	f := &fakeStore{categories: []core.Category{{ID: "c1", Name: "Food"}}, failSummary: recordstore.StatusError(500, "")}
	o := newTestOrchestrator(f)
	o.Store().Dispatch(state.SetExpenses{Expenses: []core.Expense{{ID: "old"}}})

	err := o.Initialize(context.Background())
	if !errors.Is(err, recordstore.ErrServer) {
		t.Fatalf("err = %v", err)
	}
	s := o.State()
	if s.Loading || s.Error != "Server error. Please try again later." {
		t.Fatalf("loading=%v error=%q", s.Loading, s.Error)
	}
	if len(s.Categories) != 0 {
		t.Fatalf("categories must not be applied when the parallel phase fails")
	}
	if len(s.Expenses) != 1 || s.Expenses[0].ID != "old" {
		t.Fatalf("expenses = %+v", s.Expenses)
	}
}

func TestInitializeRecentLimit(t *testing.T) {
	f := &fakeStore{}
	for i := 0; i < 5; i++ {
		f.expenses = append(f.expenses, core.Expense{ID: string(rune('a' + i)), Amount: core.Money{Cents: 1}, Date: testNow})
	}
	o := newTestOrchestrator(f, WithRecentLimit(3))
	if err := o.Initialize(context.Background()); err != nil {
		t.Fatal(err)
	}
	if n := len(o.State().Expenses); n != 3 {
		t.Fatalf("got %d expenses, want 3", n)
	}
}

func TestAddExpenseRefreshesSummaries(t *testing.T) {
	f := &fakeStore{expenses: []core.Expense{{ID: "first", Amount: core.Money{Cents: 2000}, Category: "Food", Date: testNow}}}
	o := newTestOrchestrator(f)
	if err := o.Initialize(context.Background()); err != nil {
		t.Fatal(err)
	}
	calls := f.summaryCalls

	created, err := o.AddExpense(context.Background(), core.NewExpense{Amount: core.Money{Cents: 4250}, Category: "Food", Date: testNow})
	if err != nil {
		t.Fatal(err)
	}
	s := o.State()
	if s.Expenses[0].ID != created.ID {
		t.Fatalf("head = %+v, want %+v", s.Expenses[0], created)
	}
	if f.summaryCalls-calls != 3 {
		t.Fatalf("refresh issued %d summary calls, want 3", f.summaryCalls-calls)
	}
	day := s.Summaries[core.Day]
	if day.TotalAmount.Cents != 6250 || day.ExpenseCount != 2 {
		t.Fatalf("day = %+v", day)
	}
	if len(day.TopCategories) != 1 || day.TopCategories[0] != (core.CategoryTotal{Category: "Food", Amount: core.Money{Cents: 6250}, Count: 2}) {
		t.Fatalf("top = %+v", day.TopCategories)
	}
	if s.Loading {
		t.Fatalf("loading left on")
	}
}

func TestAddExpenseFillsDate(t *testing.T) {
	f := &fakeStore{}
	o := newTestOrchestrator(f)
	created, err := o.AddExpense(context.Background(), core.NewExpense{Amount: core.Money{Cents: 100}, Category: " Food "})
	if err != nil {
		t.Fatal(err)
	}
	if !created.Date.Equal(testNow) || created.Category != "Food" {
		t.Fatalf("created = %+v", created)
	}
}

func TestAddExpenseFailure(t *testing.T) {
	f := &fakeStore{failCreate: recordstore.StatusError(422, "Amount must be positive")}
	o := newTestOrchestrator(f)
	_, err := o.AddExpense(context.Background(), core.NewExpense{Category: "Food"})
	if !errors.Is(err, recordstore.ErrValidation) {
		t.Fatalf("err = %v", err)
	}
	s := o.State()
	if len(s.Expenses) != 0 || s.Error != "Amount must be positive" || s.Loading {
		t.Fatalf("state = %+v", s)
	}
	if f.summaryCalls != 0 {
		t.Fatalf("failed create must not refresh summaries")
	}
}

func TestMutationKeptWhenRefreshFails(t *testing.T) {
	f := &fakeStore{failSummary: recordstore.StatusError(500, "")}
	o := newTestOrchestrator(f)
	created, err := o.AddExpense(context.Background(), core.NewExpense{Amount: core.Money{Cents: 100}, Category: "Food"})
	if err != nil {
		t.Fatalf("mutation should still succeed: %v", err)
	}
	s := o.State()
	if len(s.Expenses) != 1 || s.Expenses[0].ID != created.ID {
		t.Fatalf("expenses = %+v", s.Expenses)
	}
	if s.Error == "" || s.Loading {
		t.Fatalf("refresh failure should surface: loading=%v error=%q", s.Loading, s.Error)
	}
	if !s.Summaries[core.Day].TotalAmount.IsZero() {
		t.Fatalf("stale summaries should be kept")
	}
}

func TestDeleteExpense(t *testing.T) {
	f := &fakeStore{expenses: []core.Expense{
		{ID: "keep", Amount: core.Money{Cents: 100}, Category: "Food", Date: testNow},
		{ID: "drop", Amount: core.Money{Cents: 900}, Category: "Bills", Date: testNow},
	}}
	o := newTestOrchestrator(f)
	if err := o.Initialize(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := o.DeleteExpense(context.Background(), "drop"); err != nil {
		t.Fatal(err)
	}
	s := o.State()
	if len(s.Expenses) != 1 || s.Expenses[0].ID != "keep" {
		t.Fatalf("expenses = %+v", s.Expenses)
	}
	if s.Summaries[core.Month].TotalAmount.Cents != 100 {
		t.Fatalf("month = %+v", s.Summaries[core.Month])
	}
}

func TestDeleteUnknownExpense(t *testing.T) {
	f := &fakeStore{expenses: []core.Expense{{ID: "keep", Amount: core.Money{Cents: 100}, Date: testNow}}}
	o := newTestOrchestrator(f)
	if err := o.Initialize(context.Background()); err != nil {
		t.Fatal(err)
	}
	before := o.State().Expenses

	err := o.DeleteExpense(context.Background(), "missing")
	if !errors.Is(err, recordstore.ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
	s := o.State()
	if len(s.Expenses) != len(before) || s.Expenses[0].ID != "keep" {
		t.Fatalf("expenses changed: %+v", s.Expenses)
	}
	if s.Error != "Expense not found" {
		t.Fatalf("error = %q", s.Error)
	}
}

func TestErrorClearedOnlyExplicitly(t *testing.T) {
	f := &fakeStore{failList: errors.New("boom")}
	o := newTestOrchestrator(f)
	if err := o.LoadExpenses(context.Background(), core.ExpenseFilter{}); err == nil {
		t.Fatal("expected error")
	}
	if got := o.State().Error; got != "An unexpected error occurred" {
		t.Fatalf("error = %q", got)
	}

	f.failList = nil
	if err := o.LoadExpenses(context.Background(), core.ExpenseFilter{}); err != nil {
		t.Fatal(err)
	}
	if _, err := o.AddCategory(context.Background(), core.NewCategory{Name: "Pets"}); err != nil {
		t.Fatal(err)
	}
	if o.State().Error == "" {
		t.Fatalf("successful calls must not clear the error")
	}
	o.ClearError()
	if o.State().Error != "" {
		t.Fatalf("ClearError did not clear")
	}
}

func TestAddCategory(t *testing.T) {
	f := &fakeStore{categories: []core.Category{{ID: "c1", Name: "Food"}}}
	o := newTestOrchestrator(f)
	if err := o.Initialize(context.Background()); err != nil {
		t.Fatal(err)
	}
	created, err := o.AddCategory(context.Background(), core.NewCategory{Name: "Pets", Color: "#123456"})
	if err != nil {
		t.Fatal(err)
	}
	s := o.State()
	if len(s.Categories) != 2 || s.Categories[1] != created || s.Loading {
		t.Fatalf("state = %+v", s)
	}

	f.failCategory = recordstore.StatusError(400, "Category already exists")
	if _, err := o.AddCategory(context.Background(), core.NewCategory{Name: "Pets"}); !errors.Is(err, recordstore.ErrValidation) {
		t.Fatalf("err = %v", err)
	}
	if got := o.State(); len(got.Categories) != 2 || got.Error != "Category already exists" {
		t.Fatalf("state = %+v", got)
	}
}

func TestTimeout(t *testing.T) {
	f := &fakeStore{block: make(chan struct{})}
	defer close(f.block)
	o := newTestOrchestrator(f, WithTimeout(20*time.Millisecond))

	err := o.RefreshSummaries(context.Background())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v", err)
	}
	s := o.State()
	if s.Loading || s.Error != "Request timed out. Please try again." {
		t.Fatalf("loading=%v error=%q", s.Loading, s.Error)
	}
}

func TestViews(t *testing.T) {
	f := &fakeStore{expenses: []core.Expense{
		{ID: "a", Amount: core.Money{Cents: 1000}, Category: "Food", Date: testNow},
		{ID: "b", Amount: core.Money{Cents: 500}, Category: "Food", Date: testNow.Add(-24 * time.Hour)},
	}}
	o := newTestOrchestrator(f)
	if err := o.LoadExpenses(context.Background(), core.ExpenseFilter{}); err != nil {
		t.Fatal(err)
	}
	groups := o.History()
	if len(groups) != 2 || groups[0].Total.Cents != 1000 || groups[1].Total.Cents != 500 {
		t.Fatalf("groups = %+v", groups)
	}
	if day := o.LocalSummary(core.Day); day.TotalAmount.Cents != 1000 || day.ExpenseCount != 1 {
		t.Fatalf("local day = %+v", day)
	}
	all := o.LocalSummaries()
	if len(all) != len(core.Periods) || all[core.Day].TotalAmount.Cents != 1000 {
		t.Fatalf("local summaries = %+v", all)
	}
	if month := all[core.Month]; month.TotalAmount.Cents != 1500 || month.ExpenseCount != 2 {
		t.Fatalf("local month = %+v", month)
	}
	if got := o.State().Summaries[core.Month]; got.ExpenseCount != 0 {
		t.Fatalf("local summaries must not touch state: %+v", got)
	}
}
