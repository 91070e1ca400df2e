// Package session sequences record store calls and state transitions for
// one client session. After every successful expense mutation it refreshes
// all three period summaries from the record store.
package session

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"spendlog/internal/aggregate"
	"spendlog/internal/core"
	"spendlog/internal/grouping"
	applog "spendlog/internal/log"
	"spendlog/internal/recordstore"
	"spendlog/internal/state"
)

const (
	DefaultTimeout     = 15 * time.Second
	DefaultRecentLimit = 50
)

// RecordStore is the remote source of truth. *recordstore.Client implements it.
type RecordStore interface {
	ListExpenses(ctx context.Context, filter core.ExpenseFilter) ([]core.Expense, error)
	CreateExpense(ctx context.Context, e core.NewExpense) (core.Expense, error)
	DeleteExpense(ctx context.Context, id string) error
	Summary(ctx context.Context, p core.Period) (core.Summary, error)
	ListCategories(ctx context.Context) ([]core.Category, error)
	CreateCategory(ctx context.Context, c core.NewCategory) (core.Category, error)
}

// Orchestrator owns no state of its own; everything lives in the Store.
type Orchestrator struct {
	store       *state.Store
	records     RecordStore
	logger      *slog.Logger
	timeout     time.Duration
	recentLimit int
	now         func() time.Time
}

type Option func(*Orchestrator)

func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// WithTimeout bounds every network phase. Zero or negative disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.timeout = d }
}

func WithRecentLimit(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.recentLimit = n
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

func New(store *state.Store, records RecordStore, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:       store,
		records:     records,
		logger:      slog.Default(),
		timeout:     DefaultTimeout,
		recentLimit: DefaultRecentLimit,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = o.logger.With(applog.FieldComponent, applog.ComponentSession)
	return o
}

func (o *Orchestrator) Store() *state.Store { return o.store }

func (o *Orchestrator) State() state.State { return o.store.State() }

// Initialize loads categories and the three summaries in parallel, then the
// most recent expenses.
func (o *Orchestrator) Initialize(ctx context.Context) error {
	o.store.Dispatch(state.SetLoading{Loading: true})

	var categories []core.Category
	var summaries map[core.Period]core.Summary
	err := o.withTimeout(ctx, func(ctx context.Context) error {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			categories, err = o.records.ListCategories(gctx)
			return err
		})
		g.Go(func() error {
			var err error
			summaries, err = o.fetchSummaries(gctx)
			return err
		})
		return g.Wait()
	})
	if err != nil {
		return o.fail(ctx, applog.OpInitialize, err)
	}
	o.store.Dispatch(state.SetCategories{Categories: categories})
	o.store.Dispatch(state.SetSummaries{Summaries: summaries})

	var recent []core.Expense
	err = o.withTimeout(ctx, func(ctx context.Context) error {
		var err error
		recent, err = o.records.ListExpenses(ctx, core.ExpenseFilter{Limit: o.recentLimit})
		return err
	})
	if err != nil {
		return o.fail(ctx, applog.OpInitialize, err)
	}
	o.store.Dispatch(state.SetExpenses{Expenses: recent})
	return nil
}

// AddExpense creates e remotely and prepends the stored record. Input
// validation is the caller's job; the record store rejects bad payloads.
func (o *Orchestrator) AddExpense(ctx context.Context, e core.NewExpense) (core.Expense, error) {
	o.store.Dispatch(state.SetLoading{Loading: true})

	var created core.Expense
	err := o.withTimeout(ctx, func(ctx context.Context) error {
		var err error
		created, err = o.records.CreateExpense(ctx, e.Normalize(o.now()))
		return err
	})
	if err != nil {
		return core.Expense{}, o.fail(ctx, applog.OpCreate, err)
	}
	o.store.Dispatch(state.AddExpense{Expense: created})
	o.logger.DebugContext(ctx, "Expense added", applog.NewFields().WithExpense(created).ToSlice()...)

	_ = o.RefreshSummaries(ctx)
	return created, nil
}

// DeleteExpense removes id remotely and then locally. A failed remote
// delete leaves the local list untouched.
func (o *Orchestrator) DeleteExpense(ctx context.Context, id string) error {
	o.store.Dispatch(state.SetLoading{Loading: true})

	err := o.withTimeout(ctx, func(ctx context.Context) error {
		return o.records.DeleteExpense(ctx, id)
	})
	if err != nil {
		return o.fail(ctx, applog.OpDelete, err, applog.FieldExpenseID, id)
	}
	o.store.Dispatch(state.DeleteExpense{ID: id})

	_ = o.RefreshSummaries(ctx)
	return nil
}

// LoadExpenses replaces the local expense list with the result of filter.
func (o *Orchestrator) LoadExpenses(ctx context.Context, filter core.ExpenseFilter) error {
	o.store.Dispatch(state.SetLoading{Loading: true})

	var expenses []core.Expense
	err := o.withTimeout(ctx, func(ctx context.Context) error {
		var err error
		expenses, err = o.records.ListExpenses(ctx, filter)
		return err
	})
	if err != nil {
		return o.fail(ctx, applog.OpList, err)
	}
	o.store.Dispatch(state.SetExpenses{Expenses: expenses})
	return nil
}

func (o *Orchestrator) AddCategory(ctx context.Context, c core.NewCategory) (core.Category, error) {
	o.store.Dispatch(state.SetLoading{Loading: true})

	var created core.Category
	err := o.withTimeout(ctx, func(ctx context.Context) error {
		var err error
		created, err = o.records.CreateCategory(ctx, c)
		return err
	})
	if err != nil {
		return core.Category{}, o.fail(ctx, applog.OpCreate, err, applog.FieldCategory, c.Name)
	}
	o.store.Dispatch(state.AddCategory{Category: created})
	o.store.Dispatch(state.SetLoading{Loading: false})
	return created, nil
}

// RefreshSummaries replaces all three summaries at once. A failure keeps
// the previous summaries.
func (o *Orchestrator) RefreshSummaries(ctx context.Context) error {
	o.store.Dispatch(state.SetLoading{Loading: true})

	var summaries map[core.Period]core.Summary
	err := o.withTimeout(ctx, func(ctx context.Context) error {
		var err error
		summaries, err = o.fetchSummaries(ctx)
		return err
	})
	if err != nil {
		return o.fail(ctx, applog.OpRefresh, err)
	}
	o.store.Dispatch(state.SetSummaries{Summaries: summaries})
	o.store.Dispatch(state.SetLoading{Loading: false})
	return nil
}

func (o *Orchestrator) ClearError() {
	o.store.Dispatch(state.SetError{})
}

// History groups the current expenses by local calendar date.
func (o *Orchestrator) History() []core.ExpenseGroup {
	return grouping.GroupByDateIn(o.store.State().Expenses, o.now().Location())
}

// LocalSummary computes p over the locally cached expenses only.
func (o *Orchestrator) LocalSummary(p core.Period) core.Summary {
	return aggregate.ComputeSummary(o.store.State().Expenses, p, o.now())
}

// LocalSummaries is LocalSummary for every period.
func (o *Orchestrator) LocalSummaries() map[core.Period]core.Summary {
	return aggregate.ComputeAll(o.store.State().Expenses, o.now())
}

func (o *Orchestrator) fetchSummaries(ctx context.Context) (map[core.Period]core.Summary, error) {
	results := make([]core.Summary, len(core.Periods))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range core.Periods {
		g.Go(func() error {
			s, err := o.records.Summary(gctx, p)
			if err != nil {
				return err
			}
			results[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	out := make(map[core.Period]core.Summary, len(results))
	for i, p := range core.Periods {
		out[p] = results[i]
	}
	return out, nil
}

func (o *Orchestrator) withTimeout(ctx context.Context, fn func(context.Context) error) error {
	if o.timeout <= 0 {
		return fn(ctx)
	}
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()
	return fn(ctx)
}

// fail surfaces err in the store and hands it back to the caller.
func (o *Orchestrator) fail(ctx context.Context, op string, err error, args ...any) error {
	msg := recordstore.Message(err)
	o.store.Dispatch(state.SetError{Message: msg})
	fields := append([]any{applog.FieldOperation, op, applog.FieldError, err}, args...)
	o.logger.WarnContext(ctx, "Session operation failed", fields...)
	return err
}
