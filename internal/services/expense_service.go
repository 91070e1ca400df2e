// Package services holds the record store's business operations, shared by
// every transport in front of a storage.Repository.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"spendlog/internal/aggregate"
	"spendlog/internal/cache"
	"spendlog/internal/core"
	applog "spendlog/internal/log"
	"spendlog/internal/metrics"
	"spendlog/internal/storage"
)

const (
	// TopCategoriesLimit truncates summary rankings returned to clients.
	TopCategoriesLimit = 5
	// DefaultListLimit applies when a listing does not ask for one.
	DefaultListLimit = 100

	DefaultSummaryCacheTTL = 30 * time.Second
)

// Publisher announces committed changes. Failures never fail the request.
type Publisher interface {
	PublishExpenseCreated(ctx context.Context, e core.Expense) error
	PublishExpenseDeleted(ctx context.Context, id string) error
}

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

type summaryKey struct {
	period core.Period
	start  int64
}

// ExpenseService orchestrates expense operations across the repository,
// the summary cache and the event publisher.
type ExpenseService struct {
	repo      storage.Repository
	publisher Publisher
	summaries *cache.LRUCache[summaryKey, core.Summary]
	metrics   *metrics.Metrics
	logger    *slog.Logger
	now       func() time.Time
}

type Option func(*ExpenseService)

func WithPublisher(p Publisher) Option {
	return func(s *ExpenseService) { s.publisher = p }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *ExpenseService) { s.metrics = m }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *ExpenseService) { s.logger = l }
}

func WithClock(now func() time.Time) Option {
	return func(s *ExpenseService) { s.now = now }
}

// WithSummaryCacheTTL sets how long computed summaries are reused. A
// non-positive ttl disables caching.
func WithSummaryCacheTTL(ttl time.Duration) Option {
	return func(s *ExpenseService) {
		if ttl <= 0 {
			s.summaries = nil
			return
		}
		s.summaries = cache.NewLRUCache[summaryKey, core.Summary](len(core.Periods)*4, ttl)
	}
}

func NewExpenseService(repo storage.Repository, opts ...Option) *ExpenseService {
	s := &ExpenseService{
		repo:      repo,
		summaries: cache.NewLRUCache[summaryKey, core.Summary](len(core.Periods)*4, DefaultSummaryCacheTTL),
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(applog.FieldComponent, applog.ComponentExpense)
	return s
}

// SummaryCache exposes the cache so it can be registered for expiry sweeps.
// It returns nil when caching is disabled.
func (s *ExpenseService) SummaryCache() cache.Cleaner {
	if s.summaries == nil {
		return nil
	}
	return s.summaries
}

// CreateExpense validates and saves an expense, then publishes an event.
// A zero date means now.
func (s *ExpenseService) CreateExpense(ctx context.Context, in core.NewExpense) (core.Expense, error) {
	in = in.Normalize(s.now())
	if err := in.Validate(); err != nil {
		return core.Expense{}, &ValidationError{Field: expenseField(err), Err: err}
	}

	created, err := s.repo.CreateExpense(ctx, in)
	if err != nil {
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}
	s.invalidateSummaries()
	s.metrics.RecordExpenseCreated()

	if s.publisher != nil {
		err := s.publisher.PublishExpenseCreated(ctx, created)
		s.metrics.RecordEventPublished("expense.created", err)
		if err != nil {
			s.logger.ErrorContext(ctx, "Failed to publish created event",
				applog.FieldExpenseID, created.ID, applog.FieldError, err)
		}
	}
	return created, nil
}

// DeleteExpense removes an expense; storage.ErrNotFound for unknown ids.
func (s *ExpenseService) DeleteExpense(ctx context.Context, id string) error {
	if err := s.repo.DeleteExpense(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return err
		}
		return fmt.Errorf("delete expense: %w", err)
	}
	s.invalidateSummaries()
	s.metrics.RecordExpenseDeleted()

	if s.publisher != nil {
		err := s.publisher.PublishExpenseDeleted(ctx, id)
		s.metrics.RecordEventPublished("expense.deleted", err)
		if err != nil {
			s.logger.ErrorContext(ctx, "Failed to publish deleted event",
				applog.FieldExpenseID, id, applog.FieldError, err)
		}
	}
	return nil
}

func (s *ExpenseService) GetExpense(ctx context.Context, id string) (core.Expense, error) {
	return s.repo.GetExpense(ctx, id)
}

// ListExpenses returns newest first. A zero limit means DefaultListLimit.
func (s *ExpenseService) ListExpenses(ctx context.Context, filter core.ExpenseFilter) ([]core.Expense, error) {
	if err := filter.Validate(); err != nil {
		field := "limit"
		if !errors.Is(err, core.ErrInvalidLimit) {
			field = "end_date"
		}
		return nil, &ValidationError{Field: field, Err: err}
	}
	if filter.Limit == 0 {
		filter.Limit = DefaultListLimit
	}
	expenses, err := s.repo.ListExpenses(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return expenses, nil
}

// Summary aggregates the current window of p, keeping the top categories.
func (s *ExpenseService) Summary(ctx context.Context, p core.Period) (core.Summary, error) {
	if !p.Valid() {
		return core.Summary{}, &ValidationError{Field: "period", Err: fmt.Errorf("unknown period %q", p)}
	}
	now := s.now()
	start, end := aggregate.Window(p, now)
	key := summaryKey{period: p, start: start.UnixNano()}

	if s.summaries != nil {
		if cached, ok := s.summaries.Get(key); ok {
			s.metrics.RecordSummaryLookup(p.String(), true)
			return cached, nil
		}
		s.metrics.RecordSummaryLookup(p.String(), false)
	}

	expenses, err := s.repo.ListExpenses(ctx, core.ExpenseFilter{
		StartDate: start,
		EndDate:   end.Add(-time.Nanosecond),
	})
	if err != nil {
		return core.Summary{}, fmt.Errorf("list expenses for %s summary: %w", p, err)
	}
	summary := aggregate.Top(aggregate.ComputeSummary(expenses, p, now), TopCategoriesLimit)

	if s.summaries != nil {
		s.summaries.Set(key, summary)
	}
	fields := applog.NewFields().WithPeriod(p).WithOperation(applog.OpSummary)
	s.logger.DebugContext(ctx, "Summary computed",
		append(fields.ToSlice(), "expense_count", summary.ExpenseCount, "total_cents", summary.TotalAmount.Cents)...)
	return summary, nil
}

func (s *ExpenseService) ListCategories(ctx context.Context) ([]core.Category, error) {
	cats, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}

// CreateCategory fails with core.ErrDuplicateCategory when the name is taken.
func (s *ExpenseService) CreateCategory(ctx context.Context, in core.NewCategory) (core.Category, error) {
	if err := in.Validate(); err != nil {
		return core.Category{}, &ValidationError{Field: categoryField(err), Err: err}
	}
	created, err := s.repo.CreateCategory(ctx, in)
	if err != nil {
		if errors.Is(err, core.ErrDuplicateCategory) {
			return core.Category{}, err
		}
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	return created, nil
}

// EnsureDefaultCategories seeds defaults into an empty category table and
// reports how many were created.
func (s *ExpenseService) EnsureDefaultCategories(ctx context.Context, defaults []core.NewCategory) (int, error) {
	n, err := s.repo.CountCategories(ctx)
	if err != nil {
		return 0, fmt.Errorf("count categories: %w", err)
	}
	if n > 0 {
		return 0, nil
	}
	created := 0
	for _, c := range defaults {
		if _, err := s.repo.CreateCategory(ctx, c); err != nil {
			if errors.Is(err, core.ErrDuplicateCategory) {
				continue
			}
			return created, fmt.Errorf("seed category %q: %w", c.Name, err)
		}
		created++
	}
	s.logger.InfoContext(ctx, "Default categories seeded", "count", created)
	return created, nil
}

// Health pings the repository.
func (s *ExpenseService) Health(ctx context.Context) error {
	if err := s.repo.Ping(ctx); err != nil {
		return fmt.Errorf("ping storage: %w", err)
	}
	return nil
}

// Now is the service clock, shared with handlers that stamp responses.
func (s *ExpenseService) Now() time.Time { return s.now() }

func (s *ExpenseService) invalidateSummaries() {
	if s.summaries != nil {
		s.summaries.Purge()
	}
}

func expenseField(err error) string {
	switch {
	case errors.Is(err, core.ErrInvalidAmount):
		return "amount"
	case errors.Is(err, core.ErrDescriptionTooLong):
		return "description"
	default:
		return "category"
	}
}

func categoryField(err error) string {
	switch {
	case errors.Is(err, core.ErrInvalidColor):
		return "color"
	case errors.Is(err, core.ErrEmptyName), errors.Is(err, core.ErrCategoryTooLong):
		return "name"
	default:
		return "icon"
	}
}
