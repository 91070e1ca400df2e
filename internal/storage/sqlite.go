package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"spendlog/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository implements Repository on a single SQLite file.
// Times are stored as Unix nanoseconds and read back in time.Local.
type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	now     func() time.Time
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	version, err := RunMigrations(dbPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	slog.Debug("SQLite schema ready", "path", dbPath, "version", version)

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
		now:     time.Now,
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) CreateExpense(ctx context.Context, e core.NewExpense) (core.Expense, error) {
	row := expenseRow{
		ID:          uuid.NewString(),
		AmountCents: e.Amount.Cents,
		Category:    e.Category,
		Description: e.Description,
		OccurredAt:  e.Date.UnixNano(),
		CreatedAt:   r.now().UnixNano(),
	}
	if err := r.queries.CreateExpense(ctx, row); err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}

	slog.DebugContext(ctx, "Expense saved to SQLite", "id", row.ID, "amount_cents", row.AmountCents)
	return row.toCore(), nil
}

func (r *SQLiteRepository) GetExpense(ctx context.Context, id string) (core.Expense, error) {
	row, err := r.queries.GetExpense(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, ErrNotFound
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense by id: %w", err)
	}
	return row.toCore(), nil
}

func (r *SQLiteRepository) ListExpenses(ctx context.Context, filter core.ExpenseFilter) ([]core.Expense, error) {
	params := listExpensesParams{Category: filter.Category, Limit: filter.Limit}
	if !filter.StartDate.IsZero() {
		from := filter.StartDate.UnixNano()
		params.From = &from
	}
	if !filter.EndDate.IsZero() {
		to := filter.EndDate.UnixNano()
		params.To = &to
	}

	rows, err := r.queries.ListExpenses(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	out := make([]core.Expense, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toCore())
	}
	return out, nil
}

func (r *SQLiteRepository) DeleteExpense(ctx context.Context, id string) error {
	n, err := r.queries.DeleteExpense(ctx, id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.queries.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	out := make([]core.Category, 0, len(rows))
	for _, row := range rows {
		out = append(out, core.Category{ID: row.ID, Name: row.Name, Color: row.Color, Icon: row.Icon})
	}
	return out, nil
}

func (r *SQLiteRepository) CountCategories(ctx context.Context) (int, error) {
	n, err := r.queries.CountCategories(ctx)
	if err != nil {
		return 0, fmt.Errorf("count categories: %w", err)
	}
	return n, nil
}

// CreateCategory checks and inserts inside one transaction; the UNIQUE
// constraint catches writers racing past the check.
func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.NewCategory) (core.Category, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Category{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	q := r.queries.WithTx(tx)
	exists, err := q.CategoryExists(ctx, c.Name)
	if err != nil {
		return core.Category{}, fmt.Errorf("check category: %w", err)
	}
	if exists {
		return core.Category{}, core.ErrDuplicateCategory
	}

	row := categoryRow{ID: uuid.NewString(), Name: c.Name, Color: c.Color, Icon: c.Icon, CreatedAt: r.now().UnixNano()}
	if err := q.CreateCategory(ctx, row); err != nil {
		if isUniqueViolation(err) {
			return core.Category{}, core.ErrDuplicateCategory
		}
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return core.Category{}, fmt.Errorf("commit category: %w", err)
	}
	return core.Category{ID: row.ID, Name: row.Name, Color: row.Color, Icon: row.Icon}, nil
}

func (r *SQLiteRepository) ListBudgets(ctx context.Context) ([]core.Budget, error) {
	rows, err := r.queries.ListBudgets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	out := make([]core.Budget, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toCore())
	}
	return out, nil
}

func (r *SQLiteRepository) CreateBudget(ctx context.Context, b core.NewBudget) (core.Budget, error) {
	row := budgetRow{
		ID:          uuid.NewString(),
		Name:        b.Name,
		AmountCents: b.Amount.Cents,
		Category:    b.Category,
		CreatedAt:   r.now().UnixNano(),
	}
	if err := r.queries.CreateBudget(ctx, row); err != nil {
		return core.Budget{}, fmt.Errorf("create budget: %w", err)
	}
	return row.toCore(), nil
}

func (r *SQLiteRepository) UpdateBudget(ctx context.Context, id string, b core.NewBudget) (core.Budget, error) {
	row := budgetRow{ID: id, Name: b.Name, AmountCents: b.Amount.Cents, Category: b.Category}
	n, err := r.queries.UpdateBudget(ctx, row)
	if err != nil {
		return core.Budget{}, fmt.Errorf("update budget: %w", err)
	}
	if n == 0 {
		return core.Budget{}, ErrNotFound
	}
	return row.toCore(), nil
}

func (r *SQLiteRepository) DeleteBudget(ctx context.Context, id string) error {
	n, err := r.queries.DeleteBudget(ctx, id)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (row budgetRow) toCore() core.Budget {
	return core.Budget{ID: row.ID, Name: row.Name, Amount: core.Money{Cents: row.AmountCents}, Category: row.Category}
}

func (row expenseRow) toCore() core.Expense {
	return core.Expense{
		ID:          row.ID,
		Amount:      core.Money{Cents: row.AmountCents},
		Category:    row.Category,
		Description: row.Description,
		Date:        time.Unix(0, row.OccurredAt).In(time.Local),
	}
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
