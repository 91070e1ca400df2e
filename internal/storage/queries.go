package storage

import (
	"context"
	"database/sql"
	"strings"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

// Queries holds the SQL statements of the repository.
type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type expenseRow struct {
	ID          string
	AmountCents int64
	Category    string
	Description string
	OccurredAt  int64
	CreatedAt   int64
}

type budgetRow struct {
	ID          string
	Name        string
	AmountCents int64
	Category    string
	CreatedAt   int64
}

type categoryRow struct {
	ID        string
	Name      string
	Color     string
	Icon      string
	CreatedAt int64
}

const createExpense = `
INSERT INTO expenses (id, amount_cents, category, description, occurred_at, created_at)
VALUES (?, ?, ?, ?, ?, ?)`

func (q *Queries) CreateExpense(ctx context.Context, arg expenseRow) error {
	_, err := q.db.ExecContext(ctx, createExpense,
		arg.ID, arg.AmountCents, arg.Category, arg.Description, arg.OccurredAt, arg.CreatedAt)
	return err
}

const getExpense = `
SELECT id, amount_cents, category, description, occurred_at, created_at
FROM expenses WHERE id = ?`

func (q *Queries) GetExpense(ctx context.Context, id string) (expenseRow, error) {
	var r expenseRow
	err := q.db.QueryRowContext(ctx, getExpense, id).
		Scan(&r.ID, &r.AmountCents, &r.Category, &r.Description, &r.OccurredAt, &r.CreatedAt)
	return r, err
}

type listExpensesParams struct {
	From     *int64
	To       *int64
	Category string
	Limit    int
}

// ListExpenses builds the WHERE clause from the non-empty params.
func (q *Queries) ListExpenses(ctx context.Context, arg listExpensesParams) ([]expenseRow, error) {
	var (
		sb    strings.Builder
		where []string
		args  []any
	)
	sb.WriteString("SELECT id, amount_cents, category, description, occurred_at, created_at FROM expenses")
	if arg.From != nil {
		where = append(where, "occurred_at >= ?")
		args = append(args, *arg.From)
	}
	if arg.To != nil {
		where = append(where, "occurred_at <= ?")
		args = append(args, *arg.To)
	}
	if arg.Category != "" {
		where = append(where, "category = ?")
		args = append(args, arg.Category)
	}
	if len(where) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(where, " AND "))
	}
	sb.WriteString(" ORDER BY occurred_at DESC, created_at DESC, rowid DESC")
	if arg.Limit > 0 {
		sb.WriteString(" LIMIT ?")
		args = append(args, arg.Limit)
	}

	rows, err := q.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []expenseRow
	for rows.Next() {
		var r expenseRow
		if err := rows.Scan(&r.ID, &r.AmountCents, &r.Category, &r.Description, &r.OccurredAt, &r.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteExpense = `DELETE FROM expenses WHERE id = ?`

func (q *Queries) DeleteExpense(ctx context.Context, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteExpense, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const listCategories = `
SELECT id, name, color, icon, created_at FROM categories ORDER BY created_at, rowid`

func (q *Queries) ListCategories(ctx context.Context) ([]categoryRow, error) {
	rows, err := q.db.QueryContext(ctx, listCategories)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []categoryRow
	for rows.Next() {
		var r categoryRow
		if err := rows.Scan(&r.ID, &r.Name, &r.Color, &r.Icon, &r.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const categoryExists = `SELECT COUNT(*) FROM categories WHERE name = ?`

func (q *Queries) CategoryExists(ctx context.Context, name string) (bool, error) {
	var n int
	err := q.db.QueryRowContext(ctx, categoryExists, name).Scan(&n)
	return n > 0, err
}

const countCategories = `SELECT COUNT(*) FROM categories`

func (q *Queries) CountCategories(ctx context.Context) (int, error) {
	var n int
	err := q.db.QueryRowContext(ctx, countCategories).Scan(&n)
	return n, err
}

const createCategory = `
INSERT INTO categories (id, name, color, icon, created_at) VALUES (?, ?, ?, ?, ?)`

func (q *Queries) CreateCategory(ctx context.Context, arg categoryRow) error {
	_, err := q.db.ExecContext(ctx, createCategory, arg.ID, arg.Name, arg.Color, arg.Icon, arg.CreatedAt)
	return err
}

const listBudgets = `
SELECT id, name, amount_cents, category, created_at FROM budgets ORDER BY created_at, rowid`

func (q *Queries) ListBudgets(ctx context.Context) ([]budgetRow, error) {
	rows, err := q.db.QueryContext(ctx, listBudgets)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []budgetRow
	for rows.Next() {
		var r budgetRow
		if err := rows.Scan(&r.ID, &r.Name, &r.AmountCents, &r.Category, &r.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createBudget = `
INSERT INTO budgets (id, name, amount_cents, category, created_at) VALUES (?, ?, ?, ?, ?)`

func (q *Queries) CreateBudget(ctx context.Context, arg budgetRow) error {
	_, err := q.db.ExecContext(ctx, createBudget, arg.ID, arg.Name, arg.AmountCents, arg.Category, arg.CreatedAt)
	return err
}

const updateBudget = `
UPDATE budgets SET name = ?, amount_cents = ?, category = ? WHERE id = ?`

func (q *Queries) UpdateBudget(ctx context.Context, arg budgetRow) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateBudget, arg.Name, arg.AmountCents, arg.Category, arg.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteBudget = `DELETE FROM budgets WHERE id = ?`

func (q *Queries) DeleteBudget(ctx context.Context, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteBudget, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
