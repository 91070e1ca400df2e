package core

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	maxCategoryLen    = 50
	maxDescriptionLen = 200
)

type (
	Money struct {
		Cents int64
	}

	// Expense is a single spending event as stored by the record store.
	Expense struct {
		ID          string
		Amount      Money
		Category    string // soft reference to Category.Name
		Description string
		Date        time.Time
	}

	// NewExpense is the payload sent to the record store to create an Expense.
	NewExpense struct {
		Amount      Money
		Category    string
		Description string
		Date        time.Time
	}

	Category struct {
		ID    string
		Name  string
		Color string
		Icon  string
	}

	NewCategory struct {
		Name  string
		Color string
		Icon  string
	}

	// Budget caps the monthly spending of one category, or of every
	// category when Category is empty.
	Budget struct {
		ID       string
		Name     string
		Amount   Money
		Category string
	}

	NewBudget struct {
		Name     string
		Amount   Money
		Category string
	}

	// BudgetStatus is a Budget with what was spent against it this month.
	BudgetStatus struct {
		Budget
		Spent Money
	}

	// ExpenseFilter narrows an expense listing. Zero values mean "no constraint".
	// Both date bounds are inclusive.
	ExpenseFilter struct {
		StartDate time.Time
		EndDate   time.Time
		Category  string
		Limit     int
	}
)

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrEmptyCategory      = errors.New("empty category")
	ErrCategoryTooLong    = errors.New("category too long (max 50 characters)")
	ErrDescriptionTooLong = errors.New("description too long (max 200 characters)")
	ErrEmptyName          = errors.New("empty category name")
	ErrInvalidColor       = errors.New("invalid color (expected #RRGGBB)")
	ErrDuplicateCategory  = errors.New("category already exists")
	ErrInvalidLimit       = errors.New("invalid limit")
	ErrEmptyBudgetName    = errors.New("empty budget name")
	ErrBudgetNameTooLong  = errors.New("budget name too long (max 50 characters)")
)

var colorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

func (m Money) Validate() error {
	if m.Cents <= 0 || m.Cents > MaxCents {
		return ErrInvalidAmount
	}
	return nil
}

func (e NewExpense) Validate() error {
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	category := strings.TrimSpace(e.Category)
	if category == "" {
		return ErrEmptyCategory
	}
	if len(category) > maxCategoryLen {
		return ErrCategoryTooLong
	}
	if len(e.Description) > maxDescriptionLen {
		return ErrDescriptionTooLong
	}
	return nil
}

// Normalize trims user text and fills a zero date with now.
func (e NewExpense) Normalize(now time.Time) NewExpense {
	e.Category = strings.TrimSpace(e.Category)
	e.Description = strings.TrimSpace(e.Description)
	if e.Date.IsZero() {
		e.Date = now
	}
	return e
}

func (c NewCategory) Validate() error {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return ErrEmptyName
	}
	if len(name) > maxCategoryLen {
		return ErrCategoryTooLong
	}
	if c.Color != "" && !colorPattern.MatchString(c.Color) {
		return ErrInvalidColor
	}
	if len(c.Icon) > maxCategoryLen {
		return fmt.Errorf("icon too long (max %d characters)", maxCategoryLen)
	}
	return nil
}

func (b NewBudget) Validate() error {
	name := strings.TrimSpace(b.Name)
	if name == "" {
		return ErrEmptyBudgetName
	}
	if len(name) > maxCategoryLen {
		return ErrBudgetNameTooLong
	}
	if err := b.Amount.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(b.Category)) > maxCategoryLen {
		return ErrCategoryTooLong
	}
	return nil
}

// Normalize trims the name and category.
func (b NewBudget) Normalize() NewBudget {
	b.Name = strings.TrimSpace(b.Name)
	b.Category = strings.TrimSpace(b.Category)
	return b
}

// Remaining is what is left of the budget; negative once it is exceeded.
func (s BudgetStatus) Remaining() Money {
	return Money{Cents: s.Amount.Cents - s.Spent.Cents}
}

// Exceeded reports whether spending went past the budget.
func (s BudgetStatus) Exceeded() bool {
	return s.Spent.Cents > s.Amount.Cents
}

func (f ExpenseFilter) Validate() error {
	if f.Limit < 0 {
		return ErrInvalidLimit
	}
	if !f.StartDate.IsZero() && !f.EndDate.IsZero() && f.EndDate.Before(f.StartDate) {
		return errors.New("end date must not be before start date")
	}
	return nil
}

// Matches reports whether e satisfies every constraint of the filter except Limit.
func (f ExpenseFilter) Matches(e Expense) bool {
	if !f.StartDate.IsZero() && e.Date.Before(f.StartDate) {
		return false
	}
	if !f.EndDate.IsZero() && e.Date.After(f.EndDate) {
		return false
	}
	if f.Category != "" && e.Category != f.Category {
		return false
	}
	return true
}

// DefaultCategories are seeded into an empty record store.
func DefaultCategories() []NewCategory {
	return []NewCategory{
		{Name: "Food", Color: "#FF6B6B", Icon: "🍔"},
		{Name: "Transportation", Color: "#4ECDC4", Icon: "🚗"},
		{Name: "Entertainment", Color: "#45B7D1", Icon: "🎬"},
		{Name: "Shopping", Color: "#96CEB4", Icon: "🛍️"},
		{Name: "Bills", Color: "#FFEAA7", Icon: "💡"},
		{Name: "Healthcare", Color: "#DDA0DD", Icon: "🏥"},
		{Name: "Other", Color: "#B0B0B0", Icon: "📝"},
	}
}
