// Package api defines the JSON wire format shared by the record store
// server and its client.
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"spendlog/internal/core"
)

// Amount is a money value encoded as a bare JSON decimal number in major units.
type Amount core.Money

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(core.Money(a).Decimal().StringFixed(2)), nil
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(bytes.TrimSpace(data)), `"`)
	if raw == "" || raw == "null" {
		*a = Amount{}
		return nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return fmt.Errorf("parse amount %q: %w", raw, err)
	}
	m, err := core.FromDecimal(d)
	if err != nil {
		return fmt.Errorf("amount %s is out of range: %w", raw, err)
	}
	*a = Amount(m)
	return nil
}

// localLayouts are accepted when a timestamp carries no zone offset.
// Such values are read as local time.
var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// Timestamp is an ISO-8601 instant. It is always written as RFC 3339.
type Timestamp time.Time

func (t Timestamp) Time() time.Time { return time.Time(t) }

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(t).Format(time.RFC3339Nano))
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	parsed, err := ParseTime(s)
	if err != nil {
		return err
	}
	*t = Timestamp(parsed)
	return nil
}

// ParseTime parses RFC 3339 first, then the offset-less layouts in time.Local.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return ts, nil
	}
	for _, layout := range localLayouts {
		if ts, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}

type (
	Expense struct {
		ID          string    `json:"id"`
		Amount      Amount    `json:"amount"`
		Category    string    `json:"category"`
		Description *string   `json:"description"`
		Date        Timestamp `json:"date"`
	}

	NewExpense struct {
		Amount      Amount     `json:"amount"`
		Category    string     `json:"category"`
		Description *string    `json:"description,omitempty"`
		Date        *Timestamp `json:"date,omitempty"`
	}

	Category struct {
		ID    string  `json:"id"`
		Name  string  `json:"name"`
		Color string  `json:"color"`
		Icon  *string `json:"icon"`
	}

	NewCategory struct {
		Name  string  `json:"name"`
		Color string  `json:"color,omitempty"`
		Icon  *string `json:"icon,omitempty"`
	}

	// Budget carries the month-to-date spending computed by the server.
	Budget struct {
		ID       string  `json:"id"`
		Name     string  `json:"name"`
		Amount   Amount  `json:"amount"`
		Spent    Amount  `json:"spent"`
		Category *string `json:"category"`
	}

	NewBudget struct {
		Name     string  `json:"name"`
		Amount   Amount  `json:"amount"`
		Category *string `json:"category,omitempty"`
	}

	CategoryTotal struct {
		Category string `json:"category"`
		Amount   Amount `json:"amount"`
		Count    int    `json:"count"`
	}

	Summary struct {
		TotalAmount   Amount          `json:"total_amount"`
		ExpenseCount  int             `json:"expense_count"`
		TopCategories []CategoryTotal `json:"top_categories"`
	}

	// ErrorResponse carries a FastAPI-style detail, which is either a string
	// or a list of validation issues.
	ErrorResponse struct {
		Detail json.RawMessage `json:"detail,omitempty"`
	}

	ValidationIssue struct {
		Loc  []any  `json:"loc,omitempty"`
		Msg  string `json:"msg"`
		Type string `json:"type,omitempty"`
	}

	HealthResponse struct {
		Status    string    `json:"status"`
		Timestamp Timestamp `json:"timestamp"`
	}

	MessageResponse struct {
		Message string `json:"message"`
	}
)

// NewErrorResponse wraps a plain message as a detail string.
func NewErrorResponse(msg string) ErrorResponse {
	raw, _ := json.Marshal(msg)
	return ErrorResponse{Detail: raw}
}

// Message flattens the detail into a single string. It returns "" when the
// detail is absent or has an unknown shape.
func (e ErrorResponse) Message() string {
	if len(e.Detail) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(e.Detail, &s); err == nil {
		return s
	}
	var issues []ValidationIssue
	if err := json.Unmarshal(e.Detail, &issues); err == nil {
		msgs := make([]string, 0, len(issues))
		for _, is := range issues {
			if is.Msg != "" {
				msgs = append(msgs, is.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}
