package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"spendlog/internal/core"
)

type EventType string

const (
	EventExpenseCreated EventType = "expense.created"
	EventExpenseDeleted EventType = "expense.deleted"
)

// ExpenseEvent announces a committed change to the expense set. Created
// events carry the full record; deleted events only the id.
type ExpenseEvent struct {
	Type        EventType  `json:"type"`
	ID          string     `json:"id"`
	AmountCents int64      `json:"amount_cents,omitempty"`
	Category    string     `json:"category,omitempty"`
	Description string     `json:"description,omitempty"`
	Date        *time.Time `json:"date,omitempty"`
	Timestamp   time.Time  `json:"timestamp"`
}

func NewCreatedEvent(e core.Expense, now time.Time) *ExpenseEvent {
	date := e.Date
	return &ExpenseEvent{
		Type:        EventExpenseCreated,
		ID:          e.ID,
		AmountCents: e.Amount.Cents,
		Category:    e.Category,
		Description: e.Description,
		Date:        &date,
		Timestamp:   now,
	}
}

func NewDeletedEvent(id string, now time.Time) *ExpenseEvent {
	return &ExpenseEvent{Type: EventExpenseDeleted, ID: id, Timestamp: now}
}

// Expense rebuilds the record carried by a created event.
func (m *ExpenseEvent) Expense() core.Expense {
	e := core.Expense{
		ID:          m.ID,
		Amount:      core.Money{Cents: m.AmountCents},
		Category:    m.Category,
		Description: m.Description,
	}
	if m.Date != nil {
		e.Date = *m.Date
	}
	return e
}

func (m *ExpenseEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// EventFromJSON decodes and checks an event body.
func EventFromJSON(data []byte) (*ExpenseEvent, error) {
	var msg ExpenseEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.ID == "" {
		return nil, errors.New("event without id")
	}
	switch msg.Type {
	case EventExpenseCreated:
		if msg.AmountCents <= 0 || msg.Date == nil {
			return nil, fmt.Errorf("incomplete %s event for %s", msg.Type, msg.ID)
		}
	case EventExpenseDeleted:
	default:
		return nil, fmt.Errorf("unknown event type %q", msg.Type)
	}
	return &msg, nil
}
