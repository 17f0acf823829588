package amqp

import (
	"encoding/json"
	"time"
)

const (
	EventExpenseAdded   = "expense_added"
	EventExpenseUpdated = "expense_updated"
)

// ExpenseEvent is the lightweight change notification published after a
// write. It names the month the change landed in; consumers fetch the rows
// themselves rather than trusting a snapshot carried in the message.
type ExpenseEvent struct {
	Kind      string     `json:"kind"`
	ID        string     `json:"id"`
	Year      int        `json:"year"`
	Month     time.Month `json:"month"`
	Timestamp time.Time  `json:"timestamp"`
}

func NewExpenseEvent(kind, id string, occurredAt time.Time) *ExpenseEvent {
	return &ExpenseEvent{
		Kind:      kind,
		ID:        id,
		Year:      occurredAt.Year(),
		Month:     occurredAt.Month(),
		Timestamp: time.Now(),
	}
}

func (m *ExpenseEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ExpenseEventFromJSON(data []byte) (*ExpenseEvent, error) {
	var msg ExpenseEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
