package amqp

import (
	"testing"
	"time"
)

func TestNewExpenseEvent(t *testing.T) {
	occurred := time.Date(2024, time.May, 15, 10, 0, 0, 0, time.UTC)
	event := NewExpenseEvent(EventExpenseAdded, "abc", occurred)

	if event.Kind != EventExpenseAdded || event.ID != "abc" {
		t.Errorf("unexpected event: %+v", event)
	}
	if event.Year != 2024 || event.Month != time.May {
		t.Errorf("event should carry the month the change landed in: %+v", event)
	}
	if event.Timestamp.IsZero() {
		t.Error("timestamp should be set")
	}
}

func TestExpenseEvent_JSON(t *testing.T) {
	event := &ExpenseEvent{
		Kind:      EventExpenseUpdated,
		ID:        "abc",
		Year:      2024,
		Month:     time.May,
		Timestamp: time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC),
	}

	body, err := event.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	parsed, err := ExpenseEventFromJSON(body)
	if err != nil {
		t.Fatalf("ExpenseEventFromJSON() error = %v", err)
	}
	if parsed.Kind != event.Kind || parsed.ID != event.ID ||
		parsed.Year != event.Year || parsed.Month != event.Month {
		t.Errorf("round trip mismatch: %+v", parsed)
	}
	if !parsed.Timestamp.Equal(event.Timestamp) {
		t.Errorf("timestamp mismatch: %v", parsed.Timestamp)
	}
}

func TestExpenseEvent_InvalidJSON(t *testing.T) {
	if _, err := ExpenseEventFromJSON([]byte(`{"year": "not_a_number"}`)); err == nil {
		t.Error("expected error for invalid JSON")
	}
}
