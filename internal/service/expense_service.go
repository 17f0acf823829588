// Package service implements the application facade over the ledger store,
// the aggregation engine and the AI assistant. Handlers and workers call it
// instead of touching the backends directly.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"dragonspend/internal/ai"
	"dragonspend/internal/amqp"
	"dragonspend/internal/core"
	"dragonspend/internal/ledger"
)

var (
	// ErrNotFound means no ledger row carries the requested id.
	ErrNotFound = errors.New("expense not found")
	// ErrAssistantUnavailable means the operation needs the AI assistant and
	// none is configured.
	ErrAssistantUnavailable = errors.New("assistant not configured")
)

// ChangePublisher is the slice of the AMQP client the facade needs. A nil
// publisher disables change events without disabling writes.
type ChangePublisher interface {
	PublishExpenseChange(ctx context.Context, event *amqp.ExpenseEvent) error
}

// InsightsReport pairs the computed monthly breakdown with the assistant's
// reading of it.
type InsightsReport struct {
	Year      int
	Month     time.Month
	Breakdown []core.BreakdownItem
	Insights  ai.Insights
}

type ExpenseService struct {
	store     ledger.Store
	publisher ChangePublisher
	assistant ai.Assistant
}

// New builds the facade. publisher and assistant may be nil; the features
// that need them degrade instead of failing construction.
func New(store ledger.Store, publisher ChangePublisher, assistant ai.Assistant) *ExpenseService {
	return &ExpenseService{store: store, publisher: publisher, assistant: assistant}
}

// AddExpense validates the input, assigns the id and timestamp and appends
// the encoded row. The created entity is returned so callers see the
// assigned fields.
func (s *ExpenseService) AddExpense(ctx context.Context, in core.ExpenseInput) (core.Expense, error) {
	if err := in.Validate(); err != nil {
		return core.Expense{}, err
	}

	expense := core.Expense{
		ID:          uuid.NewString(),
		Date:        time.Now().UTC().Format(time.RFC3339),
		Description: in.Description,
		Amount:      in.Amount,
		Category:    in.Category,
	}

	if err := s.store.Append(ctx, ledger.EncodeRow(expense)); err != nil {
		return core.Expense{}, fmt.Errorf("append expense: %w", err)
	}

	s.publish(ctx, amqp.EventExpenseAdded, expense)
	return expense, nil
}

// ListExpenses returns every well-formed expense in ledger order. Malformed
// rows are dropped, never surfaced as errors.
func (s *ExpenseService) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	rows, err := s.store.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("read expenses: %w", err)
	}
	return ledger.DecodeRows(rows), nil
}

// UpdateExpense replaces the row identified by expense.ID in place. The date
// is caller-supplied and kept as-is, so an update preserves the original
// timestamp unless the caller changes it.
func (s *ExpenseService) UpdateExpense(ctx context.Context, expense core.Expense) (core.Expense, error) {
	if err := expense.Validate(); err != nil {
		return core.Expense{}, err
	}

	rowNum, err := s.store.LocateByID(ctx, expense.ID)
	if errors.Is(err, ledger.ErrRowNotFound) {
		return core.Expense{}, ErrNotFound
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("locate expense %s: %w", expense.ID, err)
	}

	if err := s.store.UpdateAt(ctx, rowNum, ledger.EncodeRow(expense)); err != nil {
		return core.Expense{}, fmt.Errorf("update expense %s: %w", expense.ID, err)
	}

	s.publish(ctx, amqp.EventExpenseUpdated, expense)
	return expense, nil
}

// SpendingSummary computes the totals for the given day and its month. The
// narrative is best effort: a missing or failing assistant leaves it empty.
func (s *ExpenseService) SpendingSummary(ctx context.Context, day time.Time) (core.SpendingSummary, error) {
	expenses, err := s.ListExpenses(ctx)
	if err != nil {
		return core.SpendingSummary{}, err
	}

	summary := core.SpendingSummary{
		DailyTotal:   core.DailyTotal(expenses, day),
		MonthlyTotal: core.MonthlyTotal(expenses, day.Year(), day.Month()),
	}

	if s.assistant != nil {
		narrative, err := s.assistant.SummarizeSpending(ctx, summary.DailyTotal, summary.MonthlyTotal)
		if err != nil {
			slog.WarnContext(ctx, "Spending narrative unavailable", "error", err)
		} else {
			summary.Narrative = narrative
		}
	}

	return summary, nil
}

// MonthlyBreakdown computes the category breakdown for one month.
func (s *ExpenseService) MonthlyBreakdown(ctx context.Context, year int, month time.Month) ([]core.BreakdownItem, error) {
	expenses, err := s.ListExpenses(ctx)
	if err != nil {
		return nil, err
	}
	return core.CategoryBreakdown(expenses, year, month), nil
}

// SpendingInsights asks the assistant to analyze one month's breakdown.
func (s *ExpenseService) SpendingInsights(ctx context.Context, year int, month time.Month) (InsightsReport, error) {
	if s.assistant == nil {
		return InsightsReport{}, ErrAssistantUnavailable
	}

	breakdown, err := s.MonthlyBreakdown(ctx, year, month)
	if err != nil {
		return InsightsReport{}, err
	}

	insights, err := s.assistant.SpendingInsights(ctx, breakdown)
	if err != nil {
		return InsightsReport{}, fmt.Errorf("generate insights: %w", err)
	}

	return InsightsReport{Year: year, Month: month, Breakdown: breakdown, Insights: insights}, nil
}

// CategorizeExpense parses a free-form expense phrase through the assistant.
func (s *ExpenseService) CategorizeExpense(ctx context.Context, text string) (ai.Suggestion, error) {
	if s.assistant == nil {
		return ai.Suggestion{}, ErrAssistantUnavailable
	}
	suggestion, err := s.assistant.CategorizeExpense(ctx, text)
	if err != nil {
		return ai.Suggestion{}, fmt.Errorf("categorize expense: %w", err)
	}
	return suggestion, nil
}

// publish emits a change event when a publisher is configured. Failures are
// logged, not returned; the write already succeeded.
func (s *ExpenseService) publish(ctx context.Context, kind string, expense core.Expense) {
	if s.publisher == nil {
		return
	}
	occurredAt, ok := expense.OccurredAt()
	if !ok {
		occurredAt = time.Now().UTC()
	}
	if err := s.publisher.PublishExpenseChange(ctx, amqp.NewExpenseEvent(kind, expense.ID, occurredAt)); err != nil {
		slog.WarnContext(ctx, "Failed to publish expense event", "kind", kind, "id", expense.ID, "error", err)
	}
}
