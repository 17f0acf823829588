package worker

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"dragonspend/internal/ai"
	"dragonspend/internal/backend"
	"dragonspend/internal/config"
	"dragonspend/internal/core"
	"dragonspend/internal/ledger"
	"dragonspend/internal/ledger/memory"
	"dragonspend/internal/service"
)

type stubAssistant struct {
	insights ai.Insights
}

func (a *stubAssistant) CategorizeExpense(context.Context, string) (ai.Suggestion, error) {
	return ai.Suggestion{}, nil
}

func (a *stubAssistant) SummarizeSpending(context.Context, decimal.Decimal, decimal.Decimal) (string, error) {
	return "", nil
}

func (a *stubAssistant) SpendingInsights(context.Context, []core.BreakdownItem) (ai.Insights, error) {
	return a.insights, nil
}

func TestRefreshMonthAppendsThenUpdates(t *testing.T) {
	expenses := memory.New()
	expenses.Seed(
		[]any{"a", "2024-05-15T09:00:00Z", "Coffee", 5.0, "Outside Food"},
		[]any{"b", "2024-05-10T09:00:00Z", "Bus", 2.0, "Transport"},
	)
	insights := memory.New()
	svc := service.New(expenses, nil, &stubAssistant{insights: ai.Insights{Summary: "mostly food"}})
	w := New(svc, insights, time.Minute)
	ctx := context.Background()

	if err := w.RefreshMonth(ctx, 2024, time.May); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	rows, _ := insights.ReadAll(ctx)
	if len(rows) != 2 {
		t.Fatalf("want header + 1 insights row, got %d", len(rows))
	}
	row := rows[1]
	if row[0] != "2024-05" {
		t.Errorf("month key = %v", row[0])
	}
	if row[1] != 7.0 {
		t.Errorf("total = %v, want 7", row[1])
	}
	if row[2] != "Outside Food" {
		t.Errorf("top category = %v", row[2])
	}
	if row[3] != "mostly food" {
		t.Errorf("narrative = %v", row[3])
	}

	// A second refresh for the same month must update the row in place.
	_ = expenses.Append(ctx, []any{"c", "2024-05-20T09:00:00Z", "Snacks", 3.0, "Outside Food"})
	if err := w.RefreshMonth(ctx, 2024, time.May); err != nil {
		t.Fatalf("second refresh: %v", err)
	}

	rows, _ = insights.ReadAll(ctx)
	if len(rows) != 2 {
		t.Fatalf("refresh must not duplicate the month row: %d rows", len(rows))
	}
	if rows[1][1] != 10.0 {
		t.Errorf("updated total = %v, want 10", rows[1][1])
	}
}

func TestRefreshMonthSkipsEmptyMonth(t *testing.T) {
	insights := memory.New()
	svc := service.New(memory.New(), nil, &stubAssistant{})
	w := New(svc, insights, time.Minute)

	if err := w.RefreshMonth(context.Background(), 2024, time.January); err != nil {
		t.Fatalf("empty month must not fail: %v", err)
	}
	rows, _ := insights.ReadAll(context.Background())
	if len(rows) != 1 {
		t.Fatalf("empty month must not write a row: %v", rows)
	}
}

func TestRefreshMonthLeavesExpenseLedgerIntact(t *testing.T) {
	ctx := context.Background()
	res, err := backend.Open(ctx, &config.Config{
		DataBackend:  "sqlite",
		SQLiteDBPath: filepath.Join(t.TempDir(), "test.db"),
	})
	if err != nil {
		t.Fatalf("open backend: %v", err)
	}
	defer res.Cleanup()

	if err := res.Store.Append(ctx, []any{"a", "2024-05-15T09:00:00Z", "Coffee", 5.0, "Outside Food"}); err != nil {
		t.Fatalf("append expense: %v", err)
	}

	svc := service.New(res.Store, nil, &stubAssistant{insights: ai.Insights{Summary: "mostly food"}})
	w := New(svc, res.Insights, time.Minute)
	if err := w.RefreshMonth(ctx, 2024, time.May); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	listed, err := svc.ListExpenses(ctx)
	if err != nil {
		t.Fatalf("expense ledger must stay readable after an insights refresh: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != "a" {
		t.Fatalf("expense ledger changed by insights refresh: %+v", listed)
	}

	rows, err := res.Insights.ReadAll(ctx)
	if err != nil || len(rows) != 2 {
		t.Fatalf("insight row must land in its own region: rows=%v err=%v", rows, err)
	}
	if rows[1][0] != "2024-05" || rows[1][3] != "mostly food" {
		t.Fatalf("unexpected insights row: %v", rows[1])
	}
}

// bareStore mimics a spreadsheet tab that starts completely empty, without a
// header row.
type bareStore struct {
	rows [][]any
}

func (s *bareStore) Append(_ context.Context, row []any) error {
	s.rows = append(s.rows, row)
	return nil
}

func (s *bareStore) ReadAll(_ context.Context) ([][]any, error) {
	return s.rows, nil
}

func (s *bareStore) LocateByID(_ context.Context, id string) (int, error) {
	for i, row := range s.rows {
		if i == 0 {
			continue
		}
		if len(row) > 0 && fmt.Sprint(row[0]) == id {
			return i + 1, nil
		}
	}
	return 0, ledger.ErrRowNotFound
}

func (s *bareStore) UpdateAt(_ context.Context, rowNum int, row []any) error {
	idx := rowNum - 1
	if idx <= 0 || idx >= len(s.rows) {
		return fmt.Errorf("row %d out of range", rowNum)
	}
	s.rows[idx] = row
	return nil
}

func TestRefreshMonthSeedsHeaderOnFreshRegion(t *testing.T) {
	expenses := memory.New()
	expenses.Seed([]any{"a", "2024-05-15T09:00:00Z", "Coffee", 5.0, "Outside Food"})
	insights := &bareStore{}
	svc := service.New(expenses, nil, &stubAssistant{})
	w := New(svc, insights, time.Minute)
	ctx := context.Background()

	if err := w.RefreshMonth(ctx, 2024, time.May); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	rows, _ := insights.ReadAll(ctx)
	if len(rows) != 2 {
		t.Fatalf("want seeded header + 1 data row, got %v", rows)
	}
	if rows[0][0] != "month" {
		t.Fatalf("first row must be the header, got %v", rows[0])
	}
	if rows[1][0] != "2024-05" {
		t.Fatalf("data row must follow the header, got %v", rows[1])
	}

	// The next refresh must find the data row, not mistake it for a header.
	_ = expenses.Append(ctx, []any{"b", "2024-05-20T09:00:00Z", "Bus", 2.0, "Transport"})
	if err := w.RefreshMonth(ctx, 2024, time.May); err != nil {
		t.Fatalf("second refresh: %v", err)
	}
	rows, _ = insights.ReadAll(ctx)
	if len(rows) != 2 {
		t.Fatalf("refresh must update in place, got %v", rows)
	}
	if rows[1][1] != 7.0 {
		t.Fatalf("updated total = %v, want 7", rows[1][1])
	}
}

func TestRefreshMonthKeepsOtherMonths(t *testing.T) {
	expenses := memory.New()
	expenses.Seed(
		[]any{"a", "2024-04-15T09:00:00Z", "Groceries run", 20.0, "Groceries"},
		[]any{"b", "2024-05-10T09:00:00Z", "Bus", 2.0, "Transport"},
	)
	insights := memory.New()
	svc := service.New(expenses, nil, &stubAssistant{})
	w := New(svc, insights, time.Minute)
	ctx := context.Background()

	if err := w.RefreshMonth(ctx, 2024, time.April); err != nil {
		t.Fatalf("april: %v", err)
	}
	if err := w.RefreshMonth(ctx, 2024, time.May); err != nil {
		t.Fatalf("may: %v", err)
	}

	rows, _ := insights.ReadAll(ctx)
	if len(rows) != 3 {
		t.Fatalf("each month gets its own row: %v", rows)
	}
	if rows[1][0] != "2024-04" || rows[2][0] != "2024-05" {
		t.Fatalf("unexpected month keys: %v %v", rows[1][0], rows[2][0])
	}
}
