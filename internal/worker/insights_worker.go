// Package worker maintains the insights table: one narrated row per month,
// recomputed whenever an expense in that month changes and refreshed
// periodically for the current month.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"dragonspend/internal/amqp"
	"dragonspend/internal/ledger"
	"dragonspend/internal/service"
)

// EventSource is the slice of the AMQP client the worker consumes from.
type EventSource interface {
	ConsumeExpenseEvents(ctx context.Context, handler func(*amqp.ExpenseEvent) error) error
}

// InsightsWorker reacts to expense change events by recomputing the monthly
// report and upserting it into the insights table. The month key in the
// first column doubles as the row id for the locate-then-update cycle.
type InsightsWorker struct {
	svc      *service.ExpenseService
	insights ledger.Store
	interval time.Duration
}

func New(svc *service.ExpenseService, insights ledger.Store, interval time.Duration) *InsightsWorker {
	return &InsightsWorker{svc: svc, insights: insights, interval: interval}
}

// Run consumes change events and refreshes the current month on a timer
// until ctx is cancelled.
func (w *InsightsWorker) Run(ctx context.Context, source EventSource) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return source.ConsumeExpenseEvents(ctx, func(event *amqp.ExpenseEvent) error {
			return w.RefreshMonth(ctx, event.Year, event.Month)
		})
	})

	g.Go(func() error {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				now := time.Now().UTC()
				if err := w.RefreshMonth(ctx, now.Year(), now.Month()); err != nil {
					slog.ErrorContext(ctx, "Periodic insights refresh failed", "error", err)
				}
			}
		}
	})

	return g.Wait()
}

// RefreshMonth recomputes one month's report and writes it into the
// insights table, updating the month's existing row if there is one.
func (w *InsightsWorker) RefreshMonth(ctx context.Context, year int, month time.Month) error {
	report, err := w.svc.SpendingInsights(ctx, year, month)
	if err != nil {
		return fmt.Errorf("compute insights for %d-%02d: %w", year, month, err)
	}
	if len(report.Breakdown) == 0 {
		slog.InfoContext(ctx, "No expenses for month, skipping insights row", "year", year, "month", month)
		return nil
	}

	total := decimal.Zero
	for _, item := range report.Breakdown {
		total = total.Add(item.TotalAmount)
	}

	monthKey := fmt.Sprintf("%04d-%02d", year, month)
	row := []any{
		monthKey,
		total.InexactFloat64(),
		string(report.Breakdown[0].Category),
		report.Insights.Summary,
		time.Now().UTC().Format(time.RFC3339),
	}

	rowNum, err := w.insights.LocateByID(ctx, monthKey)
	switch {
	case err == nil:
		if err := w.insights.UpdateAt(ctx, rowNum, row); err != nil {
			return fmt.Errorf("update insights row %s: %w", monthKey, err)
		}
	case errors.Is(err, ledger.ErrRowNotFound):
		if err := w.ensureHeader(ctx); err != nil {
			return fmt.Errorf("seed insights header: %w", err)
		}
		if err := w.insights.Append(ctx, row); err != nil {
			return fmt.Errorf("append insights row %s: %w", monthKey, err)
		}
	default:
		return fmt.Errorf("locate insights row %s: %w", monthKey, err)
	}

	slog.InfoContext(ctx, "Refreshed monthly insights",
		"month", monthKey,
		"total", total.String(),
		"top_category", string(report.Breakdown[0].Category))
	return nil
}

// ensureHeader seeds the header row on a completely empty insights region,
// so the first data row cannot be mistaken for the header by later locates.
func (w *InsightsWorker) ensureHeader(ctx context.Context) error {
	rows, err := w.insights.ReadAll(ctx)
	if err != nil {
		return err
	}
	if len(rows) > 0 {
		return nil
	}
	return w.insights.Append(ctx, ledger.InsightsHeader())
}
