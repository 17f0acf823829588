// Package core holds the expense entity and the aggregation engine.
//
// Aggregates are pure functions recomputed from scratch on every call; there
// is no incremental state, so results depend only on the snapshot passed in.
package core

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// BreakdownItem is the per-category aggregate for one period.
type BreakdownItem struct {
	Category    Category
	TotalAmount decimal.Decimal
	Percentage  decimal.Decimal
}

// SpendingSummary pairs the day and month totals with an optional narrative
// produced by the text-generation collaborator. Narrative is empty when the
// collaborator is unavailable or failed.
type SpendingSummary struct {
	DailyTotal   decimal.Decimal
	MonthlyTotal decimal.Decimal
	Narrative    string
}

// DailyTotal sums the amounts of expenses dated on the given calendar day.
// Matching is a prefix comparison against the day's ISO form, which is exact
// because Date always carries a full RFC 3339 timestamp.
func DailyTotal(expenses []Expense, day time.Time) decimal.Decimal {
	prefix := day.Format("2006-01-02")
	total := decimal.Zero
	for _, e := range expenses {
		if strings.HasPrefix(e.Date, prefix) {
			total = total.Add(e.Amount)
		}
	}
	return total
}

// MonthlyTotal sums the amounts of expenses dated within the given month.
func MonthlyTotal(expenses []Expense, year int, month time.Month) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		t, ok := e.OccurredAt()
		if !ok {
			continue
		}
		if t.Year() == year && t.Month() == month {
			total = total.Add(e.Amount)
		}
	}
	return total
}

// CategoryBreakdown buckets the month's expenses by category. Every
// enumeration member starts at zero; zero buckets are dropped after the
// percentages are computed, and the survivors are sorted descending by
// amount with ties keeping the enumeration order.
func CategoryBreakdown(expenses []Expense, year int, month time.Month) []BreakdownItem {
	buckets := make(map[Category]decimal.Decimal, len(AllCategories()))
	for _, c := range AllCategories() {
		buckets[c] = decimal.Zero
	}

	total := decimal.Zero
	for _, e := range expenses {
		t, ok := e.OccurredAt()
		if !ok || t.Year() != year || t.Month() != month {
			continue
		}
		c := e.Category
		if _, known := buckets[c]; !known {
			c = CategoryUncategorized
		}
		buckets[c] = buckets[c].Add(e.Amount)
		total = total.Add(e.Amount)
	}

	items := make([]BreakdownItem, 0, len(buckets))
	for _, c := range AllCategories() {
		amount := buckets[c]
		if amount.IsZero() {
			continue
		}
		pct := decimal.Zero
		if total.IsPositive() {
			pct = amount.Div(total)
		}
		items = append(items, BreakdownItem{Category: c, TotalAmount: amount, Percentage: pct})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].TotalAmount.GreaterThan(items[j].TotalAmount)
	})
	return items
}
