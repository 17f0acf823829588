package ledger

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"dragonspend/internal/core"
)

// Header returns the fixed header row of the expense table region.
func Header() []any {
	return []any{"id", "date", "description", "amount", "category"}
}

// InsightsHeader returns the fixed header row of the insights region. The
// month key in the first column is the row id.
func InsightsHeader() []any {
	return []any{"month", "total", "top_category", "narrative", "generated_at"}
}

// EncodeRow maps an expense onto the fixed 5-cell row shape. The amount is
// emitted as a plain number, not a formatted string.
func EncodeRow(e core.Expense) []any {
	return []any{
		e.ID,
		e.Date,
		e.Description,
		e.Amount.InexactFloat64(),
		string(e.Category),
	}
}

// DecodeRow maps a raw row onto an expense. The boolean is false when the
// row is malformed and must be skipped: fewer than 5 cells, or an amount
// cell that is not a positive number.
//
// Empty id and date cells get generated fallbacks so that rows edited by
// hand in the spreadsheet stay readable; well-formed rows decode to the same
// entity every time.
func DecodeRow(row []any) (core.Expense, bool) {
	if len(row) < ColumnCount {
		return core.Expense{}, false
	}

	amount, err := strconv.ParseFloat(cellString(row[3]), 64)
	if err != nil || amount <= 0 {
		return core.Expense{}, false
	}

	id := cellString(row[0])
	if id == "" {
		id = uuid.NewString()
	}
	date := cellString(row[1])
	if date == "" {
		date = time.Now().UTC().Format(time.RFC3339)
	}
	description := cellString(row[2])
	if description == "" {
		description = "N/A"
	}
	category, ok := core.ParseCategory(cellString(row[4]))
	if !ok {
		category = core.CategoryUncategorized
	}

	return core.Expense{
		ID:          id,
		Date:        date,
		Description: description,
		Amount:      decimal.NewFromFloat(amount),
		Category:    category,
	}, true
}

// DecodeRows decodes every data row in a ReadAll result, skipping the header
// and silently dropping malformed rows.
func DecodeRows(rows [][]any) []core.Expense {
	expenses := make([]core.Expense, 0, len(rows))
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		e, ok := DecodeRow(row)
		if !ok {
			continue
		}
		expenses = append(expenses, e)
	}
	return expenses
}

// RowID returns the id cell of a raw row, or "" for rows too short to
// carry one.
func RowID(row []any) string {
	if len(row) == 0 {
		return ""
	}
	return cellString(row[0])
}

func cellString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case nil:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(val))
	}
}
