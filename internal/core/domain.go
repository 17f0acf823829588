package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Category is the closed set of expense categories.
type Category string

const (
	CategoryTransport     Category = "Transport"
	CategoryOutsideFood   Category = "Outside Food"
	CategoryGroceries     Category = "Groceries"
	CategoryEntertainment Category = "Entertainment"
	CategoryUtilities     Category = "Utilities"
	CategoryMiscellaneous Category = "Miscellaneous"

	// CategoryUncategorized marks rows whose category cell was not a
	// recognized member. It is never accepted on writes.
	CategoryUncategorized Category = "Uncategorized"
)

// Categories returns the selectable categories in their fixed order.
func Categories() []Category {
	return []Category{
		CategoryTransport,
		CategoryOutsideFood,
		CategoryGroceries,
		CategoryEntertainment,
		CategoryUtilities,
		CategoryMiscellaneous,
	}
}

// AllCategories returns every category bucketed by aggregation, including
// Uncategorized.
func AllCategories() []Category {
	return append(Categories(), CategoryUncategorized)
}

// ParseCategory maps a raw cell value onto the enumeration. The boolean is
// false when the value is not a recognized member (including Uncategorized).
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.TrimSpace(s))
	if c == CategoryUncategorized {
		return c, true
	}
	for _, known := range Categories() {
		if c == known {
			return c, true
		}
	}
	return "", false
}

// Selectable reports whether the category may appear on a write request.
func (c Category) Selectable() bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

type (
	// Expense is the ledger's unit of record. Date is kept as the raw
	// RFC 3339 string so day filtering can work by prefix match.
	Expense struct {
		ID          string
		Date        string
		Description string
		Amount      decimal.Decimal
		Category    Category
	}

	// ExpenseInput carries the caller-supplied fields of a new expense;
	// id and date are assigned server-side.
	ExpenseInput struct {
		Description string
		Amount      decimal.Decimal
		Category    Category
	}
)

var (
	ErrEmptyID          = errors.New("empty id")
	ErrInvalidDate      = errors.New("invalid date")
	ErrEmptyDescription = errors.New("empty description")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidCategory  = errors.New("invalid category")
)

// Validate checks the caller-supplied fields of a write request.
func (in ExpenseInput) Validate() error {
	if strings.TrimSpace(in.Description) == "" {
		return ErrEmptyDescription
	}
	if !in.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !in.Category.Selectable() {
		return ErrInvalidCategory
	}
	return nil
}

// Validate checks a full entity, as required for updates.
func (e Expense) Validate() error {
	if strings.TrimSpace(e.ID) == "" {
		return ErrEmptyID
	}
	if _, err := time.Parse(time.RFC3339, e.Date); err != nil {
		return ErrInvalidDate
	}
	return ExpenseInput{
		Description: e.Description,
		Amount:      e.Amount,
		Category:    e.Category,
	}.Validate()
}

// OccurredAt parses the expense timestamp. The zero time and false are
// returned for rows whose date cell does not parse.
func (e Expense) OccurredAt() (time.Time, bool) {
	t, err := time.Parse(time.RFC3339, e.Date)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
