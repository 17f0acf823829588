// Package ledger defines the row-level contract over the expense table and
// the codec between flat rows and expense entities.
package ledger

import (
	"context"
	"errors"
)

// ColumnCount is the fixed width of a ledger row: id, date, description,
// amount, category.
const ColumnCount = 5

// HeaderRowNum is the backing-store row number of the header; the first data
// row is HeaderRowNum+1.
const HeaderRowNum = 1

var (
	// ErrRowNotFound signals that LocateByID found no row with the given id.
	// Callers must be able to tell this apart from transport failures.
	ErrRowNotFound = errors.New("ledger: row not found")

	// ErrResourceNotFound means the backing table itself is missing
	// (wrong spreadsheet id or tab name).
	ErrResourceNotFound = errors.New("ledger: backing table not found")

	// ErrAccessDenied means the credentials lack access to the table.
	ErrAccessDenied = errors.New("ledger: access to backing table denied")
)

// Store is the contract every ledger backend implements. The table region
// always carries one header row that is never treated as data.
//
// Locate-then-update is not atomic end to end: two writers racing on the
// same id are last-writer-wins, with no version check.
type Store interface {
	// Append adds one row at the end of the table region with a single
	// atomic row-append.
	Append(ctx context.Context, row []any) error

	// ReadAll returns every row in the region including the header.
	// A header-only or empty region yields a short result, not an error.
	ReadAll(ctx context.Context) ([][]any, error)

	// LocateByID returns the backing-store row number of the first row
	// whose first column equals id; data row 0 maps to row 2 (the header
	// is row 1). Returns ErrRowNotFound when no row matches.
	LocateByID(ctx context.Context, id string) (int, error)

	// UpdateAt replaces the full contents of the row at a previously
	// located row number with a single atomic row-write.
	UpdateAt(ctx context.Context, rowNum int, row []any) error
}
