// Package memory provides an in-memory ledger.Store used by tests and by
// zero-configuration runs. Rows live only for the lifetime of the process.
package memory

import (
	"context"
	"fmt"
	"sync"

	"dragonspend/internal/ledger"
)

type Store struct {
	mu   sync.Mutex
	rows [][]any // rows[0] is the header
}

func New() *Store {
	return &Store{rows: [][]any{ledger.Header()}}
}

// Seed appends raw rows without validation, letting tests plant malformed
// rows the way a hand-edited spreadsheet would.
func (s *Store) Seed(rows ...[]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range rows {
		s.rows = append(s.rows, cloneRow(row))
	}
}

func (s *Store) Append(_ context.Context, row []any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, cloneRow(row))
	return nil
}

func (s *Store) ReadAll(_ context.Context) ([][]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]any, len(s.rows))
	for i, row := range s.rows {
		out[i] = cloneRow(row)
	}
	return out, nil
}

func (s *Store) LocateByID(_ context.Context, id string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, row := range s.rows[1:] {
		if ledger.RowID(row) == id {
			return i + ledger.HeaderRowNum + 1, nil
		}
	}
	return 0, ledger.ErrRowNotFound
}

func (s *Store) UpdateAt(_ context.Context, rowNum int, row []any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := rowNum - 1
	if idx <= 0 || idx >= len(s.rows) {
		return fmt.Errorf("memory: row %d out of range", rowNum)
	}
	s.rows[idx] = cloneRow(row)
	return nil
}

func cloneRow(row []any) []any {
	out := make([]any, len(row))
	copy(out, row)
	return out
}
