// Package sqlite implements ledger.Store on an embedded database. It keeps
// the same row-shape contract as the spreadsheet backend (a synthesized
// header followed by data rows in append order) so either backend can sit
// behind the facade, but LocateByID is an indexed lookup instead of a scan.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"dragonspend/internal/ledger"
)

type Store struct {
	db *sql.DB
}

var _ ledger.Store = (*Store)(nil)

func New(dbPath string) (*Store, error) {
	if dbPath == "" {
		return nil, errors.New("sqlite: missing database path")
	}
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("sqlite: create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: ping database: %w", err)
	}
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) Append(ctx context.Context, row []any) error {
	if len(row) < ledger.ColumnCount {
		return fmt.Errorf("sqlite: row has %d cells, want %d", len(row), ledger.ColumnCount)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO expenses (id, date, description, amount, category) VALUES (?, ?, ?, ?, ?)`,
		cell(row[0]), cell(row[1]), cell(row[2]), row[3], cell(row[4]))
	if err != nil {
		return fmt.Errorf("sqlite: append row: %w", err)
	}
	return nil
}

func (s *Store) ReadAll(ctx context.Context) ([][]any, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, date, description, amount, category FROM expenses ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: read rows: %w", err)
	}
	defer rows.Close()

	out := [][]any{ledger.Header()}
	for rows.Next() {
		var id, date, description, category string
		var amount float64
		if err := rows.Scan(&id, &date, &description, &amount, &category); err != nil {
			return nil, fmt.Errorf("sqlite: scan row: %w", err)
		}
		out = append(out, []any{id, date, description, amount, category})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterate rows: %w", err)
	}
	return out, nil
}

// LocateByID resolves the id through the index and converts the row's
// position in append order to the shared header-offset numbering.
func (s *Store) LocateByID(ctx context.Context, id string) (int, error) {
	var seq int64
	err := s.db.QueryRowContext(ctx,
		`SELECT seq FROM expenses WHERE id = ? ORDER BY seq LIMIT 1`, id).Scan(&seq)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ledger.ErrRowNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("sqlite: locate id: %w", err)
	}

	var position int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM expenses WHERE seq <= ?`, seq).Scan(&position); err != nil {
		return 0, fmt.Errorf("sqlite: resolve row position: %w", err)
	}
	return position + ledger.HeaderRowNum, nil
}

func (s *Store) UpdateAt(ctx context.Context, rowNum int, row []any) error {
	if rowNum <= ledger.HeaderRowNum {
		return fmt.Errorf("sqlite: row %d is not a data row", rowNum)
	}
	if len(row) < ledger.ColumnCount {
		return fmt.Errorf("sqlite: row has %d cells, want %d", len(row), ledger.ColumnCount)
	}

	var seq int64
	err := s.db.QueryRowContext(ctx,
		`SELECT seq FROM expenses ORDER BY seq LIMIT 1 OFFSET ?`,
		rowNum-ledger.HeaderRowNum-1).Scan(&seq)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("sqlite: row %d out of range", rowNum)
	}
	if err != nil {
		return fmt.Errorf("sqlite: resolve row %d: %w", rowNum, err)
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE expenses SET id = ?, date = ?, description = ?, amount = ?, category = ? WHERE seq = ?`,
		cell(row[0]), cell(row[1]), cell(row[2]), row[3], cell(row[4]), seq)
	if err != nil {
		return fmt.Errorf("sqlite: update row %d: %w", rowNum, err)
	}
	return nil
}

func cell(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
