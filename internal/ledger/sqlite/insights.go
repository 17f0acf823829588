package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"dragonspend/internal/ledger"
)

// InsightsStore implements ledger.Store over the insights table so monthly
// narrative rows never land in the expense ledger. Rows follow the
// [month, total, top_category, narrative, generated_at] shape, with the
// month key in the first column acting as the row id.
type InsightsStore struct {
	db *sql.DB
}

var _ ledger.Store = (*InsightsStore)(nil)

// Insights returns a store view over the insights table, sharing the
// database connection. Closing the parent store closes this view too.
func (s *Store) Insights() *InsightsStore {
	return &InsightsStore{db: s.db}
}

func (s *InsightsStore) Append(ctx context.Context, row []any) error {
	if len(row) < ledger.ColumnCount {
		return fmt.Errorf("sqlite: insights row has %d cells, want %d", len(row), ledger.ColumnCount)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO insights (month, total, top_category, narrative, generated_at) VALUES (?, ?, ?, ?, ?)`,
		cell(row[0]), row[1], cell(row[2]), cell(row[3]), cell(row[4]))
	if err != nil {
		return fmt.Errorf("sqlite: append insights row: %w", err)
	}
	return nil
}

func (s *InsightsStore) ReadAll(ctx context.Context) ([][]any, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT month, total, top_category, narrative, generated_at FROM insights ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: read insights rows: %w", err)
	}
	defer rows.Close()

	out := [][]any{ledger.InsightsHeader()}
	for rows.Next() {
		var month, topCategory, narrative, generatedAt string
		var total float64
		if err := rows.Scan(&month, &total, &topCategory, &narrative, &generatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scan insights row: %w", err)
		}
		out = append(out, []any{month, total, topCategory, narrative, generatedAt})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterate insights rows: %w", err)
	}
	return out, nil
}

func (s *InsightsStore) LocateByID(ctx context.Context, id string) (int, error) {
	var seq int64
	err := s.db.QueryRowContext(ctx,
		`SELECT seq FROM insights WHERE month = ? ORDER BY seq LIMIT 1`, id).Scan(&seq)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ledger.ErrRowNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("sqlite: locate insights month: %w", err)
	}

	var position int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM insights WHERE seq <= ?`, seq).Scan(&position); err != nil {
		return 0, fmt.Errorf("sqlite: resolve insights row position: %w", err)
	}
	return position + ledger.HeaderRowNum, nil
}

func (s *InsightsStore) UpdateAt(ctx context.Context, rowNum int, row []any) error {
	if rowNum <= ledger.HeaderRowNum {
		return fmt.Errorf("sqlite: row %d is not a data row", rowNum)
	}
	if len(row) < ledger.ColumnCount {
		return fmt.Errorf("sqlite: insights row has %d cells, want %d", len(row), ledger.ColumnCount)
	}

	var seq int64
	err := s.db.QueryRowContext(ctx,
		`SELECT seq FROM insights ORDER BY seq LIMIT 1 OFFSET ?`,
		rowNum-ledger.HeaderRowNum-1).Scan(&seq)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("sqlite: insights row %d out of range", rowNum)
	}
	if err != nil {
		return fmt.Errorf("sqlite: resolve insights row %d: %w", rowNum, err)
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE insights SET month = ?, total = ?, top_category = ?, narrative = ?, generated_at = ? WHERE seq = ?`,
		cell(row[0]), row[1], cell(row[2]), cell(row[3]), cell(row[4]), seq)
	if err != nil {
		return fmt.Errorf("sqlite: update insights row %d: %w", rowNum, err)
	}
	return nil
}
