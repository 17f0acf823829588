package memory

import (
	"context"
	"errors"
	"testing"

	"dragonspend/internal/ledger"
)

func TestAppendAndReadAll(t *testing.T) {
	s := New()
	ctx := context.Background()

	rows, err := s.ReadAll(ctx)
	if err != nil || len(rows) != 1 {
		t.Fatalf("header-only store: rows=%v err=%v", rows, err)
	}

	if err := s.Append(ctx, []any{"a", "2024-05-01T10:00:00Z", "Coffee", 5.0, "Outside Food"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	rows, _ = s.ReadAll(ctx)
	if len(rows) != 2 || ledger.RowID(rows[1]) != "a" {
		t.Fatalf("unexpected rows: %v", rows)
	}
}

func TestLocateByID(t *testing.T) {
	s := New()
	ctx := context.Background()
	_ = s.Append(ctx, []any{"a", "d", "x", 1.0, "Transport"})
	_ = s.Append(ctx, []any{"b", "d", "y", 2.0, "Transport"})
	_ = s.Append(ctx, []any{"b", "d", "dup", 3.0, "Transport"})

	// First data row maps to row 2.
	if got, err := s.LocateByID(ctx, "a"); err != nil || got != 2 {
		t.Fatalf("locate a: got %d err=%v", got, err)
	}
	// First match wins for duplicated ids.
	if got, err := s.LocateByID(ctx, "b"); err != nil || got != 3 {
		t.Fatalf("locate b: got %d err=%v", got, err)
	}
	if _, err := s.LocateByID(ctx, "missing"); !errors.Is(err, ledger.ErrRowNotFound) {
		t.Fatalf("expected ErrRowNotFound, got %v", err)
	}
}

func TestUpdateAt(t *testing.T) {
	s := New()
	ctx := context.Background()
	_ = s.Append(ctx, []any{"a", "d", "x", 1.0, "Transport"})

	if err := s.UpdateAt(ctx, 2, []any{"a", "d", "renamed", 9.0, "Groceries"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	rows, _ := s.ReadAll(ctx)
	if rows[1][2] != "renamed" {
		t.Fatalf("update not applied: %v", rows[1])
	}

	if err := s.UpdateAt(ctx, 1, []any{"h"}); err == nil {
		t.Fatalf("updating the header row must fail")
	}
	if err := s.UpdateAt(ctx, 99, []any{"z"}); err == nil {
		t.Fatalf("out-of-range update must fail")
	}
}

func TestReadAllReturnsCopies(t *testing.T) {
	s := New()
	ctx := context.Background()
	_ = s.Append(ctx, []any{"a", "d", "x", 1.0, "Transport"})

	rows, _ := s.ReadAll(ctx)
	rows[1][2] = "mutated"

	again, _ := s.ReadAll(ctx)
	if again[1][2] != "x" {
		t.Fatalf("caller mutation leaked into the store: %v", again[1])
	}
}
