// Package backend selects and wires a ledger.Store implementation from the
// runtime configuration.
package backend

import (
	"context"
	"fmt"
	"log/slog"

	"dragonspend/internal/config"
	"dragonspend/internal/ledger"
	"dragonspend/internal/ledger/memory"
	"dragonspend/internal/ledger/sheets"
	"dragonspend/internal/ledger/sqlite"
)

// Result bundles the selected store with its teardown. Insights is a
// separate region for the worker's monthly rows; it never aliases Store, so
// insight rows cannot leak into the expense ledger. Cleanup is always
// non-nil so callers can defer it unconditionally.
type Result struct {
	Store    ledger.Store
	Insights ledger.Store
	Cleanup  func() error
}

// Open builds the stores named by cfg.DataBackend.
func Open(ctx context.Context, cfg *config.Config) (*Result, error) {
	switch cfg.DataBackend {
	case "memory":
		slog.Info("Using in-memory backend; data will not survive restarts")
		return &Result{
			Store:    memory.New(),
			Insights: memory.New(),
			Cleanup:  func() error { return nil },
		}, nil

	case "sqlite":
		store, err := sqlite.New(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite backend: %w", err)
		}
		slog.Info("Using sqlite backend", "path", cfg.SQLiteDBPath)
		return &Result{
			Store:    store,
			Insights: store.Insights(),
			Cleanup:  store.Close,
		}, nil

	case "sheets":
		store, err := sheets.New(ctx, sheets.Config{
			SpreadsheetID:   cfg.GoogleSheetID,
			SheetName:       cfg.GoogleSheetName,
			CredentialsJSON: cfg.GoogleCredentialsJSON,
			CredentialsFile: cfg.GoogleCredentialsFile,
		})
		if err != nil {
			return nil, fmt.Errorf("initialize sheets backend: %w", err)
		}
		insightsSheet := cfg.InsightsSheetName
		if insightsSheet == "" {
			insightsSheet = "Insights"
		}
		slog.Info("Using sheets backend", "spreadsheet_id", cfg.GoogleSheetID, "sheet", cfg.GoogleSheetName, "insights_sheet", insightsSheet)
		return &Result{
			Store:    store,
			Insights: store.WithSheet(insightsSheet),
			Cleanup:  func() error { return nil },
		}, nil

	default:
		return nil, fmt.Errorf("unsupported data backend: %s", cfg.DataBackend)
	}
}
