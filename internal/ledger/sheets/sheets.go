// Package sheets implements ledger.Store on top of a Google Sheets table
// region. The region is a fixed <tab>!A:E span whose first row is the header.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"google.golang.org/api/googleapi"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"dragonspend/internal/ledger"
)

// Config identifies the backing spreadsheet. Missing fields are a fatal
// configuration error raised at construction, before any network access.
type Config struct {
	SpreadsheetID string
	SheetName     string
	// Exactly one of CredentialsJSON / CredentialsFile must be set.
	CredentialsJSON string
	CredentialsFile string
}

type Store struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

var _ ledger.Store = (*Store)(nil)

// New validates the configuration and builds the Sheets client. It performs
// no network calls; a misconfigured table fails here, unreachable ones fail
// on first use.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("sheets: missing spreadsheet id")
	}
	if strings.TrimSpace(cfg.SheetName) == "" {
		return nil, errors.New("sheets: missing sheet name")
	}

	credentials, err := loadCredentials(cfg)
	if err != nil {
		return nil, err
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentials),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("sheets: create service: %w", err)
	}

	return &Store{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		sheetName:     cfg.SheetName,
	}, nil
}

func loadCredentials(cfg Config) ([]byte, error) {
	switch {
	case strings.TrimSpace(cfg.CredentialsJSON) != "":
		return []byte(cfg.CredentialsJSON), nil
	case strings.TrimSpace(cfg.CredentialsFile) != "":
		b, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("sheets: read credentials file: %w", err)
		}
		return b, nil
	default:
		return nil, errors.New("sheets: missing service account credentials")
	}
}

// WithSheet returns a store bound to a different tab of the same
// spreadsheet, sharing the authenticated client.
func (s *Store) WithSheet(name string) *Store {
	return &Store{svc: s.svc, spreadsheetID: s.spreadsheetID, sheetName: name}
}

func (s *Store) tableRange() string {
	return fmt.Sprintf("%s!A:E", s.sheetName)
}

func (s *Store) rowRange(rowNum int) string {
	return fmt.Sprintf("%s!A%d:E%d", s.sheetName, rowNum, rowNum)
}

// Append adds one row at the end of the region with a single values.append
// call; the backing store picks the position.
func (s *Store) Append(ctx context.Context, row []any) error {
	vr := &gsheet.ValueRange{Values: [][]any{row}}
	_, err := s.svc.Spreadsheets.Values.Append(s.spreadsheetID, s.tableRange(), vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return s.classify("append", err)
	}
	return nil
}

// ReadAll returns every row in the region, header included. An empty sheet
// yields no rows and no error.
func (s *Store) ReadAll(ctx context.Context) ([][]any, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, s.tableRange()).Context(ctx).Do()
	if err != nil {
		return nil, s.classify("read", err)
	}
	return resp.Values, nil
}

// LocateByID scans the region for the first row whose id cell matches. The
// backing store has no keyed lookup, so every locate is a full read.
func (s *Store) LocateByID(ctx context.Context, id string) (int, error) {
	rows, err := s.ReadAll(ctx)
	if err != nil {
		return 0, err
	}
	if len(rows) <= 1 {
		return 0, ledger.ErrRowNotFound
	}
	for i, row := range rows[1:] {
		if ledger.RowID(row) == id {
			return i + ledger.HeaderRowNum + 1, nil
		}
	}
	return 0, ledger.ErrRowNotFound
}

// UpdateAt replaces the row at rowNum with a single values.update call.
func (s *Store) UpdateAt(ctx context.Context, rowNum int, row []any) error {
	if rowNum <= ledger.HeaderRowNum {
		return fmt.Errorf("sheets: row %d is not a data row", rowNum)
	}
	vr := &gsheet.ValueRange{Values: [][]any{row}}
	_, err := s.svc.Spreadsheets.Values.Update(s.spreadsheetID, s.rowRange(rowNum), vr).
		ValueInputOption("USER_ENTERED").
		Context(ctx).Do()
	if err != nil {
		return s.classify("update", err)
	}
	return nil
}

// classify distinguishes the failure causes that need different operator
// remediation: missing resource, missing access, everything else.
func (s *Store) classify(op string, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusNotFound:
			return fmt.Errorf("%s %s: check the spreadsheet id and the %q tab: %w",
				op, s.spreadsheetID, s.sheetName, ledger.ErrResourceNotFound)
		case http.StatusForbidden:
			return fmt.Errorf("%s %s: share the spreadsheet with the service account: %w",
				op, s.spreadsheetID, ledger.ErrAccessDenied)
		}
	}
	slog.Warn("Sheets call failed", "operation", op, "spreadsheet_id", s.spreadsheetID, "sheet", s.sheetName, "error", err)
	return fmt.Errorf("sheets: %s %s!%s: %w", op, s.spreadsheetID, s.sheetName, err)
}
