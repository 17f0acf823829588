package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"dragonspend/internal/core"
	"dragonspend/internal/service"
)

// expensePayload is the wire shape of an expense. Amounts travel as plain
// JSON numbers.
type expensePayload struct {
	ID          string  `json:"id"`
	Date        string  `json:"date"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
}

func toPayload(e core.Expense) expensePayload {
	return expensePayload{
		ID:          e.ID,
		Date:        e.Date,
		Description: e.Description,
		Amount:      e.Amount.InexactFloat64(),
		Category:    string(e.Category),
	}
}

type breakdownPayload struct {
	Category    string  `json:"category"`
	TotalAmount float64 `json:"totalAmount"`
	Percentage  float64 `json:"percentage"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Warn("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// isValidationError reports whether err stems from caller-supplied fields.
func isValidationError(err error) bool {
	return errors.Is(err, core.ErrEmptyID) ||
		errors.Is(err, core.ErrInvalidDate) ||
		errors.Is(err, core.ErrEmptyDescription) ||
		errors.Is(err, core.ErrInvalidAmount) ||
		errors.Is(err, core.ErrInvalidCategory)
}

func (s *Server) handleExpenses(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListExpenses(w, r)
	case http.MethodPost:
		s.handleCreateExpense(w, r)
	case http.MethodPut:
		s.handleUpdateExpense(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := s.svc.ListExpenses(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list expenses", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load expenses")
		return
	}

	// Always an array, never null.
	payload := make([]expensePayload, 0, len(expenses))
	for _, e := range expenses {
		payload = append(payload, toPayload(e))
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Description string  `json:"description"`
		Amount      float64 `json:"amount"`
		Category    string  `json:"category"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := s.svc.AddExpense(r.Context(), core.ExpenseInput{
		Description: req.Description,
		Amount:      decimal.NewFromFloat(req.Amount),
		Category:    core.Category(req.Category),
	})
	if err != nil {
		if isValidationError(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.ErrorContext(r.Context(), "Failed to add expense", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to add expense")
		return
	}

	writeJSON(w, http.StatusCreated, toPayload(created))
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	var req expensePayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := s.svc.UpdateExpense(r.Context(), core.Expense{
		ID:          req.ID,
		Date:        req.Date,
		Description: req.Description,
		Amount:      decimal.NewFromFloat(req.Amount),
		Category:    core.Category(req.Category),
	})
	if err != nil {
		switch {
		case isValidationError(err):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrNotFound):
			writeError(w, http.StatusNotFound, "expense not found")
		default:
			slog.ErrorContext(r.Context(), "Failed to update expense", "id", req.ID, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to update expense")
		}
		return
	}

	writeJSON(w, http.StatusOK, toPayload(updated))
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	day := time.Now().UTC()
	if v := strings.TrimSpace(r.URL.Query().Get("date")); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		day = parsed
	}

	summary, err := s.svc.SpendingSummary(r.Context(), day)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to compute summary", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to compute summary")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"date":         day.Format("2006-01-02"),
		"dailyTotal":   summary.DailyTotal.InexactFloat64(),
		"monthlyTotal": summary.MonthlyTotal.InexactFloat64(),
		"summary":      summary.Narrative,
	})
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	now := time.Now().UTC()
	year, month := now.Year(), int(now.Month())
	if v := strings.TrimSpace(r.URL.Query().Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "year must be a number")
			return
		}
		year = y
	}
	if v := strings.TrimSpace(r.URL.Query().Get("month")); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m < 1 || m > 12 {
			writeError(w, http.StatusBadRequest, "month must be between 1 and 12")
			return
		}
		month = m
	}

	report, err := s.svc.SpendingInsights(r.Context(), year, time.Month(month))
	if err != nil {
		if errors.Is(err, service.ErrAssistantUnavailable) {
			writeError(w, http.StatusServiceUnavailable, "insights are not configured")
			return
		}
		slog.ErrorContext(r.Context(), "Failed to generate insights", "error", err)
		writeError(w, http.StatusBadGateway, "failed to generate insights")
		return
	}

	breakdown := make([]breakdownPayload, 0, len(report.Breakdown))
	for _, item := range report.Breakdown {
		breakdown = append(breakdown, breakdownPayload{
			Category:    string(item.Category),
			TotalAmount: item.TotalAmount.InexactFloat64(),
			Percentage:  item.Percentage.InexactFloat64(),
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"year":          report.Year,
		"month":         int(report.Month),
		"breakdown":     breakdown,
		"summary":       report.Insights.Summary,
		"topCategories": report.Insights.TopCategories,
		"spendingTips":  report.Insights.SpendingTips,
	})
}

func (s *Server) handleCategorize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	suggestion, err := s.svc.CategorizeExpense(r.Context(), req.Text)
	if err != nil {
		if errors.Is(err, service.ErrAssistantUnavailable) {
			writeError(w, http.StatusServiceUnavailable, "categorization is not configured")
			return
		}
		slog.ErrorContext(r.Context(), "Failed to categorize expense", "error", err)
		writeError(w, http.StatusBadGateway, "failed to categorize expense")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"description": suggestion.Description,
		"amount":      suggestion.Amount.InexactFloat64(),
		"category":    string(suggestion.Category),
	})
}
