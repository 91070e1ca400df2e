package http

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"spendlog/internal/api"
	"spendlog/internal/core"
	applog "spendlog/internal/log"
	"spendlog/internal/services"
	"spendlog/internal/storage"
)

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var body api.NewExpense
	if err := decodeJSON(w, r, &body); err != nil {
		field := ""
		if errors.Is(err, core.ErrInvalidAmount) {
			field = "amount"
		}
		writeValidation(w, issue("body", field, err.Error()))
		return
	}
	in := body.Core()
	in.Category = sanitizeInput(in.Category)
	in.Description = sanitizeInput(in.Description)

	created, err := s.svc.CreateExpense(r.Context(), in)
	if err != nil {
		var ve *services.ValidationError
		if errors.As(err, &ve) {
			writeValidation(w, issue("body", ve.Field, ve.Err.Error()))
			return
		}
		s.internalError(w, r, applog.OpCreate, err)
		return
	}
	writeJSON(w, http.StatusOK, api.FromExpense(created))
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	filter, issues := parseExpenseFilter(r.URL.Query())
	if len(issues) > 0 {
		writeValidation(w, issues...)
		return
	}
	expenses, err := s.svc.ListExpenses(r.Context(), filter)
	if err != nil {
		var ve *services.ValidationError
		if errors.As(err, &ve) {
			writeValidation(w, issue("query", ve.Field, ve.Err.Error()))
			return
		}
		s.internalError(w, r, applog.OpList, err)
		return
	}
	writeJSON(w, http.StatusOK, api.FromExpenses(expenses))
}

// parseExpenseFilter reads start_date, end_date, category and limit. Every
// malformed parameter is reported, not just the first.
func parseExpenseFilter(q url.Values) (core.ExpenseFilter, []api.ValidationIssue) {
	var filter core.ExpenseFilter
	var issues []api.ValidationIssue

	if v := strings.TrimSpace(q.Get("start_date")); v != "" {
		t, err := api.ParseTime(v)
		if err != nil {
			issues = append(issues, issue("query", "start_date", err.Error()))
		}
		filter.StartDate = t
	}
	if v := strings.TrimSpace(q.Get("end_date")); v != "" {
		t, err := api.ParseTime(v)
		if err != nil {
			issues = append(issues, issue("query", "end_date", err.Error()))
		}
		filter.EndDate = t
	}
	filter.Category = sanitizeInput(q.Get("category"))
	if v := strings.TrimSpace(q.Get("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			issues = append(issues, issue("query", "limit", "limit must be a positive integer"))
		}
		filter.Limit = n
	}
	return filter, issues
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	e, err := s.svc.GetExpense(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Expense not found")
			return
		}
		s.internalError(w, r, "get", err)
		return
	}
	writeJSON(w, http.StatusOK, api.FromExpense(e))
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteExpense(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Expense not found")
			return
		}
		s.internalError(w, r, applog.OpDelete, err)
		return
	}
	writeJSON(w, http.StatusOK, api.MessageResponse{Message: "Expense deleted successfully"})
}

// handleSummary answers 404 for unknown periods, like any unknown path.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	p, err := core.ParsePeriod(r.PathValue("period"))
	if err != nil {
		handleNotFound(w, r)
		return
	}
	summary, err := s.svc.Summary(r.Context(), p)
	if err != nil {
		s.internalError(w, r, applog.OpSummary, err)
		return
	}
	writeJSON(w, http.StatusOK, api.FromSummary(summary))
}
