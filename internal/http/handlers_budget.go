package http

import (
	"errors"
	"net/http"

	"spendlog/internal/api"
	"spendlog/internal/core"
	applog "spendlog/internal/log"
	"spendlog/internal/services"
	"spendlog/internal/storage"
)

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	budgets, err := s.svc.ListBudgets(r.Context())
	if err != nil {
		s.internalError(w, r, applog.OpList, err)
		return
	}
	writeJSON(w, http.StatusOK, api.FromBudgetStatuses(budgets))
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeBudget(w, r)
	if !ok {
		return
	}
	created, err := s.svc.CreateBudget(r.Context(), in)
	if err != nil {
		s.budgetError(w, r, applog.OpCreate, err)
		return
	}
	writeJSON(w, http.StatusOK, api.FromBudgetStatus(created))
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeBudget(w, r)
	if !ok {
		return
	}
	updated, err := s.svc.UpdateBudget(r.Context(), r.PathValue("id"), in)
	if err != nil {
		s.budgetError(w, r, applog.OpUpdate, err)
		return
	}
	writeJSON(w, http.StatusOK, api.FromBudgetStatus(updated))
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteBudget(r.Context(), r.PathValue("id")); err != nil {
		s.budgetError(w, r, applog.OpDelete, err)
		return
	}
	writeJSON(w, http.StatusOK, api.MessageResponse{Message: "Budget deleted successfully"})
}

func decodeBudget(w http.ResponseWriter, r *http.Request) (core.NewBudget, bool) {
	var body api.NewBudget
	if err := decodeJSON(w, r, &body); err != nil {
		field := ""
		if errors.Is(err, core.ErrInvalidAmount) {
			field = "amount"
		}
		writeValidation(w, issue("body", field, err.Error()))
		return core.NewBudget{}, false
	}
	in := body.Core()
	in.Name = sanitizeInput(in.Name)
	in.Category = sanitizeInput(in.Category)
	return in, true
}

func (s *Server) budgetError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		writeValidation(w, issue("body", ve.Field, ve.Err.Error()))
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "Budget not found")
	default:
		s.internalError(w, r, op, err)
	}
}
