package http

import (
	"errors"
	"net/http"

	"spendlog/internal/api"
	"spendlog/internal/core"
	applog "spendlog/internal/log"
	"spendlog/internal/services"
)

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.svc.ListCategories(r.Context())
	if err != nil {
		s.internalError(w, r, applog.OpList, err)
		return
	}
	writeJSON(w, http.StatusOK, api.FromCategories(cats))
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var body api.NewCategory
	if err := decodeJSON(w, r, &body); err != nil {
		writeValidation(w, issue("body", "", err.Error()))
		return
	}
	in := body.Core()
	in.Name = sanitizeInput(in.Name)
	in.Icon = sanitizeInput(in.Icon)

	created, err := s.svc.CreateCategory(r.Context(), in)
	if err != nil {
		var ve *services.ValidationError
		switch {
		case errors.As(err, &ve):
			writeValidation(w, issue("body", ve.Field, ve.Err.Error()))
		case errors.Is(err, core.ErrDuplicateCategory):
			writeError(w, http.StatusBadRequest, "Category already exists")
		default:
			s.internalError(w, r, applog.OpCreate, err)
		}
		return
	}
	writeJSON(w, http.StatusOK, api.FromCategory(created))
}
