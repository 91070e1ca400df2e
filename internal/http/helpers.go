package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"spendlog/internal/api"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err, "status", status)
	}
}

// writeError answers with {"detail": msg}.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, api.NewErrorResponse(msg))
}

// writeValidation answers 422 with a list of issues as detail.
func writeValidation(w http.ResponseWriter, issues ...api.ValidationIssue) {
	raw, err := json.Marshal(issues)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Invalid request")
		return
	}
	writeJSON(w, http.StatusUnprocessableEntity, api.ErrorResponse{Detail: raw})
}

func issue(source, field, msg string) api.ValidationIssue {
	loc := []any{source}
	if field != "" {
		loc = append(loc, field)
	}
	return api.ValidationIssue{Loc: loc, Msg: msg, Type: "value_error"}
}

// decodeJSON reads a single JSON object from a size-limited body.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return fmt.Errorf("request body exceeds %d bytes", maxErr.Limit)
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	if dec.More() {
		return errors.New("invalid JSON body: trailing data")
	}
	return nil
}

// sanitizeInput removes control characters except tab and newlines and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
