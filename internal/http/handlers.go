package http

import (
	"context"
	"net/http"
	"time"

	"spendlog/internal/api"
	applog "spendlog/internal/log"
)

// handleHealth reports whether the store answers.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Health(r.Context()); err != nil {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Health check failed", applog.FieldError, err)
		writeJSON(w, http.StatusServiceUnavailable, api.NewHealth("unhealthy", s.svc.Now()))
		return
	}
	writeJSON(w, http.StatusOK, api.NewHealth("healthy", s.svc.Now()))
}

func handleLive(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReady performs a readiness check with dependency verification.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := map[string]any{}

	if err := s.svc.Health(ctx); err != nil {
		checks["storage"] = "failed: " + err.Error()
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["storage"] = "ok"
	}
	checks["rate_limiter"] = map[string]any{"active_clients": s.limiter.ActiveClients()}
	checks["security"] = map[string]any{"suspicious_requests": s.detector.SuspiciousCount()}

	writeJSON(w, httpStatus, map[string]any{
		"status":    status,
		"timestamp": api.Timestamp(s.svc.Now()),
		"checks":    checks,
	})
}

func handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "Not Found")
}
