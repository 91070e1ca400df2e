// Package http serves the record store REST API.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"spendlog/internal/cache"
	applog "spendlog/internal/log"
	"spendlog/internal/metrics"
	"spendlog/internal/middleware/ratelimit"
	"spendlog/internal/middleware/security"
	"spendlog/internal/middleware/trace"
	"spendlog/internal/services"
)

const (
	defaultCacheCleanupInterval = 10 * time.Minute
	maxBodyBytes                = 1 << 20
)

// Config holds the transport settings of the server.
type Config struct {
	Addr               string
	RateLimitPerMinute int
	// CORSOrigins defaults to "*" when empty.
	CORSOrigins          []string
	TrustedProxies       []string
	CacheCleanupInterval time.Duration
}

type Server struct {
	http.Server
	svc      *services.ExpenseService
	logger   *applog.Logger
	metrics  *metrics.Metrics
	limiter  *ratelimit.Limiter
	detector *security.Detector
	caches   *cache.Manager

	shutdownOnce sync.Once
}

// NewServer wires routes and middleware. The returned server owns background
// goroutines for rate limiting and cache cleanup; release them with Shutdown.
// m may be nil.
func NewServer(cfg Config, svc *services.ExpenseService, logger *applog.Logger, m *metrics.Metrics) *Server {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentHTTP)

	s := &Server{
		svc:      svc,
		logger:   logger,
		metrics:  m,
		limiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: cfg.RateLimitPerMinute}),
		detector: security.NewDetector(logger.WithComponent(applog.ComponentSecurity).Logger),
		caches:   cache.NewManager(logger.WithComponent(applog.ComponentCache).Logger),
	}
	for _, cidr := range cfg.TrustedProxies {
		if err := s.detector.AddTrustedProxy(cidr); err != nil {
			logger.Warn("Ignoring trusted proxy", applog.FieldError, err)
		}
	}

	if c := svc.SummaryCache(); c != nil {
		s.caches.Register(c)
	}
	interval := cfg.CacheCleanupInterval
	if interval <= 0 {
		interval = defaultCacheCleanupInterval
	}
	s.caches.StartCleanup(interval)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /healthz", handleLive)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", m.Handler())

	mux.HandleFunc("GET /api/expenses", s.handleListExpenses)
	mux.HandleFunc("POST /api/expenses", s.handleCreateExpense)
	mux.HandleFunc("GET /api/expenses/{id}", s.handleGetExpense)
	mux.HandleFunc("DELETE /api/expenses/{id}", s.handleDeleteExpense)
	mux.HandleFunc("GET /api/expenses/summary/{period}", s.handleSummary)

	mux.HandleFunc("GET /api/categories", s.handleListCategories)
	mux.HandleFunc("POST /api/categories", s.handleCreateCategory)

	mux.HandleFunc("GET /api/budgets", s.handleListBudgets)
	mux.HandleFunc("POST /api/budgets", s.handleCreateBudget)
	mux.HandleFunc("PUT /api/budgets/{id}", s.handleUpdateBudget)
	mux.HandleFunc("DELETE /api/budgets/{id}", s.handleDeleteBudget)

	mux.HandleFunc("/", handleNotFound)

	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	// Everything inside trace passes the request through unchanged, so the
	// mux pattern is visible to trace after the call.
	var handler http.Handler = mux
	handler = s.limiter.Middleware(s.detector.ExtractClientIP, s.writeRateLimited, http.MethodPost, http.MethodPut, http.MethodDelete)(handler)
	handler = s.detector.Middleware(handler)
	handler = security.CORS(origins)(handler)
	handler = security.Headers(security.DefaultHeadersConfig())(handler)
	handler = trace.NewMiddleware(logger, s.detector.ExtractClientIP, m).Middleware(handler)

	s.Server = http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// Shutdown stops background cleanup and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.caches.Stop()
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func (s *Server) writeRateLimited(w http.ResponseWriter, r *http.Request) {
	s.metrics.RecordRateLimited()
	applog.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldClientIP, s.detector.ExtractClientIP(r),
		applog.FieldMethod, r.Method,
		applog.FieldPath, r.URL.Path)
	writeError(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
}

// internalError logs err with the failed operation and answers 500.
func (s *Server) internalError(w http.ResponseWriter, r *http.Request, op string, err error) {
	applog.FromContext(r.Context()).LogAttrs(r.Context(), slog.LevelError, "Request failed",
		slog.String(applog.FieldOperation, op),
		slog.String(applog.FieldError, err.Error()))
	writeError(w, http.StatusInternalServerError, "Internal server error")
}
