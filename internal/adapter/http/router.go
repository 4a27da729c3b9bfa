package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/banca/opledger/internal/adapter/http/handler"
	"github.com/banca/opledger/internal/adapter/http/middleware"
	"github.com/banca/opledger/internal/infrastructure/metrics"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	EntryHandler     *handler.EntryHandler
	AccountHandler   *handler.AccountHandler
	OperationHandler *handler.OperationHandler
	LedgerHandler    *handler.LedgerHandler
	HealthHandler    *handler.HealthHandler

	Logger      zerolog.Logger
	Metrics     *metrics.Metrics
	MetricsPath string
	// MetricsHandler serves MetricsPath; defaults to the global Prometheus handler.
	MetricsHandler http.Handler

	RateLimiter *middleware.RateLimiter
	Idempotency *middleware.IdempotencyMiddleware
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger, "/health", "/ready", cfg.MetricsPath).Wrap)
	r.Use(middleware.Recovery)
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)

	if cfg.MetricsPath != "" {
		metricsHandler := cfg.MetricsHandler
		if metricsHandler == nil {
			metricsHandler = promhttp.Handler()
		}
		r.Method(http.MethodGet, cfg.MetricsPath, metricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.Idempotency != nil {
			r.Use(cfg.Idempotency.Wrap)
		}

		r.Route("/entries", func(r chi.Router) {
			r.Post("/", cfg.EntryHandler.Create)
			r.Post("/composite", cfg.EntryHandler.CreateComposite)
			r.Get("/{entryId}", cfg.EntryHandler.Get)
		})

		r.Route("/accounts/{accountId}", func(r chi.Router) {
			r.Get("/entries", cfg.AccountHandler.ListEntries)
			r.Get("/balance", cfg.AccountHandler.Balance)
			r.Get("/balance/history", cfg.AccountHandler.BalanceHistory)
		})

		r.Route("/operations", func(r chi.Router) {
			r.Get("/by-key/{idempotencyKey}", cfg.OperationHandler.GetByIdempotencyKey)
			r.Get("/{operationId}", cfg.OperationHandler.Get)
			r.Post("/{operationId}/reversal", cfg.OperationHandler.Reverse)
		})

		r.Get("/ledger/integrity", cfg.LedgerHandler.Integrity)
	})

	return r
}
