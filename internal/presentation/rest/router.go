// Package rest exposes the lending service as a JSON HTTP API next to the
// health and metrics endpoints. API calls go through the same
// LendingServiceServer as gRPC so both transports share one set of access
// rules and error mappings.
package rest

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	lendinggrpc "github.com/ricare/lending/internal/presentation/grpc"
	"github.com/ricare/lending/pkg/auth"
)

// RouterConfig assembles the HTTP surface.
type RouterConfig struct {
	ServiceName string
	Service     lendinggrpc.LendingServiceServer
	JWT         *auth.JWTService
	// Metrics is mounted at /metrics when set.
	Metrics http.Handler
	Checks  []ReadinessCheck
	// RateLimitRPS <= 0 disables rate limiting of /api routes.
	RateLimitRPS int
	Logger       *slog.Logger
}

// NewRouter builds the HTTP router. Probes and metrics are unauthenticated;
// everything under /api/v1 requires a bearer token.
func NewRouter(cfg RouterConfig) *mux.Router {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := mux.NewRouter()
	r.Use(loggingMiddleware(logger))

	health := NewHealthHandler(cfg.ServiceName, cfg.Checks, logger)
	r.HandleFunc("/healthz", health.liveness).Methods(http.MethodGet)
	r.HandleFunc("/readyz", health.readiness).Methods(http.MethodGet)
	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics).Methods(http.MethodGet)
	}

	api := r.PathPrefix("/api/v1").Subrouter()
	if cfg.RateLimitRPS > 0 {
		api.Use(rateLimitMiddleware(NewRateLimiter(cfg.RateLimitRPS)))
	}
	api.Use(authMiddleware(cfg.JWT))

	h := &LendingAPI{svc: cfg.Service, logger: logger}

	api.HandleFunc("/loans", h.createLoan).Methods(http.MethodPost)
	api.HandleFunc("/loans", h.listLoans).Methods(http.MethodGet)
	api.HandleFunc("/loans/{id}", h.getLoan).Methods(http.MethodGet)
	api.HandleFunc("/loans/{id}/submit", h.submitLoan).Methods(http.MethodPost)
	api.HandleFunc("/loans/{id}/review", h.startReview).Methods(http.MethodPost)
	api.HandleFunc("/loans/{id}/approve", h.approveLoan).Methods(http.MethodPost)
	api.HandleFunc("/loans/{id}/reject", h.rejectLoan).Methods(http.MethodPost)
	api.HandleFunc("/loans/{id}/payments", h.payEmi).Methods(http.MethodPost)
	api.HandleFunc("/loans/{id}/schedule", h.getSchedule).Methods(http.MethodGet)
	api.HandleFunc("/loans/{id}/disbursements", h.disburse).Methods(http.MethodPost)

	api.HandleFunc("/schedules", h.computeSchedule).Methods(http.MethodPost)
	api.HandleFunc("/eligibility", h.evaluateEligibility).Methods(http.MethodGet)

	api.HandleFunc("/wallets", h.registerWallet).Methods(http.MethodPost)
	api.HandleFunc("/wallets/{id}", h.getWallet).Methods(http.MethodGet)

	return r
}
