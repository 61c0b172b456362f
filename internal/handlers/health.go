package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const serviceName = "mindful-harmony"

var errDatabaseNotConfigured = errors.New("database not configured")

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthChecker handles health check requests
type HealthChecker struct {
	db     Pinger
	queue  func(ctx context.Context) error
	logger *zap.Logger
}

// NewHealthChecker creates a new health checker. queueCheck may be nil
// when no broker is configured.
func NewHealthChecker(db Pinger, queueCheck func(ctx context.Context) error, log *zap.Logger) *HealthChecker {
	if log == nil {
		log = zap.NewNop()
	}
	return &HealthChecker{db: db, queue: queueCheck, logger: log}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Service   string            `json:"service"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// RegisterRoutes registers health routes on the root router.
func (h *HealthChecker) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
	r.HandleFunc("/api/health", h.HealthCheck).Methods("GET")
	r.HandleFunc("/api/health/db", h.DatabaseHealth).Methods("GET")
}

// HealthCheck reports that the process is serving. With ?mode=extended
// it also checks the database and broker.
func (h *HealthChecker) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    "healthy",
		Service:   serviceName,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	if r.URL.Query().Get("mode") == "extended" {
		checks := map[string]string{"database": "healthy"}
		if err := h.checkDatabase(r.Context()); err != nil {
			response.Status = "unhealthy"
			checks["database"] = "unhealthy"
			h.logger.Warn("health_database_unreachable", zap.Error(err))
		}
		if h.queue != nil {
			checks["queue"] = "healthy"
			if err := h.queue(r.Context()); err != nil {
				response.Status = "unhealthy"
				checks["queue"] = "unhealthy"
				h.logger.Warn("health_queue_unreachable", zap.Error(err))
			}
		}
		response.Checks = checks
	}

	writeHealth(w, response)
}

// DatabaseHealth pings the database.
func (h *HealthChecker) DatabaseHealth(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    "healthy",
		Service:   serviceName,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    map[string]string{"database": "healthy"},
	}
	if err := h.checkDatabase(r.Context()); err != nil {
		response.Status = "unhealthy"
		response.Checks["database"] = "unhealthy"
		h.logger.Warn("health_database_unreachable", zap.Error(err))
	}
	writeHealth(w, response)
}

func writeHealth(w http.ResponseWriter, response HealthResponse) {
	status := http.StatusOK
	if response.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(response)
}

// checkDatabase verifies the database connection
func (h *HealthChecker) checkDatabase(ctx context.Context) error {
	if h.db == nil {
		return errDatabaseNotConfigured
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return h.db.PingContext(ctx)
}
