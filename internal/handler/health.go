package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"namcportal/internal/httputil"
)

const serviceVersion = "1.0.0"

// HealthHandler reports service liveness and database reachability
type HealthHandler struct {
	pool *pgxpool.Pool
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(pool *pgxpool.Pool) *HealthHandler {
	return &HealthHandler{pool: pool}
}

// Check pings the database and reports overall status
// GET /health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := "ok"
	database := "ok"
	if err := h.pool.Ping(ctx); err != nil {
		status = "degraded"
		database = "unavailable"
	}

	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}

	httputil.RespondJSON(w, code, map[string]string{
		"status":   status,
		"service":  "namcportal",
		"version":  serviceVersion,
		"database": database,
		"time":     time.Now().UTC().Format(time.RFC3339),
	})
}
