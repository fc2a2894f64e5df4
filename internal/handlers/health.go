package handlers

import (
	"net/http"
	"time"

	"courier-tracking/internal/database"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	db *database.DB
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *database.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// HealthStatus is the health check response payload
type HealthStatus struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Database  string    `json:"database"`
}

// HealthCheck handles GET /api/health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := HealthStatus{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Database:  "ok",
	}

	code := http.StatusOK
	if err := h.db.Ping(); err != nil {
		status.Status = "degraded"
		status.Database = err.Error()
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, status)
}
