package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/irihojaphet/kozi-chatbot-admin/internal/api"
)

const (
	statusConnected     = "connected"
	statusDisconnected  = "disconnected"
	statusNotConfigured = "not_configured"
)

type DatabasePinger interface {
	Ping(ctx context.Context) error
}

type HRHealthChecker interface {
	HealthCheck(ctx context.Context) bool
}

type HealthHandler struct {
	db  DatabasePinger
	hr  HRHealthChecker
	now func() time.Time
}

// NewHealthHandler accepts nil collaborators; they are reported as
// not_configured.
func NewHealthHandler(db DatabasePinger, hr HRHealthChecker) *HealthHandler {
	return &HealthHandler{db: db, hr: hr, now: time.Now}
}

type HealthServices struct {
	Database string `json:"database"`
	HRAPI    string `json:"hr_api"`
	Server   string `json:"server"`
}

type HealthResponse struct {
	Status    string         `json:"status"`
	Timestamp time.Time      `json:"timestamp"`
	Services  HealthServices `json:"services"`
}

// Health reports the database and HR platform state. Only a database outage
// fails the check; an unreachable HR platform marks the service degraded.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	services := HealthServices{
		Database: h.databaseStatus(r.Context()),
		HRAPI:    statusNotConfigured,
		Server:   "running",
	}
	if h.hr != nil {
		services.HRAPI = statusDisconnected
		if h.hr.HealthCheck(r.Context()) {
			services.HRAPI = statusConnected
		}
	}

	resp := HealthResponse{Status: "healthy", Timestamp: h.now().UTC(), Services: services}
	code := http.StatusOK
	switch {
	case services.Database == statusDisconnected:
		resp.Status = "unhealthy"
		code = http.StatusServiceUnavailable
	case services.HRAPI == statusDisconnected:
		resp.Status = "degraded"
	}
	api.Success(w, code, resp)
}

func (h *HealthHandler) Database(w http.ResponseWriter, r *http.Request) {
	status := h.databaseStatus(r.Context())
	code := http.StatusOK
	if status == statusDisconnected {
		code = http.StatusServiceUnavailable
	}
	api.Success(w, code, map[string]any{"database": status, "timestamp": h.now().UTC()})
}

func (h *HealthHandler) databaseStatus(ctx context.Context) string {
	if h.db == nil {
		return statusNotConfigured
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := h.db.Ping(ctx); err != nil {
		return statusDisconnected
	}
	return statusConnected
}
