package handler

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/dtroode/signdesk-server/internal/logger"
)

const healthTimeout = 2 * time.Second

// Pinger is a dependency that can report whether it is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health reports readiness of the server's backing services.
type Health struct {
	checks map[string]Pinger
	logger *logger.Logger
}

// NewHealth creates a Health handler over named dependencies.
func NewHealth(checks map[string]Pinger, logger *logger.Logger) *Health {
	return &Health{checks: checks, logger: logger}
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Check handles GET /healthz.
func (h *Health) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	resp := healthResponse{Status: "ok", Checks: make(map[string]string, len(names))}
	status := http.StatusOK
	for _, name := range names {
		if err := h.checks[name].Ping(ctx); err != nil {
			h.logger.Warn("health check failed",
				"dependency", name,
				"error", err.Error())
			resp.Checks[name] = "unavailable"
			resp.Status = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}

	writeJSON(w, status, resp)
}
