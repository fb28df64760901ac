package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthCheck probes one dependency
type HealthCheck func(ctx context.Context) error

// HealthHandler reports the health of the backend, cache and database
type HealthHandler struct {
	checks  map[string]HealthCheck
	timeout time.Duration
}

// NewHealthHandler creates a health handler running checks by name
func NewHealthHandler(checks map[string]HealthCheck) *HealthHandler {
	return &HealthHandler{
		checks:  checks,
		timeout: 5 * time.Second,
	}
}

// ComponentHealth is the result of a single check
type ComponentHealth struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Health handles GET /api/v1/health. Any failing check turns the response into a 503.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := http.StatusOK
	components := make(map[string]ComponentHealth, len(names))
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			components[name] = ComponentHealth{Status: "unhealthy", Error: err.Error()}
			status = http.StatusServiceUnavailable
			continue
		}
		components[name] = ComponentHealth{Status: "healthy"}
	}

	overall := "healthy"
	if status != http.StatusOK {
		overall = "degraded"
	}
	c.JSON(status, gin.H{
		"status":     overall,
		"components": components,
		"timestamp":  time.Now().UTC(),
	})
}
