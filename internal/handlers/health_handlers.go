package handlers

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/labstack/echo/v4"
)

const healthCheckTimeout = 2 * time.Second

// Pinger is satisfied by *pgxpool.Pool and caching.CacheService
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandlers handles health check and monitoring endpoints
type HealthHandlers struct {
	db        Pinger
	cache     Pinger
	version   string
	startedAt time.Time
}

func NewHealthHandlers(db, cache Pinger, version string) *HealthHandlers {
	return &HealthHandlers{
		db:        db,
		cache:     cache,
		version:   version,
		startedAt: time.Now(),
	}
}

// HealthStatus represents the overall health status
type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services"`
	Uptime    string            `json:"uptime"`
	Version   string            `json:"version"`
}

func (h *HealthHandlers) check(ctx context.Context, p Pinger) error {
	if p == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()
	return p.Ping(ctx)
}

// HealthCheck reports degraded when any backing service fails its ping
func (h *HealthHandlers) HealthCheck(c echo.Context) error {
	ctx := c.Request().Context()
	health := &HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Services:  make(map[string]string),
		Version:   h.version,
		Uptime:    time.Since(h.startedAt).Round(time.Second).String(),
	}

	for name, p := range map[string]Pinger{"database": h.db, "redis": h.cache} {
		if err := h.check(ctx, p); err != nil {
			health.Services[name] = "unhealthy"
			health.Status = "degraded"
		} else {
			health.Services[name] = "healthy"
		}
	}

	statusCode := http.StatusOK
	if health.Status == "degraded" {
		statusCode = http.StatusServiceUnavailable
	}
	return c.JSON(statusCode, health)
}

// ReadinessCheck determines if the application is ready to serve traffic
func (h *HealthHandlers) ReadinessCheck(c echo.Context) error {
	if err := h.check(c.Request().Context(), h.db); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status":  "not_ready",
			"message": "Database unavailable",
		})
	}
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ready",
		"message": "All systems operational",
	})
}

// DetailedHealthCheck adds per-service latency and runtime figures
func (h *HealthHandlers) DetailedHealthCheck(c echo.Context) error {
	ctx := c.Request().Context()
	overall := "healthy"
	checks := make(map[string]interface{})

	for name, p := range map[string]Pinger{"database": h.db, "redis": h.cache} {
		started := time.Now()
		result := map[string]interface{}{"status": "healthy"}
		if err := h.check(ctx, p); err != nil {
			result["status"] = "unhealthy"
			result["message"] = err.Error()
			overall = "degraded"
		}
		result["latency_ms"] = time.Since(started).Milliseconds()
		checks[name] = result
	}

	statusCode := http.StatusOK
	if overall == "degraded" {
		statusCode = http.StatusServiceUnavailable
	}
	return c.JSON(statusCode, map[string]interface{}{
		"overall_status": overall,
		"checks":         checks,
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
		"version":        h.version,
		"goroutines":     runtime.NumGoroutine(),
	})
}
