package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Pinger checks the database connection.
type Pinger func(ctx context.Context) error

type HealthHandler struct {
	ping    Pinger
	started time.Time
	logger  *zap.Logger
}

func NewHealthHandler(ping Pinger, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{ping: ping, started: time.Now(), logger: logger}
}

// Live answers without touching dependencies.
func (h *HealthHandler) Live(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
		"uptime":    time.Since(h.started).Round(time.Second).String(),
	})
}

// Ready also pings the database.
func (h *HealthHandler) Ready(c echo.Context) error {
	if err := h.ping(c.Request().Context()); err != nil {
		h.logger.Warn("health check: database unreachable", zap.Error(err))
		return c.JSON(http.StatusServiceUnavailable, echo.Map{
			"success":  false,
			"status":   "degraded",
			"database": "disconnected",
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success":   true,
		"status":    "ok",
		"database":  "connected",
		"timestamp": time.Now().UTC(),
	})
}
