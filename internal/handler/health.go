package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"webhook-relay/internal/config"
)

// Version is a string type for dependency injection of the build version.
type Version string

// HealthHandler serves health and status endpoints.
type HealthHandler struct {
	cfg     *config.Config
	version Version
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(cfg *config.Config, v Version) *HealthHandler {
	return &HealthHandler{cfg: cfg, version: v}
}

// Healthz returns a simple OK response for liveness probes.
func (h *HealthHandler) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// Status returns relay status information. Only the destination host is
// exposed; webhook URLs commonly carry secrets in their path.
func (h *HealthHandler) Status(c echo.Context) error {
	tokenConfigured := "false"
	if h.cfg.Destination.SecurityToken != "" {
		tokenConfigured = "true"
	}
	return c.JSON(http.StatusOK, map[string]string{
		"status":           "ok",
		"version":          string(h.version),
		"destination_host": h.cfg.Destination.DestinationHost(),
		"token_configured": tokenConfigured,
	})
}
