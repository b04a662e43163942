package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RegisterRoutes wires all route handlers onto the Echo instance.
func RegisterRoutes(e *echo.Echo, callback *CallbackHandler, health *HealthHandler) {
	e.POST("/callback", callback.Forward)
	e.GET("/callback", Ack)

	e.GET("/healthz", health.Healthz)
	e.GET("/relay/status", health.Status)
}

// RegisterMetrics mounts the Prometheus handler at path.
func RegisterMetrics(e *echo.Echo, path string, h http.Handler) {
	e.GET(path, echo.WrapHandler(h))
}
