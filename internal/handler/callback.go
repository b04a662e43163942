package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"regexp"

	"github.com/labstack/echo/v4"

	"webhook-relay/internal/service"
)

// ackBody is returned to the inbound caller for every callback.
const ackBody = "OK"

// secretQueryPattern matches credential-looking query parameters in URLs
// embedded in error messages.
var secretQueryPattern = regexp.MustCompile(`(?i)((?:token|key|secret|signature|password)=)[^&\s"]+`)

// CallbackHandler receives provider webhooks and relays them downstream.
type CallbackHandler struct {
	service *service.RelayService
	logger  *slog.Logger
}

// NewCallbackHandler creates a CallbackHandler.
func NewCallbackHandler(svc *service.RelayService, logger *slog.Logger) *CallbackHandler {
	return &CallbackHandler{
		service: svc,
		logger:  logger.With("component", "callback_handler"),
	}
}

// Forward relays the raw request body to the destination and acknowledges
// the caller with 200 "OK" whatever the outcome. Downstream rejections and
// transport failures are logged, never returned.
func (h *CallbackHandler) Forward(c echo.Context) error {
	req := c.Request()
	requestID := c.Response().Header().Get(echo.HeaderXRequestID)

	body, err := io.ReadAll(req.Body)
	if err != nil {
		h.service.RecordSkipped()
		h.logger.Error("reading callback body; not forwarded",
			"err", err,
			"request_id", requestID,
		)
		return Ack(c)
	}

	res, err := h.service.Forward(req.Context(), body)
	switch {
	case err != nil:
		h.logger.Error("forwarding failed",
			"err", sanitizeError(err),
			"reason", classifyError(err),
			"destination_host", h.service.DestinationHost(),
			"request_id", requestID,
		)
	case !res.Delivered():
		h.logger.Warn("destination returned non-success status",
			"status", res.StatusCode,
			"response", string(res.Body),
			"response_truncated", res.Truncated,
			"destination_host", h.service.DestinationHost(),
			"duration_ms", res.Duration.Milliseconds(),
			"request_id", requestID,
		)
	default:
		h.logger.Debug("forwarded",
			"status", res.StatusCode,
			"bytes", len(body),
			"duration_ms", res.Duration.Milliseconds(),
			"request_id", requestID,
		)
	}

	return Ack(c)
}

// Ack writes the fixed plain-text acknowledgment. GET /callback uses it as
// the provider-facing liveness check.
func Ack(c echo.Context) error {
	return c.String(http.StatusOK, ackBody)
}

// classifyError returns a short, bounded label for a transport failure.
func classifyError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timeout"
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return "dns"
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return "connect"
	}

	return "transport"
}

// sanitizeError redacts credentials from error messages that may contain
// the destination URL.
func sanitizeError(err error) string {
	return secretQueryPattern.ReplaceAllString(err.Error(), "${1}[REDACTED]")
}
