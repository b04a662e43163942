// Package client provides the outbound HTTP client for the downstream
// automation endpoint.
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"webhook-relay/internal/config"
	"webhook-relay/internal/metrics"
	"webhook-relay/internal/model"
)

// DestinationClient sends forwarded payloads to the destination endpoint.
// It is safe for concurrent use.
type DestinationClient struct {
	httpClient       *http.Client
	logger           *slog.Logger
	metrics          *metrics.Metrics
	maxResponseBytes int64
}

// NewDestinationClient creates a DestinationClient with connection pooling and timeouts.
// The metrics parameter is optional; pass nil to disable destination metrics recording.
func NewDestinationClient(cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) *DestinationClient {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        cfg.Destination.IdleConnections,
		MaxIdleConnsPerHost: cfg.Destination.IdleConnections,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	}

	return &DestinationClient{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   time.Duration(cfg.Destination.TimeoutSeconds) * time.Second,
		},
		logger:           logger.With("component", "destination_client"),
		metrics:          m,
		maxResponseBytes: cfg.Destination.MaxResponseBytes,
	}
}

// Post sends body to url with the given header in a single attempt. A
// response with any status code is a result; only transport failures are
// returned as errors. At most maxResponseBytes of the response body are kept,
// the remainder is drained so the connection can be reused.
func (c *DestinationClient) Post(ctx context.Context, url string, header http.Header, body []byte) (*model.ForwardResult, error) {
	// An empty payload still goes out as a POST with Content-Length: 0.
	var reqBody io.Reader = http.NoBody
	if len(body) > 0 {
		reqBody = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("build destination request: %w", err)
	}
	req.Header = header

	c.logger.Debug("destination request",
		"host", req.URL.Host,
		"bytes", len(body),
	)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(time.Since(start), 0)
		return nil, fmt.Errorf("destination request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	excerpt, truncated, err := readExcerpt(resp.Body, c.maxResponseBytes)
	duration := time.Since(start)
	c.observe(duration, resp.StatusCode)
	if err != nil {
		return nil, fmt.Errorf("read destination response: %w", err)
	}

	return &model.ForwardResult{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       excerpt,
		Truncated:  truncated,
		Duration:   duration,
	}, nil
}

// observe records latency for every attempt and the status code for answered ones.
func (c *DestinationClient) observe(d time.Duration, status int) {
	if c.metrics == nil {
		return
	}
	c.metrics.DestinationDuration.Observe(d.Seconds())
	if status != 0 {
		c.metrics.DestinationResponses.WithLabelValues(strconv.Itoa(status)).Inc()
	}
}

// readExcerpt reads up to limit bytes from r and discards the rest. A
// failure while discarding only marks the excerpt as truncated.
func readExcerpt(r io.Reader, limit int64) ([]byte, bool, error) {
	excerpt, err := io.ReadAll(io.LimitReader(r, limit))
	if err != nil {
		return nil, false, err
	}
	n, err := io.Copy(io.Discard, r)
	return excerpt, n > 0 || err != nil, nil
}
