// Package service implements the forwarding logic between the inbound
// callback and the destination endpoint.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"webhook-relay/internal/client"
	"webhook-relay/internal/config"
	"webhook-relay/internal/metrics"
	"webhook-relay/internal/model"
)

// RelayService forwards inbound payloads to the configured destination.
// It holds only immutable configuration and concurrency-safe collaborators.
type RelayService struct {
	client  *client.DestinationClient
	metrics *metrics.Metrics
	logger  *slog.Logger

	url     string
	host    string
	token   string
	timeout time.Duration
}

// NewRelayService creates a RelayService. The metrics parameter is optional.
func NewRelayService(c *client.DestinationClient, cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) *RelayService {
	return &RelayService{
		client:  c,
		metrics: m,
		logger:  logger.With("component", "relay_service"),
		url:     cfg.Destination.URL,
		host:    cfg.Destination.DestinationHost(),
		token:   cfg.Destination.SecurityToken,
		timeout: time.Duration(cfg.Destination.TimeoutSeconds) * time.Second,
	}
}

// DestinationHost returns the host of the destination, for diagnostics.
func (s *RelayService) DestinationHost() string {
	return s.host
}

// Forward makes exactly one attempt to deliver payload to the destination.
//
// The inbound request's cancellation is not propagated: once issued, the
// outbound call runs until it completes, fails or hits the configured
// timeout. A non-2xx answer is returned as a result; only transport failures
// are returned as errors.
func (s *RelayService) Forward(ctx context.Context, payload []byte) (*model.ForwardResult, error) {
	ctx = context.WithoutCancel(ctx)
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	s.logger.Debug("forwarding payload",
		"destination_host", s.host,
		"bytes", len(payload),
	)
	if s.metrics != nil {
		s.metrics.PayloadBytes.Observe(float64(len(payload)))
	}

	res, err := s.client.Post(ctx, s.url, s.outboundHeaders(), payload)
	if err != nil {
		s.record(metrics.OutcomeFailed)
		return nil, fmt.Errorf("forward to %s: %w", s.host, err)
	}

	if res.Delivered() {
		s.record(metrics.OutcomeDelivered)
	} else {
		s.record(metrics.OutcomeRejected)
	}
	return res, nil
}

// RecordSkipped counts an inbound callback that was acknowledged without a
// forwarding attempt.
func (s *RelayService) RecordSkipped() {
	s.record(metrics.OutcomeSkipped)
}

// outboundHeaders builds a fresh header set for each request. The inbound
// content type is deliberately not consulted.
func (s *RelayService) outboundHeaders() http.Header {
	h := make(http.Header, 2)
	h.Set(model.HeaderSecurityToken, s.token)
	h.Set("Content-Type", model.ContentTypeJSON)
	return h
}

func (s *RelayService) record(outcome string) {
	if s.metrics != nil {
		s.metrics.ForwardsTotal.WithLabelValues(outcome).Inc()
	}
}
