// Package metrics provides Prometheus metrics for the relay.
package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Default histogram buckets for HTTP latency.
var defaultBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

// Payload size buckets in bytes (256B .. 4MiB).
var payloadBuckets = prometheus.ExponentialBuckets(256, 4, 8)

// Forward outcomes.
const (
	OutcomeDelivered = "delivered" // destination answered 2xx
	OutcomeRejected  = "rejected"  // destination answered non-2xx
	OutcomeFailed    = "failed"    // transport failure, no answer
	OutcomeSkipped   = "skipped"   // inbound body could not be read
)

// Metrics holds all Prometheus metric collectors for the relay.
type Metrics struct {
	Registry *prometheus.Registry

	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge

	DestinationDuration  prometheus.Histogram
	DestinationResponses *prometheus.CounterVec

	ForwardsTotal *prometheus.CounterVec
	PayloadBytes  prometheus.Histogram
}

// New creates a Metrics instance with a custom registry and all collectors registered.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		Registry: reg,

		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "webhook_relay_http_requests_total",
			Help: "Total inbound HTTP requests.",
		}, []string{"method", "status_code", "path_prefix"}),

		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "webhook_relay_http_request_duration_seconds",
			Help:    "Inbound HTTP request latency in seconds.",
			Buckets: defaultBuckets,
		}, []string{"method", "status_code", "path_prefix"}),

		RequestsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "webhook_relay_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed.",
		}),

		DestinationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "webhook_relay_destination_request_duration_seconds",
			Help:    "Outbound call latency to the destination in seconds, including failed attempts.",
			Buckets: defaultBuckets,
		}),

		DestinationResponses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "webhook_relay_destination_responses_total",
			Help: "Total destination responses by status code.",
		}, []string{"status_code"}),

		ForwardsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "webhook_relay_forwards_total",
			Help: "Forwarding attempts by outcome (delivered, rejected, failed, skipped).",
		}, []string{"outcome"}),

		PayloadBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "webhook_relay_payload_bytes",
			Help:    "Size of forwarded inbound payloads in bytes.",
			Buckets: payloadBuckets,
		}),
	}

	reg.MustRegister(
		m.RequestsTotal,
		m.RequestDuration,
		m.RequestsInFlight,
		m.DestinationDuration,
		m.DestinationResponses,
		m.ForwardsTotal,
		m.PayloadBytes,
	)

	return m
}

// knownMethods lists the allowed HTTP method label values (bounded cardinality).
var knownMethods = map[string]bool{
	"GET": true, "POST": true, "PUT": true, "DELETE": true,
	"PATCH": true, "HEAD": true, "OPTIONS": true,
}

// NormalizeMethod returns a bounded HTTP method label for Prometheus metrics.
// Non-standard methods are mapped to "other" to prevent cardinality explosion.
func NormalizeMethod(method string) string {
	if knownMethods[method] {
		return method
	}
	return "other"
}

// knownPrefixes lists the allowed path label values (bounded cardinality).
var knownPrefixes = []string{"/callback", "/healthz", "/relay/status", "/metrics"}

// NormalizePath returns a bounded path label for Prometheus metrics.
func NormalizePath(path string) string {
	for _, prefix := range knownPrefixes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") || strings.HasPrefix(path, prefix+"?") {
			return prefix
		}
	}
	return "other"
}
