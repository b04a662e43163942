package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"webhook-relay/internal/metrics"
)

func TestRegisterRoutes_Wiring(t *testing.T) {
	dest := newDestination(t, http.StatusOK)
	cfg := testConfig(dest.srv.URL, "tok")

	callback := newTestCallbackHandler(cfg, discardLogger())
	health := NewHealthHandler(cfg, "test")

	e := echo.New()
	RegisterRoutes(e, callback, health)

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
	}{
		{"POST /callback", http.MethodPost, "/callback", http.StatusOK},
		{"GET /callback", http.MethodGet, "/callback", http.StatusOK},
		{"GET /healthz", http.MethodGet, "/healthz", http.StatusOK},
		{"GET /relay/status", http.MethodGet, "/relay/status", http.StatusOK},
		{"PUT /callback not allowed", http.MethodPut, "/callback", http.StatusMethodNotAllowed},
		{"GET /unknown returns 404", http.MethodGet, "/unknown", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, http.NoBody)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}

	if calls, _, _ := dest.snapshot(); calls != 1 {
		t.Errorf("destination calls = %d, want 1 (only the POST forwards)", calls)
	}
}

func TestRegisterRoutes_HealthCheckHasNoSideEffects(t *testing.T) {
	dest := newDestination(t, http.StatusOK)
	cfg := testConfig(dest.srv.URL, "tok")

	e := echo.New()
	RegisterRoutes(e, newTestCallbackHandler(cfg, discardLogger()), NewHealthHandler(cfg, "test"))

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/callback", http.NoBody)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assertAck(t, rec)
	}

	if calls, _, _ := dest.snapshot(); calls != 0 {
		t.Errorf("destination calls = %d, want 0 for GET /callback", calls)
	}
}

func TestRegisterRoutes_DownstreamFailureScenario(t *testing.T) {
	dest := newDestination(t, http.StatusInternalServerError)
	cfg := testConfig(dest.srv.URL, "s3cret")

	e := echo.New()
	RegisterRoutes(e, newTestCallbackHandler(cfg, discardLogger()), NewHealthHandler(cfg, "test"))

	body := `{"events":[{"type":"message"}]}`
	req := httptest.NewRequest(http.MethodPost, "/callback", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assertAck(t, rec)

	calls, bodies, headers := dest.snapshot()
	if calls != 1 {
		t.Fatalf("destination calls = %d, want 1", calls)
	}
	if string(bodies[0]) != body {
		t.Errorf("forwarded body = %q, want %q", bodies[0], body)
	}
	if headers[0].Get("X-Security-Token") != "s3cret" {
		t.Errorf("X-Security-Token = %q, want %q", headers[0].Get("X-Security-Token"), "s3cret")
	}
	if headers[0].Get("Content-Type") != "application/json" {
		t.Errorf("Content-Type = %q, want %q", headers[0].Get("Content-Type"), "application/json")
	}
}

func TestRegisterMetrics(t *testing.T) {
	m := metrics.New()
	m.ForwardsTotal.WithLabelValues(metrics.OutcomeDelivered).Inc()

	e := echo.New()
	RegisterMetrics(e, "/metrics", promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))

	req := httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), `webhook_relay_forwards_total{outcome="delivered"} 1`) {
		t.Errorf("metrics output missing forwards counter:\n%s", rec.Body.String())
	}
}
