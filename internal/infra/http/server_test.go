package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

func newTestLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

func TestAdminServer(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_events_total", Help: "test"})
	reg.MustRegister(c)
	c.Inc()

	t.Run("should report healthy", func(t *testing.T) {
		srv := NewAdminServer(0, reg, nil, newTestLogger())
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok"`) {
			t.Fatalf("unexpected response %d %q", rec.Code, rec.Body.String())
		}
	})

	t.Run("should report unavailable when the check fails", func(t *testing.T) {
		srv := NewAdminServer(0, reg, func(context.Context) error { return errors.New("store down") }, newTestLogger())
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected 503, got %d", rec.Code)
		}
	})

	t.Run("should expose metrics", func(t *testing.T) {
		srv := NewAdminServer(0, reg, nil, newTestLogger())
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "test_events_total 1") {
			t.Fatalf("metrics missing: %d %q", rec.Code, rec.Body.String())
		}
	})

	t.Run("should treat shutdown before start as a no-op", func(t *testing.T) {
		if err := NewAdminServer(0, reg, nil, newTestLogger()).Shutdown(context.Background()); err != nil {
			t.Fatal(err)
		}
	})
}
