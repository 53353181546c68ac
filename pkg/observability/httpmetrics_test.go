package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddlewareLabelsByRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	h := NewHTTPMetrics(reg)

	router := chi.NewRouter()
	router.Use(h.Middleware)
	router.Get("/api/v1/sessions/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/sessions/abc-123", nil))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/sessions/def-456", nil))

	// Both requests fold onto one series: the route pattern, not the raw path.
	assert.Equal(t, 2.0, testutil.ToFloat64(
		h.requests.WithLabelValues("GET", "/api/v1/sessions/{id}", "200")))

	count, _ := histogramSample(t, reg, "switchyard_http_request_duration_seconds")
	assert.Equal(t, uint64(2), count)
	assert.Equal(t, 0.0, testutil.ToFloat64(h.inFlight))
}

func TestMiddlewareCapturesStatus(t *testing.T) {
	reg := prometheus.NewRegistry()
	h := NewHTTPMetrics(reg)

	router := chi.NewRouter()
	router.Use(h.Middleware)
	router.Post("/api/v1/chat", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "session busy", http.StatusConflict)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/chat", nil))

	assert.Equal(t, 1.0, testutil.ToFloat64(
		h.requests.WithLabelValues("POST", "/api/v1/chat", "409")))
}

func TestMiddlewareFallsBackToRawPath(t *testing.T) {
	reg := prometheus.NewRegistry()
	h := NewHTTPMetrics(reg)

	// No chi router in the chain, so no route context to consult.
	wrapped := h.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, 1.0, testutil.ToFloat64(
		h.requests.WithLabelValues("GET", "/health", "200")))
}
