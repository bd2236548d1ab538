package httptransport

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slecriteria/internal/platform/metrics"
	"slecriteria/pkg/platform/middleware/request"
	"slecriteria/pkg/testutil"
)

type panicky struct{}

func (panicky) Register(r chi.Router) {
	r.Get("/boom", func(http.ResponseWriter, *http.Request) { panic("boom") })
}

func newTestRouter(checks map[string]HealthCheck) http.Handler {
	reg := metrics.NewRegistry()
	return NewRouter(Config{
		AllowedOrigins: []string{"https://clinic.example"},
		Registry:       reg,
		Metrics:        metrics.New(reg),
		Checks:         checks,
	}, panicky{})
}

func TestHealthz(t *testing.T) {
	rec := testutil.DoRequest(newTestRouter(nil), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := testutil.UnmarshalResponse[healthResponse](t, rec)
	assert.Equal(t, "ok", body.Status)
	assert.NotEmpty(t, rec.Header().Get(request.HeaderRequestID))
}

func TestHealthzDegraded(t *testing.T) {
	router := newTestRouter(map[string]HealthCheck{
		"redis":    func(context.Context) error { return errors.New("connection refused") },
		"database": func(context.Context) error { return nil },
	})
	rec := testutil.DoRequest(router, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body := testutil.UnmarshalResponse[healthResponse](t, rec)
	assert.Equal(t, "degraded", body.Status)
	assert.Equal(t, map[string]string{"redis": "connection refused", "database": "ok"}, body.Checks)
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter(nil)
	testutil.DoRequest(router, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	rec := testutil.DoRequest(router, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `route="/healthz"`)
}

func TestRecoversPanics(t *testing.T) {
	rec := testutil.DoRequest(newTestRouter(nil), httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/score", nil)
	req.Header.Set("Origin", "https://clinic.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	rec := testutil.DoRequest(newTestRouter(nil), req)
	assert.Equal(t, "https://clinic.example", rec.Header().Get("Access-Control-Allow-Origin"))
}
