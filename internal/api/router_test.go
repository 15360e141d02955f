package api_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/resourcedesk/internal/api"
	"github.com/charlesng35/resourcedesk/internal/app"
	"github.com/charlesng35/resourcedesk/internal/handlers/testutil"
	"github.com/charlesng35/resourcedesk/internal/monitoring"
)

func TestNewRouterRequiresDependencies(t *testing.T) {
	_, err := api.NewRouter(nil, api.Dependencies{})
	require.Error(t, err)

	_, err = api.NewRouter(&app.Config{}, api.Dependencies{})
	require.ErrorContains(t, err, "request service")
}

func TestHealthEndpoints(t *testing.T) {
	env := testutil.NewEnv(t)

	w := env.Request(http.MethodGet, "/health/ready", nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var report struct {
		Success bool                     `json:"success"`
		Status  monitoring.ProbeStatus   `json:"status"`
		Checks  []monitoring.ProbeResult `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	require.True(t, report.Success)
	require.Equal(t, monitoring.StatusUp, report.Status)
	require.Len(t, report.Checks, 1)
	require.Equal(t, "database", report.Checks[0].Component)

	w = env.Request(http.MethodGet, "/health/live", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = env.Request(http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
}

func TestHealthDisabled(t *testing.T) {
	env := testutil.NewEnv(t, testutil.WithConfig(func(cfg *app.Config) {
		cfg.Monitoring.Health.Enabled = false
	}))

	w := env.Request(http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Contains(t, w.Body.String(), "disabled")
}

func TestMetricsEndpoint(t *testing.T) {
	env := testutil.NewEnv(t)
	env.Submit("u-1", "Equipment", "High")

	w := env.Request(http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "resourcedesk_requests_created_total")
}

func TestUnknownRouteReturnsEnvelope(t *testing.T) {
	env := testutil.NewEnv(t)

	w := env.Request(http.MethodGet, "/api/does-not-exist", nil, "u-1")
	require.Equal(t, http.StatusNotFound, w.Code)
	resp := testutil.DecodeResponse(t, w)
	require.False(t, resp.Success)
	require.Equal(t, "NOT_FOUND", resp.Error.Code)
}

func TestRateLimitApplies(t *testing.T) {
	env := testutil.NewEnv(t, testutil.WithConfig(func(cfg *app.Config) {
		cfg.RateLimit = app.RateLimitConfig{Enabled: true, Requests: 2, Window: time.Minute}
	}))

	for i := 0; i < 2; i++ {
		w := env.Request(http.MethodGet, "/api/users/me", nil, "u-1")
		require.Equal(t, http.StatusOK, w.Code)
	}
	w := env.Request(http.MethodGet, "/api/users/me", nil, "u-1")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	require.Equal(t, "RATE_LIMIT_EXCEEDED", testutil.DecodeResponse(t, w).Error.Code)
}
