package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/charlesng35/resourcedesk/internal/api"
	"github.com/charlesng35/resourcedesk/internal/app"
	sharedtestutil "github.com/charlesng35/resourcedesk/internal/database/testutil"
	"github.com/charlesng35/resourcedesk/internal/middleware"
	"github.com/charlesng35/resourcedesk/internal/monitoring"
	"github.com/charlesng35/resourcedesk/internal/monitoring/checks"
	"github.com/charlesng35/resourcedesk/internal/services"
	"github.com/charlesng35/resourcedesk/internal/store"
	"github.com/charlesng35/resourcedesk/pkg/response"
)

// Env encapsulates a fully-wired API instance backed by an in-memory database for handler tests.
type Env struct {
	T        *testing.T
	DB       *gorm.DB
	Router   *gin.Engine
	Config   *app.Config
	Requests *services.RequestService
	Now      time.Time
}

// Option customises the environment before the router is built.
type Option func(*envConfig)

type envConfig struct {
	cfg            *app.Config
	requestOptions []services.RequestServiceOption
}

// WithConfig mutates the default test configuration.
func WithConfig(fn func(*app.Config)) Option {
	return func(c *envConfig) {
		fn(c.cfg)
	}
}

// WithRequestOptions appends request service options such as a summary client.
func WithRequestOptions(opts ...services.RequestServiceOption) Option {
	return func(c *envConfig) {
		c.requestOptions = append(c.requestOptions, opts...)
	}
}

// NewEnv provisions a fresh handler test environment with migrations and seed data applied.
// The service clock is frozen at Env.Now.
func NewEnv(t *testing.T, opts ...Option) *Env {
	t.Helper()

	gin.SetMode(gin.TestMode)

	env := &Env{
		T:   t,
		DB:  sharedtestutil.MustOpenTestDB(t, sharedtestutil.WithSeedData()),
		Now: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
	}

	ec := &envConfig{cfg: &app.Config{
		Monitoring: app.MonitoringConfig{
			Prometheus: app.PrometheusConfig{Enabled: true, Endpoint: "/metrics"},
			Health:     app.HealthConfig{Enabled: true},
		},
		RateLimit: app.RateLimitConfig{Enabled: true, Requests: 1000, Window: time.Minute},
	}}
	for _, opt := range opts {
		opt(ec)
	}
	env.Config = ec.cfg

	clock := func() time.Time { return env.Now }

	st, err := store.NewGormStore(env.DB, store.WithClock(clock))
	require.NoError(t, err)
	users, err := services.NewUserService(env.DB)
	require.NoError(t, err)
	audit, err := services.NewAuditService(env.DB)
	require.NoError(t, err)
	notifications, err := services.NewNotificationService(env.DB)
	require.NoError(t, err)

	routing, err := env.Config.RoutingTable()
	require.NoError(t, err)

	requestOpts := append([]services.RequestServiceOption{
		services.WithAuditService(audit),
		services.WithNotificationService(notifications),
		services.WithRouting(routing),
		services.WithRequestClock(clock),
	}, ec.requestOptions...)
	env.Requests, err = services.NewRequestService(st, users, requestOpts...)
	require.NoError(t, err)

	health := monitoring.NewHealthManager(time.Second)
	health.RegisterReadiness(checks.Database(env.DB))

	env.Router, err = api.NewRouter(env.Config, api.Dependencies{
		Requests:      env.Requests,
		Users:         users,
		Audit:         audit,
		Notifications: notifications,
		Health:        health,
	})
	require.NoError(t, err)

	return env
}

// APIResponse represents the canonical API envelope returned by handlers.
type APIResponse struct {
	Success bool                `json:"success"`
	Data    json.RawMessage     `json:"data"`
	Error   *response.ErrorInfo `json:"error"`
	Meta    *response.Meta      `json:"meta"`
}

// DecodeResponse parses the standard API response object from a recorder.
func DecodeResponse(t *testing.T, w *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

// DecodeInto unmarshals the data payload into the provided destination.
func DecodeInto[T any](t *testing.T, raw json.RawMessage, dest *T) {
	t.Helper()
	if dest == nil {
		t.Fatal("destination must not be nil")
	}
	require.NoError(t, json.Unmarshal(raw, dest))
}

// Request executes an HTTP request against the test router as the given actor,
// applying JSON encoding automatically. An empty actor omits the header.
func (e *Env) Request(method, path string, body any, actorID string) *httptest.ResponseRecorder {
	e.T.Helper()

	var buf *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(e.T, err)
		buf = bytes.NewBuffer(data)
	} else {
		buf = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, path, buf)
	require.NoError(e.T, err)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return e.Send(req, actorID)
}

// Send serves a prepared request as actorID. It lets tests control the
// body framing, for example chunked uploads with an unknown length.
func (e *Env) Send(req *http.Request, actorID string) *httptest.ResponseRecorder {
	e.T.Helper()

	if actorID != "" {
		req.Header.Set(middleware.ActorHeader, actorID)
	}

	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)
	return w
}

// Submit creates a request as the given requester through the API and returns its id.
func (e *Env) Submit(actorID, requestType, priority string) string {
	e.T.Helper()

	w := e.Request(http.MethodPost, "/api/requests", map[string]any{
		"request_type":      requestType,
		"short_description": "Need " + requestType,
		"justification":     "Required for project work",
		"priority":          priority,
	}, actorID)
	require.Equal(e.T, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		RequestID string `json:"request_id"`
	}
	DecodeInto(e.T, DecodeResponse(e.T, w).Data, &created)
	require.NotEmpty(e.T, created.RequestID)
	return created.RequestID
}
