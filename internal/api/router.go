package api

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/charlesng35/resourcedesk/internal/app"
	"github.com/charlesng35/resourcedesk/internal/handlers"
	"github.com/charlesng35/resourcedesk/internal/middleware"
	"github.com/charlesng35/resourcedesk/internal/monitoring"
	"github.com/charlesng35/resourcedesk/internal/services"
)

// Dependencies are the services the HTTP layer exposes.
type Dependencies struct {
	Requests      *services.RequestService
	Users         *services.UserService
	Audit         *services.AuditService
	Notifications *services.NotificationService
	Health        *monitoring.HealthManager
	// RateStore backs the rate limiter. Nil falls back to an in-memory store.
	RateStore middleware.RateStore
}

// NewRouter builds the Gin engine, wires middleware and registers the API routes.
func NewRouter(cfg *app.Config, deps Dependencies) (*gin.Engine, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}
	if deps.Requests == nil {
		return nil, fmt.Errorf("request service must be provided")
	}
	if deps.Users == nil {
		return nil, fmt.Errorf("user service must be provided")
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS())

	registerHealthRoutes(r, cfg, deps.Health)

	if cfg.Monitoring.Prometheus.Enabled {
		endpoint := strings.TrimSpace(cfg.Monitoring.Prometheus.Endpoint)
		if endpoint == "" {
			endpoint = "/metrics"
		}
		r.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}

	api := r.Group("/api")
	api.Use(middleware.Actor(deps.Users))
	if cfg.RateLimit.Enabled {
		store := deps.RateStore
		if store == nil {
			store = middleware.NewMemoryRateStore()
		}
		api.Use(middleware.RateLimit(store, cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}

	registerRequestRoutes(api, handlers.NewRequestHandler(deps.Requests))
	registerUserRoutes(api, handlers.NewUserHandler(deps.Users))
	if deps.Audit != nil {
		registerAuditRoutes(api, handlers.NewAuditHandler(deps.Audit))
	}
	if deps.Notifications != nil {
		registerNotificationRoutes(api, handlers.NewNotificationHandler(deps.Notifications))
	}

	// NotFound fallback
	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}
