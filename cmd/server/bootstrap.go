package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/charlesng35/resourcedesk/internal/api"
	"github.com/charlesng35/resourcedesk/internal/app"
	"github.com/charlesng35/resourcedesk/internal/app/maintenance"
	"github.com/charlesng35/resourcedesk/internal/cache"
	"github.com/charlesng35/resourcedesk/internal/database"
	"github.com/charlesng35/resourcedesk/internal/export"
	"github.com/charlesng35/resourcedesk/internal/middleware"
	"github.com/charlesng35/resourcedesk/internal/monitoring"
	"github.com/charlesng35/resourcedesk/internal/monitoring/checks"
	"github.com/charlesng35/resourcedesk/internal/services"
	"github.com/charlesng35/resourcedesk/internal/store"
	"github.com/charlesng35/resourcedesk/internal/visibility"
	"github.com/charlesng35/resourcedesk/pkg/logger"
)

const defaultHealthTimeout = 2 * time.Second

// runtimeStack bundles long-lived services used by the HTTP server.
type runtimeStack struct {
	DB        *gorm.DB
	Redis     *cache.RedisClient
	Requests  *services.RequestService
	AuditSvc  *services.AuditService
	Cleaner   *maintenance.Cleaner
	Jobs      *monitoring.JobTracker
	Health    *monitoring.HealthManager
	RateStore middleware.RateStore
	Router    *gin.Engine
}

// bootstrapRuntime initialises the database, cache, services, and the HTTP router.
func bootstrapRuntime(ctx context.Context, cfg *app.Config, log *zap.Logger) (*runtimeStack, error) {
	stack := &runtimeStack{}
	var err error
	success := false

	defer func() {
		if !success {
			stack.Shutdown(context.Background(), log)
		}
	}()

	stack.DB, err = initialiseDatabase(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.Cache.Redis.Enabled {
		if stack.Redis, err = cache.NewRedisClient(cfg.Cache.RedisClientConfig()); err != nil {
			log.Warn("redis unavailable; falling back to in-memory rate limiting", zap.Error(err))
			stack.Redis = nil
		} else {
			log.Info("redis connected", zap.String("addr", cfg.Cache.Redis.Address))
		}
	}

	policy, err := cfg.Visibility.Policy()
	if err != nil {
		return nil, err
	}
	routing, err := cfg.RoutingTable()
	if err != nil {
		return nil, err
	}

	requestStore, err := store.NewGormStore(stack.DB)
	if err != nil {
		return nil, fmt.Errorf("initialise request store: %w", err)
	}

	users, err := services.NewUserService(stack.DB)
	if err != nil {
		return nil, fmt.Errorf("initialise user service: %w", err)
	}

	stack.AuditSvc, err = services.NewAuditService(stack.DB)
	if err != nil {
		return nil, fmt.Errorf("initialise audit service: %w", err)
	}

	notifications, err := services.NewNotificationService(stack.DB)
	if err != nil {
		return nil, fmt.Errorf("initialise notification service: %w", err)
	}

	requestOpts := []services.RequestServiceOption{
		services.WithVisibilityFilter(visibility.New(policy)),
		services.WithRouting(routing),
		services.WithAuditService(stack.AuditSvc),
		services.WithNotificationService(notifications),
	}
	if url := strings.TrimSpace(cfg.Export.Summary.URL); url != "" {
		requestOpts = append(requestOpts, services.WithSummaryClient(export.NewHTTPSummaryClient(url, cfg.Export.Summary.Timeout)))
		log.Info("summary export enabled", zap.String("url", url))
	}

	stack.Requests, err = services.NewRequestService(requestStore, users, requestOpts...)
	if err != nil {
		return nil, fmt.Errorf("initialise request service: %w", err)
	}

	if cfg.Maintenance.Enabled {
		stack.Jobs = monitoring.NewJobTracker()
		stack.Cleaner = maintenance.NewCleaner(stack.Requests, stack.AuditSvc,
			maintenance.WithJobTracker(stack.Jobs),
			maintenance.WithOverdueSchedule(cfg.Maintenance.OverdueSchedule),
			maintenance.WithAuditSchedule(cfg.Maintenance.AuditSchedule),
			maintenance.WithAuditRetentionDays(cfg.Maintenance.AuditRetentionDays),
		)
		if err := stack.Cleaner.Start(); err != nil {
			return nil, fmt.Errorf("start maintenance jobs: %w", err)
		}
	}

	stack.Health = buildHealthManager(cfg, stack)

	if stack.Redis != nil {
		stack.RateStore = middleware.NewRedisRateStore(stack.Redis)
	} else {
		stack.RateStore = middleware.NewMemoryRateStore()
	}

	stack.Router, err = api.NewRouter(cfg, api.Dependencies{
		Requests:      stack.Requests,
		Users:         users,
		Audit:         stack.AuditSvc,
		Notifications: notifications,
		Health:        stack.Health,
		RateStore:     stack.RateStore,
	})
	if err != nil {
		return nil, fmt.Errorf("build api router: %w", err)
	}

	success = true
	return stack, nil
}

func buildHealthManager(cfg *app.Config, stack *runtimeStack) *monitoring.HealthManager {
	timeout := cfg.Monitoring.Health.Timeout
	if timeout <= 0 {
		timeout = defaultHealthTimeout
	}

	manager := monitoring.NewHealthManager(timeout)
	manager.RegisterReadiness(checks.Database(stack.DB))

	// A nil *RedisClient must not reach the Pinger interface.
	if stack.Redis != nil {
		manager.RegisterReadiness(checks.Redis(stack.Redis, true))
	} else {
		manager.RegisterReadiness(checks.Redis(nil, cfg.Cache.Redis.Enabled))
	}

	manager.RegisterLiveness(checks.Maintenance(stack.Jobs, 0))
	return manager
}

// Shutdown gracefully stops background jobs and releases resources.
func (s *runtimeStack) Shutdown(ctx context.Context, log *zap.Logger) {
	if s == nil {
		return
	}

	if s.Cleaner != nil {
		if stopCtx := s.Cleaner.Stop(); stopCtx != nil {
			select {
			case <-stopCtx.Done():
			case <-ctx.Done():
				log.Warn("maintenance jobs did not stop before shutdown deadline")
			}
		}
	}

	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			log.Warn("redis shutdown", zap.Error(err))
		}
	}

	if s.DB != nil {
		closeDatabase(s.DB, log)
	}
}

func initialiseDatabase(cfg *app.Config) (*gorm.DB, error) {
	dbCfg := cfg.Database.ConnectionConfig()
	db, err := database.Open(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := database.AutoMigrateAndSeed(db); err != nil {
		return nil, fmt.Errorf("auto-migrate database: %w", err)
	}

	log := logger.WithModule("database")
	log.Info("database connected", zap.String("driver", dbCfg.Driver))

	return db, nil
}

func closeDatabase(db *gorm.DB, log *zap.Logger) {
	if db == nil {
		return
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Warn("failed to obtain underlying sql DB for closing", zap.Error(err))
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Warn("failed to close database", zap.Error(err))
	}
}
