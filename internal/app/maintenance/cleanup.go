package maintenance

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/charlesng35/resourcedesk/internal/monitoring"
	"github.com/charlesng35/resourcedesk/internal/services"
	"github.com/charlesng35/resourcedesk/pkg/logger"
)

const (
	JobOverdueScan    = "overdue_scan"
	JobAuditRetention = "audit_retention"

	defaultAuditRetentionDays = 365
	defaultOverdueSpec        = "@hourly"
	defaultAuditSpec          = "@daily"
)

// OverdueScanner counts overdue requests and notifies their approvers.
type OverdueScanner interface {
	ScanOverdue(ctx context.Context) (services.OverdueReport, error)
}

// AuditPruner removes audit entries past the retention window.
type AuditPruner interface {
	CleanupOlderThan(ctx context.Context, retentionDays int) (int64, error)
}

// Cleaner coordinates background maintenance: the overdue request scan and
// audit retention enforcement.
type Cleaner struct {
	scanner   OverdueScanner
	audit     AuditPruner
	tracker   *monitoring.JobTracker
	cron      *cron.Cron
	log       *zap.Logger
	retention int

	overdueSchedule string
	auditSchedule   string
}

// Option customises the Cleaner.
type Option func(*Cleaner)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(cleaner *Cleaner) {
		if c != nil {
			cleaner.cron = c
		}
	}
}

// WithJobTracker records every run for health probes.
func WithJobTracker(tracker *monitoring.JobTracker) Option {
	return func(cleaner *Cleaner) {
		cleaner.tracker = tracker
	}
}

// WithAuditRetentionDays adjusts how long audit logs are retained before cleanup.
func WithAuditRetentionDays(days int) Option {
	return func(cleaner *Cleaner) {
		if days > 0 {
			cleaner.retention = days
		}
	}
}

// WithOverdueSchedule overrides the cron specification for the overdue scan.
func WithOverdueSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.overdueSchedule = spec
		}
	}
}

// WithAuditSchedule overrides the cron specification for audit retention enforcement.
func WithAuditSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.auditSchedule = spec
		}
	}
}

// NewCleaner constructs a Cleaner. A nil dependency skips the matching job.
func NewCleaner(scanner OverdueScanner, audit AuditPruner, opts ...Option) *Cleaner {
	cleaner := &Cleaner{
		scanner:         scanner,
		audit:           audit,
		retention:       defaultAuditRetentionDays,
		overdueSchedule: defaultOverdueSpec,
		auditSchedule:   defaultAuditSpec,
		log:             logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}
	return cleaner
}

// Start registers the jobs with the cron scheduler and launches it when at
// least one job is enabled.
func (c *Cleaner) Start() error {
	registered := 0

	if c.scanner != nil {
		if _, err := c.cron.AddFunc(c.overdueSchedule, func() {
			_ = c.scanOverdue(context.Background())
		}); err != nil {
			return err
		}
		c.register(JobOverdueScan)
		registered++
	}

	if c.audit != nil && c.retention > 0 {
		if _, err := c.cron.AddFunc(c.auditSchedule, func() {
			_ = c.pruneAudit(context.Background())
		}); err != nil {
			return err
		}
		c.register(JobAuditRetention)
		registered++
	}

	if registered == 0 {
		return nil
	}
	c.cron.Start()
	return nil
}

// Stop halts the underlying scheduler, waiting for any running jobs to complete.
func (c *Cleaner) Stop() context.Context {
	if c.cron == nil {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		return ctx
	}
	return c.cron.Stop()
}

// RunOnce executes every configured job sequentially.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var errs error
	if c.scanner != nil {
		errs = multierr.Append(errs, c.scanOverdue(ctx))
	}
	if c.audit != nil && c.retention > 0 {
		errs = multierr.Append(errs, c.pruneAudit(ctx))
	}
	return errs
}

func (c *Cleaner) scanOverdue(ctx context.Context) error {
	return c.run(JobOverdueScan, func() error {
		report, err := c.scanner.ScanOverdue(ctx)
		if err != nil {
			return err
		}
		c.log.Info("overdue scan complete",
			zap.Int("open", report.Open),
			zap.Int("overdue", report.Overdue),
			zap.Int("notified", report.Notified),
		)
		return nil
	})
}

func (c *Cleaner) pruneAudit(ctx context.Context) error {
	return c.run(JobAuditRetention, func() error {
		removed, err := c.audit.CleanupOlderThan(ctx, c.retention)
		if err != nil {
			return err
		}
		if removed > 0 {
			c.log.Info("audit retention enforced", zap.Int64("removed", removed), zap.Int("retention_days", c.retention))
		}
		return nil
	})
}

func (c *Cleaner) run(job string, fn func() error) error {
	start := time.Now()
	err := fn()
	if err != nil {
		c.log.Warn("maintenance job failed", zap.String("job", job), zap.Error(err))
	}
	if c.tracker != nil {
		c.tracker.Record(job, err, time.Since(start))
	}
	return err
}

func (c *Cleaner) register(job string) {
	if c.tracker != nil {
		c.tracker.Register(job)
	}
}
