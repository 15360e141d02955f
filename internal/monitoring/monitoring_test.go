package monitoring_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/charlesng35/resourcedesk/internal/cache"
	"github.com/charlesng35/resourcedesk/internal/database/testutil"
	"github.com/charlesng35/resourcedesk/internal/monitoring"
	"github.com/charlesng35/resourcedesk/internal/monitoring/checks"
)

func TestHealthManagerEvaluate(t *testing.T) {
	manager := monitoring.NewHealthManager(time.Second)
	manager.RegisterReadiness(monitoring.NewCheck("database", func(ctx context.Context) monitoring.ProbeResult {
		return monitoring.ProbeResult{Status: monitoring.StatusUp}
	}))
	manager.RegisterReadiness(monitoring.NewCheck("redis", func(ctx context.Context) monitoring.ProbeResult {
		return monitoring.ProbeResult{Status: monitoring.StatusDown, Details: "connection refused"}
	}))
	manager.RegisterReadiness(monitoring.NewCheck("", nil))

	report := manager.EvaluateReadiness(context.Background())
	require.False(t, report.Success)
	require.Equal(t, monitoring.StatusDown, report.Status)
	require.Len(t, report.Checks, 2)
	require.Equal(t, "database", report.Checks[0].Component)
	require.Equal(t, "redis", report.Checks[1].Component)

	live := manager.EvaluateLiveness(context.Background())
	require.True(t, live.Success)
	require.Empty(t, live.Checks)
}

func TestHealthManagerRecoversPanicsAndTimesOut(t *testing.T) {
	manager := monitoring.NewHealthManager(20 * time.Millisecond)
	manager.RegisterLiveness(monitoring.NewCheck("panics", func(context.Context) monitoring.ProbeResult {
		panic("boom")
	}))
	manager.RegisterLiveness(monitoring.NewCheck("slow", func(ctx context.Context) monitoring.ProbeResult {
		<-ctx.Done()
		return monitoring.ResultFromError("slow", ctx.Err(), 0)
	}))

	report := manager.EvaluateLiveness(context.Background())
	require.Equal(t, monitoring.StatusDown, report.Status)
	require.Equal(t, "boom", report.Checks[0].Details)
	require.Equal(t, monitoring.StatusDegraded, report.Checks[1].Status)
}

func TestWorst(t *testing.T) {
	require.Equal(t, monitoring.StatusDown, monitoring.Worst(monitoring.StatusDegraded, monitoring.StatusDown))
	require.Equal(t, monitoring.StatusDegraded, monitoring.Worst(monitoring.StatusDegraded, monitoring.StatusUp))
	require.Equal(t, monitoring.StatusUp, monitoring.Worst(monitoring.StatusUp, monitoring.StatusUp))
}

func TestDatabaseCheck(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	result := checks.Database(db).Run(context.Background())
	require.Equal(t, monitoring.StatusUp, result.Status)

	result = checks.Database(nil).Run(context.Background())
	require.Equal(t, monitoring.StatusDown, result.Status)
}

func TestRedisCheck(t *testing.T) {
	srv := miniredis.RunT(t)
	store, err := cache.NewRedisClient(cache.RedisConfig{Address: srv.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.Equal(t, monitoring.StatusUp, checks.Redis(store, true).Run(context.Background()).Status)
	require.Equal(t, monitoring.StatusUp, checks.Redis(nil, false).Run(context.Background()).Status)
	require.Equal(t, monitoring.StatusDegraded, checks.Redis(nil, true).Run(context.Background()).Status)

	srv.Close()
	require.Equal(t, monitoring.StatusDown, checks.Redis(store, true).Run(context.Background()).Status)
}

func TestMaintenanceCheck(t *testing.T) {
	tracker := monitoring.NewJobTracker()
	check := checks.Maintenance(tracker, 0)

	result := check.Run(context.Background())
	require.Equal(t, monitoring.StatusUp, result.Status)

	tracker.Register("overdue_scan")
	result = check.Run(context.Background())
	require.Equal(t, monitoring.StatusUp, result.Status)
	require.Contains(t, result.Details, "pending first run")

	tracker.Record("overdue_scan", nil, time.Second)
	tracker.Record("audit_retention", errors.New("timeout"), time.Second)

	result = check.Run(context.Background())
	require.Equal(t, monitoring.StatusDown, result.Status)
	require.Contains(t, result.Details, "audit_retention: timeout")

	tracker.Record("audit_retention", nil, time.Second)
	result = check.Run(context.Background())
	require.Equal(t, monitoring.StatusUp, result.Status)

	jobs := tracker.Jobs()
	require.Len(t, jobs, 2)
	require.Equal(t, "audit_retention", jobs[0].Job)
	require.Equal(t, 2, jobs[0].TotalRuns)
	require.Zero(t, jobs[0].ConsecutiveFailures)
}
