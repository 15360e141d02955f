package checks

import (
	"context"
	"time"

	"github.com/charlesng35/resourcedesk/internal/monitoring"
)

// Pinger represents the minimal interface required to probe a redis connection.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Redis returns a readiness probe for the rate-limit cache. A disabled cache
// reports up; a missing client while enabled reports degraded because the
// service falls back to in-memory limits.
func Redis(client Pinger, enabled bool) monitoring.Check {
	return monitoring.NewCheck("redis", func(ctx context.Context) monitoring.ProbeResult {
		if !enabled {
			return monitoring.ProbeResult{Status: monitoring.StatusUp, Details: "redis disabled"}
		}
		if client == nil {
			return monitoring.ProbeResult{Status: monitoring.StatusDegraded, Details: "redis unavailable, using in-memory rate limits"}
		}

		start := time.Now()
		return monitoring.ResultFromError("redis", client.Ping(ctx), time.Since(start))
	})
}
