package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsCreated counts submitted resource requests by type and priority.
	RequestsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resourcedesk_requests_created_total",
			Help: "Total number of resource requests submitted",
		},
		[]string{"type", "priority"},
	)

	// Transitions counts lifecycle actions and their outcome (applied|rejected|error).
	Transitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resourcedesk_transitions_total",
			Help: "Total number of lifecycle actions attempted",
		},
		[]string{"action", "result"},
	)

	// Exports counts export and summary attempts by format and result (success|failure).
	Exports = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resourcedesk_exports_total",
			Help: "Total number of request exports",
		},
		[]string{"format", "result"},
	)

	// OverdueRequests tracks open requests past their target resolution date at the last scan.
	OverdueRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "resourcedesk_overdue_requests",
			Help: "Open requests past their target resolution date",
		},
	)

	// MaintenanceRuns counts background job runs by job and result (success|failure).
	MaintenanceRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resourcedesk_maintenance_runs_total",
			Help: "Total number of background maintenance job runs",
		},
		[]string{"job", "result"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "resourcedesk_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
