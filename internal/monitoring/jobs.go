package monitoring

import (
	"sort"
	"sync"
	"time"

	"github.com/charlesng35/resourcedesk/pkg/metrics"
)

// JobStatus is the last known outcome of a background job.
type JobStatus struct {
	Job                 string        `json:"job"`
	LastStatus          string        `json:"last_status"`
	LastRunAt           time.Time     `json:"last_run_at"`
	LastDuration        time.Duration `json:"last_duration"`
	LastError           string        `json:"last_error,omitempty"`
	LastSuccessAt       time.Time     `json:"last_success_at"`
	ConsecutiveFailures int           `json:"consecutive_failures"`
	TotalRuns           int           `json:"total_runs"`
}

// JobTracker records background job runs for health probes and metrics.
type JobTracker struct {
	mu   sync.Mutex
	jobs map[string]*JobStatus
	now  func() time.Time
}

// NewJobTracker constructs an empty tracker.
func NewJobTracker() *JobTracker {
	return &JobTracker{jobs: make(map[string]*JobStatus), now: time.Now}
}

// Register makes a job known before its first run so health probes can
// report it as pending.
func (t *JobTracker) Register(job string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.jobs[job]; !ok {
		t.jobs[job] = &JobStatus{Job: job}
	}
}

// Record stores the outcome of one run.
func (t *JobTracker) Record(job string, err error, duration time.Duration) {
	if duration < 0 {
		duration = 0
	}
	result := "success"
	if err != nil {
		result = "failure"
	}
	metrics.MaintenanceRuns.WithLabelValues(job, result).Inc()

	t.mu.Lock()
	defer t.mu.Unlock()

	status, ok := t.jobs[job]
	if !ok {
		status = &JobStatus{Job: job}
		t.jobs[job] = status
	}
	now := t.now()
	status.LastStatus = result
	status.LastRunAt = now
	status.LastDuration = duration
	status.TotalRuns++
	if err != nil {
		status.LastError = err.Error()
		status.ConsecutiveFailures++
		return
	}
	status.LastError = ""
	status.LastSuccessAt = now
	status.ConsecutiveFailures = 0
}

// Jobs returns a snapshot ordered by job name.
func (t *JobTracker) Jobs() []JobStatus {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]JobStatus, 0, len(t.jobs))
	for _, status := range t.jobs {
		out = append(out, *status)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Job < out[j].Job })
	return out
}
