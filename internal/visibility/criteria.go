package visibility

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charlesng35/resourcedesk/internal/models"
)

// SortField names a sortable request column.
type SortField string

const (
	SortCreatedAt  SortField = "created_at"
	SortUpdatedAt  SortField = "updated_at"
	SortTargetDate SortField = "target_resolution_date"
	SortPriority   SortField = "priority"
	SortStatus     SortField = "status"
	SortRequestID  SortField = "request_id"
)

const defaultSortField = SortCreatedAt

// ParseSortField accepts a column name; empty selects created_at.
func ParseSortField(value string) (SortField, error) {
	switch field := SortField(strings.ToLower(strings.TrimSpace(value))); field {
	case "":
		return defaultSortField, nil
	case SortCreatedAt, SortUpdatedAt, SortTargetDate, SortPriority, SortStatus, SortRequestID:
		return field, nil
	default:
		return "", fmt.Errorf("unknown sort field %q", value)
	}
}

// Criteria narrows and orders a visible request set. Zero-valued fields do
// not filter.
type Criteria struct {
	Types       []models.RequestType
	Statuses    []models.Status
	Priorities  []models.Priority
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	PendingOnly bool
	SortBy      SortField
	Ascending   bool
}

// Pending reports whether a request still awaits approver work.
func Pending(req models.ResourceRequest) bool {
	switch req.Status {
	case models.StatusSubmitted, models.StatusUnderReview, models.StatusApproved:
		return true
	default:
		return false
	}
}

func (c Criteria) matches(req models.ResourceRequest) bool {
	if len(c.Types) > 0 && !contains(c.Types, req.RequestType) {
		return false
	}
	if len(c.Statuses) > 0 && !contains(c.Statuses, req.Status) {
		return false
	}
	if len(c.Priorities) > 0 && !contains(c.Priorities, req.Priority) {
		return false
	}
	if c.CreatedFrom != nil && req.CreatedAt.Before(*c.CreatedFrom) {
		return false
	}
	if c.CreatedTo != nil && req.CreatedAt.After(*c.CreatedTo) {
		return false
	}
	if c.PendingOnly && !Pending(req) {
		return false
	}
	return true
}

func contains[T comparable](values []T, v T) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

var priorityRank = map[models.Priority]int{
	models.PriorityLow:    0,
	models.PriorityMedium: 1,
	models.PriorityHigh:   2,
}

// statusRank orders open work first; rejection sorts before the fulfilled
// and closed outcomes.
var statusRank = map[models.Status]int{
	models.StatusSubmitted:   0,
	models.StatusUnderReview: 1,
	models.StatusApproved:    2,
	models.StatusRejected:    3,
	models.StatusFulfilled:   4,
	models.StatusClosed:      5,
}

func (c Criteria) less(a, b models.ResourceRequest) bool {
	switch c.SortBy {
	case SortUpdatedAt:
		return a.UpdatedAt.Before(b.UpdatedAt)
	case SortTargetDate:
		return a.TargetResolutionDate.Before(b.TargetResolutionDate)
	case SortPriority:
		if priorityRank[a.Priority] == priorityRank[b.Priority] {
			return a.Sequence < b.Sequence
		}
		return priorityRank[a.Priority] < priorityRank[b.Priority]
	case SortStatus:
		if statusRank[a.Status] == statusRank[b.Status] {
			return a.Sequence < b.Sequence
		}
		return statusRank[a.Status] < statusRank[b.Status]
	case SortRequestID:
		// REQ-999 would sort after REQ-1000 as text.
		return a.Sequence < b.Sequence
	default:
		if a.CreatedAt.Equal(b.CreatedAt) {
			return a.Sequence < b.Sequence
		}
		return a.CreatedAt.Before(b.CreatedAt)
	}
}

// List filters all down to what actor may see, then applies criteria and
// ordering to that visible subset. Criteria never widen visibility.
func (f *Filter) List(actor models.User, all []models.ResourceRequest, criteria Criteria) []models.ResourceRequest {
	visible := f.Apply(actor, all)

	out := visible[:0]
	for _, req := range visible {
		if criteria.matches(req) {
			out = append(out, req)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if criteria.Ascending {
			return criteria.less(out[i], out[j])
		}
		return criteria.less(out[j], out[i])
	})
	return out
}
