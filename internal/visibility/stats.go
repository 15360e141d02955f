package visibility

import (
	"time"

	"github.com/charlesng35/resourcedesk/internal/models"
)

// Stats are the dashboard counters for one actor.
type Stats struct {
	Total      int `json:"total"`
	Submitted  int `json:"submitted"`
	InProgress int `json:"in_progress"`
	Fulfilled  int `json:"fulfilled"`
	Rejected   int `json:"rejected"`
	Closed     int `json:"closed"`
	Overdue    int `json:"overdue"`
}

// Dashboard counts only the requests actor may see.
func (f *Filter) Dashboard(actor models.User, all []models.ResourceRequest, now time.Time) Stats {
	return count(f.Apply(actor, all), now)
}

func count(visible []models.ResourceRequest, now time.Time) Stats {
	var stats Stats
	for _, req := range visible {
		stats.Total++
		switch req.Status {
		case models.StatusSubmitted:
			stats.Submitted++
		case models.StatusUnderReview, models.StatusApproved:
			stats.InProgress++
		case models.StatusFulfilled:
			stats.Fulfilled++
		case models.StatusRejected:
			stats.Rejected++
		case models.StatusClosed:
			stats.Closed++
		}
		if req.Overdue(now) {
			stats.Overdue++
		}
	}
	return stats
}
