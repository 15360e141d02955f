// Package visibility decides which resource requests an actor may see and
// derives every list and dashboard view from that visible subset only.
package visibility

import (
	"fmt"
	"strings"

	"github.com/charlesng35/resourcedesk/internal/models"
)

// UnassignedPolicy controls who sees requests with no assigned approver.
type UnassignedPolicy string

const (
	// UnassignedAllApprovers shows unassigned requests to every approver.
	UnassignedAllApprovers UnassignedPolicy = "all_approvers"
	// UnassignedNone hides unassigned requests from all approvers.
	UnassignedNone UnassignedPolicy = "none"
)

// ParseUnassignedPolicy converts a configuration value into a policy.
// An empty value selects UnassignedAllApprovers.
func ParseUnassignedPolicy(value string) (UnassignedPolicy, error) {
	switch UnassignedPolicy(strings.ToLower(strings.TrimSpace(value))) {
	case "", UnassignedAllApprovers:
		return UnassignedAllApprovers, nil
	case UnassignedNone:
		return UnassignedNone, nil
	default:
		return "", fmt.Errorf("visibility: unknown unassigned policy %q", value)
	}
}

// Filter projects the request set onto what a single actor may see.
type Filter struct {
	policy UnassignedPolicy
}

// New constructs a filter for the given unassigned-request policy.
func New(policy UnassignedPolicy) *Filter {
	if policy == "" {
		policy = UnassignedAllApprovers
	}
	return &Filter{policy: policy}
}

// Policy returns the configured unassigned policy.
func (f *Filter) Policy() UnassignedPolicy {
	return f.policy
}

// CanView reports whether actor may see req.
func (f *Filter) CanView(actor models.User, req models.ResourceRequest) bool {
	switch actor.Role {
	case models.RoleRequester:
		return actor.ID != "" && req.RequesterID == actor.ID
	case models.RoleApprover:
		if req.Unassigned() {
			return f.policy == UnassignedAllApprovers
		}
		return req.AssignedTo(actor.ID)
	default:
		return false
	}
}

// Apply returns the requests actor may see, preserving input order. The
// input slice is not modified.
func (f *Filter) Apply(actor models.User, all []models.ResourceRequest) []models.ResourceRequest {
	visible := make([]models.ResourceRequest, 0, len(all))
	for _, req := range all {
		if f.CanView(actor, req) {
			visible = append(visible, req)
		}
	}
	return visible
}
