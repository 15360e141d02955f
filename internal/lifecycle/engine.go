package lifecycle

import (
	"fmt"
	"strings"
	"time"

	"github.com/charlesng35/resourcedesk/internal/models"
	apperrors "github.com/charlesng35/resourcedesk/pkg/errors"
)

// Allowed returns nil when actor may apply action to req in its current
// state, or an INVALID_TRANSITION error naming the failed guard.
func Allowed(actor models.User, req models.ResourceRequest, action Action) error {
	if !action.Valid() {
		return apperrors.NewInvalidTransition(fmt.Sprintf("unknown action %q", action))
	}
	if req.Status.Terminal() {
		return apperrors.NewInvalidTransition(fmt.Sprintf("request %s is %s and accepts no further actions", req.RequestID, req.Status))
	}
	if !RoleMayPerform(actor.Role, action) {
		return apperrors.NewInvalidTransition(fmt.Sprintf("role %q may not %s requests", actor.Role, action))
	}
	if actor.Role == models.RoleRequester && req.RequesterID != actor.ID {
		return apperrors.NewInvalidTransition(fmt.Sprintf("only the requester of %s may %s it", req.RequestID, action))
	}
	if actor.Role == models.RoleApprover && !req.Unassigned() && !req.AssignedTo(actor.ID) {
		return apperrors.NewInvalidTransition(fmt.Sprintf("request %s is assigned to another approver", req.RequestID))
	}
	if _, ok := Target(req.Status, action); !ok {
		return apperrors.NewInvalidTransition(fmt.Sprintf("cannot %s a request that is %s", action, req.Status))
	}
	return nil
}

// AvailableActions lists the actions actor may apply to req right now.
func AvailableActions(actor models.User, req models.ResourceRequest) []Action {
	var out []Action
	for _, action := range Actions() {
		if Allowed(actor, req, action) == nil {
			out = append(out, action)
		}
	}
	return out
}

// Apply validates and performs a transition, returning the updated request.
// A non-blank comment replaces the handler comments; a blank one keeps them.
// An approver taking an unassigned request for review becomes its assignee.
// On error the returned request is the zero value and req is untouched.
func Apply(req models.ResourceRequest, actor models.User, action Action, comment string, now time.Time) (models.ResourceRequest, error) {
	if err := Allowed(actor, req, action); err != nil {
		return models.ResourceRequest{}, err
	}

	next, _ := Target(req.Status, action)

	out := req.Clone()
	out.Status = next
	if trimmed := strings.TrimSpace(comment); trimmed != "" {
		out.HandlerComments = &trimmed
	}
	if action == ActionTakeForReview && out.Unassigned() {
		approverID := actor.ID
		out.AssignedApproverID = &approverID
	}
	out.UpdatedAt = now
	return out, nil
}

// Changes carries the requester-editable fields. Nil fields are left alone.
type Changes struct {
	ShortDescription *string
	Justification    *string
	Priority         *models.Priority
}

// Empty reports whether no field is being changed.
func (c Changes) Empty() bool {
	return c.ShortDescription == nil && c.Justification == nil && c.Priority == nil
}

// CanEdit reports whether actor may edit req's details.
func CanEdit(actor models.User, req models.ResourceRequest) error {
	if req.Status != models.StatusSubmitted {
		return apperrors.NewInvalidTransition(fmt.Sprintf("request %s is %s; only submitted requests can be edited", req.RequestID, req.Status))
	}
	if actor.Role != models.RoleRequester || actor.ID != req.RequesterID {
		return apperrors.NewInvalidTransition(fmt.Sprintf("only the requester of %s may edit it", req.RequestID))
	}
	return nil
}

// Edit applies requester changes to a submitted request. Status and the
// target resolution date are never touched.
func Edit(req models.ResourceRequest, actor models.User, changes Changes, now time.Time) (models.ResourceRequest, error) {
	if err := CanEdit(actor, req); err != nil {
		return models.ResourceRequest{}, err
	}
	if changes.Empty() {
		return models.ResourceRequest{}, apperrors.NewValidation("no changes supplied")
	}

	out := req.Clone()
	if changes.ShortDescription != nil {
		value := strings.TrimSpace(*changes.ShortDescription)
		if value == "" {
			return models.ResourceRequest{}, apperrors.NewValidation("short description must not be blank")
		}
		out.ShortDescription = value
	}
	if changes.Justification != nil {
		value := strings.TrimSpace(*changes.Justification)
		if value == "" {
			return models.ResourceRequest{}, apperrors.NewValidation("justification must not be blank")
		}
		out.Justification = value
	}
	if changes.Priority != nil {
		if !changes.Priority.Valid() {
			return models.ResourceRequest{}, apperrors.NewValidation(fmt.Sprintf("unknown priority %q", *changes.Priority))
		}
		out.Priority = *changes.Priority
	}
	out.UpdatedAt = now
	return out, nil
}
