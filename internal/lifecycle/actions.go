// Package lifecycle holds the resource request state machine. Every function is
// pure: it validates against the snapshot it is given and returns new values
// for the caller to persist.
package lifecycle

import (
	"strings"

	"github.com/charlesng35/resourcedesk/internal/models"
)

// Action is a trigger that moves a request along the lifecycle.
type Action string

const (
	ActionTakeForReview Action = "take-for-review"
	ActionApprove       Action = "approve"
	ActionReject        Action = "reject"
	ActionMarkFulfilled Action = "mark-fulfilled"
	ActionClose         Action = "close"
)

// Actions lists every lifecycle action in workflow order.
func Actions() []Action {
	return []Action{
		ActionTakeForReview,
		ActionApprove,
		ActionReject,
		ActionMarkFulfilled,
		ActionClose,
	}
}

// Valid reports whether a is a known action.
func (a Action) Valid() bool {
	switch a {
	case ActionTakeForReview, ActionApprove, ActionReject, ActionMarkFulfilled, ActionClose:
		return true
	default:
		return false
	}
}

// ParseAction accepts kebab-case, snake_case or spaced action names.
func ParseAction(value string) (Action, bool) {
	value = strings.ToLower(strings.TrimSpace(value))
	value = strings.NewReplacer("_", "-", " ", "-").Replace(value)
	action := Action(value)
	return action, action.Valid()
}

// Target returns the state reached by applying action to a request in from.
// The second result is false when the pair is not in the transition table.
func Target(from models.Status, action Action) (models.Status, bool) {
	switch action {
	case ActionTakeForReview:
		if from == models.StatusSubmitted {
			return models.StatusUnderReview, true
		}
	case ActionApprove:
		switch from {
		case models.StatusSubmitted, models.StatusUnderReview:
			return models.StatusApproved, true
		}
	case ActionReject:
		switch from {
		case models.StatusSubmitted, models.StatusUnderReview:
			return models.StatusRejected, true
		}
	case ActionMarkFulfilled:
		if from == models.StatusApproved {
			return models.StatusFulfilled, true
		}
	case ActionClose:
		if from == models.StatusFulfilled {
			return models.StatusClosed, true
		}
	}
	return "", false
}

// RoleMayPerform reports whether role is ever allowed to trigger action.
// Only close is open to requesters.
func RoleMayPerform(role models.Role, action Action) bool {
	switch action {
	case ActionClose:
		return role == models.RoleRequester || role == models.RoleApprover
	case ActionTakeForReview, ActionApprove, ActionReject, ActionMarkFulfilled:
		return role == models.RoleApprover
	default:
		return false
	}
}
