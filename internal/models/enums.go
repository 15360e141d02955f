package models

import "strings"

// Status is the lifecycle state of a resource request.
type Status string

const (
	StatusSubmitted   Status = "Submitted"
	StatusUnderReview Status = "Under Review"
	StatusApproved    Status = "Approved"
	StatusRejected    Status = "Rejected"
	StatusFulfilled   Status = "Fulfilled"
	StatusClosed      Status = "Closed"
)

// Statuses lists every lifecycle state in workflow order.
func Statuses() []Status {
	return []Status{
		StatusSubmitted,
		StatusUnderReview,
		StatusApproved,
		StatusFulfilled,
		StatusClosed,
		StatusRejected,
	}
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusSubmitted, StatusUnderReview, StatusApproved, StatusRejected, StatusFulfilled, StatusClosed:
		return true
	default:
		return false
	}
}

// Terminal reports whether no further transitions leave s.
func (s Status) Terminal() bool {
	return s == StatusRejected || s == StatusClosed
}

// Priority ranks how urgently a request should be resolved.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

// RequestType classifies what kind of resource is being requested.
type RequestType string

const (
	RequestTypeSystemAccess   RequestType = "System Access"
	RequestTypeEquipment      RequestType = "Equipment"
	RequestTypeFacility       RequestType = "Facility"
	RequestTypeGeneralService RequestType = "General Service"
)

// RequestTypes lists every supported request type.
func RequestTypes() []RequestType {
	return []RequestType{
		RequestTypeSystemAccess,
		RequestTypeEquipment,
		RequestTypeFacility,
		RequestTypeGeneralService,
	}
}

// Valid reports whether t is a known request type.
func (t RequestType) Valid() bool {
	switch t {
	case RequestTypeSystemAccess, RequestTypeEquipment, RequestTypeFacility, RequestTypeGeneralService:
		return true
	default:
		return false
	}
}

// Role is the static portal role of a user.
type Role string

const (
	RoleRequester Role = "Requester"
	RoleApprover  Role = "Approver"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleRequester || r == RoleApprover
}

// ParseStatus matches a status case-insensitively, accepting snake_case forms such as "under_review".
func ParseStatus(value string) (Status, bool) {
	normalised := normaliseEnum(value)
	for _, s := range Statuses() {
		if normaliseEnum(string(s)) == normalised {
			return s, true
		}
	}
	return "", false
}

// ParsePriority matches a priority case-insensitively.
func ParsePriority(value string) (Priority, bool) {
	normalised := normaliseEnum(value)
	for _, p := range []Priority{PriorityLow, PriorityMedium, PriorityHigh} {
		if normaliseEnum(string(p)) == normalised {
			return p, true
		}
	}
	return "", false
}

// ParseRequestType matches a request type case-insensitively, accepting snake_case forms.
func ParseRequestType(value string) (RequestType, bool) {
	normalised := normaliseEnum(value)
	for _, t := range RequestTypes() {
		if normaliseEnum(string(t)) == normalised {
			return t, true
		}
	}
	return "", false
}

func normaliseEnum(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	value = strings.ReplaceAll(value, "_", " ")
	value = strings.ReplaceAll(value, "-", " ")
	return strings.Join(strings.Fields(value), " ")
}
