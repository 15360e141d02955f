package models

import "time"

// ResourceRequest is a requester's ask for system access, equipment, a facility or a general service.
type ResourceRequest struct {
	RequestID          string  `gorm:"primaryKey;type:varchar(32)" json:"request_id"`
	Sequence           int64   `gorm:"uniqueIndex;not null" json:"-"`
	RequesterID        string  `gorm:"type:varchar(64);not null;index" json:"requester_id"`
	AssignedApproverID *string `gorm:"type:varchar(64);index" json:"assigned_approver_id,omitempty"`

	RequestType      RequestType `gorm:"type:varchar(32);not null;index" json:"request_type"`
	ShortDescription string      `gorm:"type:varchar(255);not null" json:"short_description"`
	Justification    string      `gorm:"type:text;not null" json:"justification"`
	Priority         Priority    `gorm:"type:varchar(16);not null;index" json:"priority"`

	RequestedDate        time.Time `gorm:"not null" json:"requested_date"`
	TargetResolutionDate time.Time `gorm:"not null;index" json:"target_resolution_date"`

	Status          Status  `gorm:"type:varchar(32);not null;index" json:"status"`
	HandlerComments *string `gorm:"type:text" json:"handler_comments,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime:false;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime:false" json:"updated_at"`
}

// TableName pins the table name independent of naming strategy.
func (ResourceRequest) TableName() string {
	return "resource_requests"
}

// Clone returns a copy that shares no pointers with r.
func (r ResourceRequest) Clone() ResourceRequest {
	out := r
	if r.AssignedApproverID != nil {
		id := *r.AssignedApproverID
		out.AssignedApproverID = &id
	}
	if r.HandlerComments != nil {
		comment := *r.HandlerComments
		out.HandlerComments = &comment
	}
	return out
}

// AssignedTo reports whether userID is the request's assigned approver.
func (r ResourceRequest) AssignedTo(userID string) bool {
	return r.AssignedApproverID != nil && *r.AssignedApproverID == userID
}

// Unassigned reports whether no approver has been assigned yet.
func (r ResourceRequest) Unassigned() bool {
	return r.AssignedApproverID == nil || *r.AssignedApproverID == ""
}

// Overdue reports whether the request is still open after its target resolution date.
func (r ResourceRequest) Overdue(now time.Time) bool {
	switch r.Status {
	case StatusFulfilled, StatusClosed, StatusRejected:
		return false
	}
	return now.After(r.TargetResolutionDate)
}
