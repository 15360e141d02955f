package models

import "gorm.io/datatypes"

// AuditLog records every mutating or exporting action attempted against a request.
type AuditLog struct {
	BaseModel

	ActorID   string         `gorm:"type:varchar(64);index" json:"actor_id"`
	ActorRole Role           `gorm:"type:varchar(16)" json:"actor_role"`
	Action    string         `gorm:"type:varchar(64);not null;index" json:"action"`
	RequestID string         `gorm:"type:varchar(32);index" json:"request_id"`
	Result    string         `gorm:"type:varchar(16);not null" json:"result"`
	Detail    string         `gorm:"type:text" json:"detail,omitempty"`
	IPAddress string         `gorm:"type:varchar(64)" json:"ip_address,omitempty"`
	UserAgent string         `gorm:"type:varchar(255)" json:"user_agent,omitempty"`
	Metadata  datatypes.JSON `json:"metadata,omitempty"`
}
