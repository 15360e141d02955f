package models

// User is a portal member acting either as requester or approver.
type User struct {
	BaseModel

	Name  string `gorm:"type:varchar(128);not null" json:"name"`
	Email string `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Role  Role   `gorm:"type:varchar(16);not null;index" json:"role"`
}

// IsApprover reports whether the user reviews and actions requests.
func (u User) IsApprover() bool {
	return u.Role == RoleApprover
}

// IsRequester reports whether the user submits requests.
func (u User) IsRequester() bool {
	return u.Role == RoleRequester
}
