package database

import (
	"gorm.io/gorm"

	"github.com/charlesng35/resourcedesk/internal/models"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.ResourceRequest{},
		&models.AuditLog{},
		&models.Notification{},
	)
}

// DefaultUsers is the directory seeded into an empty database.
func DefaultUsers() []models.User {
	return []models.User{
		{BaseModel: models.BaseModel{ID: "u-1"}, Name: "Alex Johnson", Email: "alex.johnson@example.com", Role: models.RoleRequester},
		{BaseModel: models.BaseModel{ID: "u-2"}, Name: "Jordan Lee", Email: "jordan.lee@example.com", Role: models.RoleApprover},
		{BaseModel: models.BaseModel{ID: "u-3"}, Name: "Taylor Smith", Email: "taylor.smith@example.com", Role: models.RoleApprover},
		{BaseModel: models.BaseModel{ID: "u-4"}, Name: "Sarah Chen", Email: "sarah.chen@example.com", Role: models.RoleRequester},
	}
}

// SeedData inserts the default users when they are missing. Existing rows
// are left untouched.
func SeedData(db *gorm.DB) error {
	for _, user := range DefaultUsers() {
		if err := db.Where(models.User{BaseModel: models.BaseModel{ID: user.ID}}).Attrs(user).FirstOrCreate(&models.User{}).Error; err != nil {
			return err
		}
	}
	return nil
}
