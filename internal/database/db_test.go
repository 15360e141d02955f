package database

import (
	"testing"

	"gorm.io/gorm"

	"github.com/charlesng35/resourcedesk/internal/models"
)

func TestOpenSQLiteMemory(t *testing.T) {
	db := openTestDB(t)

	if err := db.Exec("SELECT 1").Error; err != nil {
		t.Fatalf("expected health query to succeed: %v", err)
	}
}

func TestOpenUnsupportedDriver(t *testing.T) {
	if _, err := Open(Config{Driver: "oracle"}); err == nil {
		t.Fatal("expected unsupported driver error")
	}
}

func TestAutoMigrateAndSeedData(t *testing.T) {
	db := openTestDB(t)

	if err := AutoMigrateAndSeed(db); err != nil {
		t.Fatalf("auto migrate and seed failed: %v", err)
	}

	var approvers int64
	if err := db.Model(&models.User{}).Where("role = ?", models.RoleApprover).Count(&approvers).Error; err != nil {
		t.Fatalf("count approvers: %v", err)
	}
	if approvers != 2 {
		t.Fatalf("expected 2 seeded approvers, got %d", approvers)
	}

	for _, table := range []string{"resource_requests", "audit_logs", "notifications"} {
		if !db.Migrator().HasTable(table) {
			t.Fatalf("expected table %s to exist", table)
		}
	}
}

func TestSeedDataIsIdempotent(t *testing.T) {
	db := openTestDB(t)

	if err := AutoMigrate(db); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	if err := db.Create(&models.User{BaseModel: models.BaseModel{ID: "u-1"}, Name: "Renamed", Email: "renamed@example.com", Role: models.RoleRequester}).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := SeedData(db); err != nil {
			t.Fatalf("seed data run %d: %v", i, err)
		}
	}

	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		t.Fatalf("count users: %v", err)
	}
	if count != int64(len(DefaultUsers())) {
		t.Fatalf("expected %d users, got %d", len(DefaultUsers()), count)
	}

	var alex models.User
	if err := db.First(&alex, "id = ?", "u-1").Error; err != nil {
		t.Fatalf("load u-1: %v", err)
	}
	if alex.Name != "Renamed" {
		t.Fatalf("expected existing user to be preserved, got %q", alex.Name)
	}
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := Open(Config{Driver: "sqlite"})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return db
}
