package database

import (
	"strings"
	"testing"
	"time"
)

func TestBuildPostgresDSNDefaults(t *testing.T) {
	dsn, err := BuildDSN(Config{
		Driver: "postgres",
		User:   "resourcedesk",
		Name:   "resourcedesk",
	})
	if err != nil {
		t.Fatalf("build dsn: %v", err)
	}

	expected := "host=localhost port=5432 user=resourcedesk dbname=resourcedesk TimeZone=UTC application_name=resourcedesk sslmode=disable"
	if dsn != expected {
		t.Fatalf("expected %q, got %q", expected, dsn)
	}
}

func TestBuildPostgresDSNWithOptions(t *testing.T) {
	dsn, err := BuildDSN(Config{
		Driver:   "postgresql",
		User:     "user",
		Name:     "db",
		Host:     "db.example.com",
		Port:     6543,
		Password: "it's secret",
		Options: map[string]string{
			"sslmode":     "require",
			"search_path": "public",
		},
	})
	if err != nil {
		t.Fatalf("build dsn: %v", err)
	}

	if !containsAll(
		dsn,
		"host=db.example.com",
		"port=6543",
		"user=user",
		"dbname=db",
		`password='it\'s secret'`,
		"sslmode=require",
		"search_path=public",
		"TimeZone=UTC",
	) {
		t.Fatalf("dsn missing expected components: %q", dsn)
	}
}

func TestBuildDSNRequiresUserAndName(t *testing.T) {
	for _, driver := range []string{"postgres", "mysql"} {
		if _, err := BuildDSN(Config{Driver: driver, Host: "localhost"}); err == nil {
			t.Fatalf("%s: expected error for missing credentials", driver)
		}
	}
}

func TestBuildDSNPrefersExplicitDSN(t *testing.T) {
	dsn, err := BuildDSN(Config{Driver: "mysql", DSN: "root@tcp(db)/desk"})
	if err != nil {
		t.Fatalf("build dsn: %v", err)
	}
	if dsn != "root@tcp(db)/desk" {
		t.Fatalf("expected explicit dsn, got %q", dsn)
	}
}

func TestBuildMySQLDSNDefaults(t *testing.T) {
	dsn, err := BuildDSN(Config{
		Driver: "mysql",
		User:   "resourcedesk",
		Name:   "resourcedesk",
	})
	if err != nil {
		t.Fatalf("build dsn: %v", err)
	}

	if !containsAll(
		dsn,
		"resourcedesk@tcp(127.0.0.1:3306)/resourcedesk?",
		"parseTime=true",
		"charset=utf8mb4",
	) {
		t.Fatalf("dsn missing expected components: %q", dsn)
	}
	if strings.Contains(dsn, "loc=Local") {
		t.Fatalf("expected UTC session location, got %q", dsn)
	}
}

func TestBuildMySQLDSNWithOptions(t *testing.T) {
	dsn, err := BuildDSN(Config{
		Driver:   "mysql",
		User:     "user",
		Password: "secret",
		Name:     "db",
		Host:     "db.example.com",
		Port:     3307,
		Options: map[string]string{
			"tls": "skip-verify",
		},
	})
	if err != nil {
		t.Fatalf("build dsn: %v", err)
	}

	if !containsAll(
		dsn,
		"user:secret@tcp(db.example.com:3307)/db?",
		"charset=utf8mb4",
		"parseTime=true",
		"tls=skip-verify",
	) {
		t.Fatalf("dsn missing expected components: %q", dsn)
	}
}

func TestBuildSQLiteDSNLocksForWrites(t *testing.T) {
	dsn, err := BuildDSN(Config{Driver: "sqlite"})
	if err != nil {
		t.Fatalf("build dsn: %v", err)
	}
	expected := "file::memory:?_busy_timeout=5000&_foreign_keys=1&_txlock=immediate"
	if dsn != expected {
		t.Fatalf("expected %q, got %q", expected, dsn)
	}

	path := t.TempDir() + "/nested/desk.sqlite"
	dsn, err = BuildDSN(Config{Driver: "sqlite3", Path: path, BusyTimeout: 250 * time.Millisecond})
	if err != nil {
		t.Fatalf("build dsn: %v", err)
	}
	if !containsAll(dsn, "file:", "desk.sqlite?", "_busy_timeout=250", "_txlock=immediate", "_journal_mode=WAL") {
		t.Fatalf("dsn missing expected components: %q", dsn)
	}
}

func TestBuildDSNUnsupportedDriver(t *testing.T) {
	if _, err := BuildDSN(Config{Driver: "oracle"}); err == nil {
		t.Fatal("expected unsupported driver error")
	}
}

func containsAll(value string, parts ...string) bool {
	for _, part := range parts {
		if !strings.Contains(value, part) {
			return false
		}
	}
	return true
}
