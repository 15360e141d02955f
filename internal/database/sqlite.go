package database

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
)

const defaultSQLiteBusyTimeout = 5 * time.Second

// isMemoryPath reports whether path selects an in-memory database.
func isMemoryPath(path string) bool {
	path = strings.TrimSpace(path)
	return path == "" || strings.EqualFold(path, ":memory:")
}

// sqliteDSN builds a go-sqlite3 DSN. Writers start transactions with
// BEGIN IMMEDIATE so the request store's read-max-then-insert id allocation
// holds the write lock from its first read, and wait up to the busy timeout
// for a competing writer instead of failing with SQLITE_BUSY.
func sqliteDSN(cfg Config) (string, error) {
	if dsn := strings.TrimSpace(cfg.DSN); dsn != "" {
		return dsn, nil
	}

	busy := cfg.BusyTimeout
	if busy <= 0 {
		busy = defaultSQLiteBusyTimeout
	}

	params := url.Values{}
	params.Set("_foreign_keys", "1")
	params.Set("_busy_timeout", strconv.FormatInt(busy.Milliseconds(), 10))
	params.Set("_txlock", "immediate")
	for key, value := range cfg.Options {
		params.Set(key, value)
	}

	if isMemoryPath(cfg.Path) {
		return "file::memory:?" + params.Encode(), nil
	}

	path := strings.TrimSpace(cfg.Path)
	if err := ensureDir(path); err != nil {
		return "", err
	}
	if params.Get("_journal_mode") == "" {
		params.Set("_journal_mode", "WAL")
	}
	return fmt.Sprintf("file:%s?%s", filepath.ToSlash(path), params.Encode()), nil
}

// prepareSQLite pins a private in-memory database to a single connection so
// every query sees the same database for the lifetime of the handle.
func prepareSQLite(db *gorm.DB, cfg Config) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	if strings.TrimSpace(cfg.DSN) == "" && isMemoryPath(cfg.Path) {
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetConnMaxLifetime(0)
	}
	return db.Exec("PRAGMA foreign_keys = ON").Error
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
