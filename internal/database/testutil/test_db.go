package testutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/charlesng35/resourcedesk/internal/database"
)

// TestDBOption customises the behaviour of MustOpenTestDB.
type TestDBOption func(*testDBConfig)

type testDBConfig struct {
	autoMigrate bool
	seedData    bool
	onDisk      bool
	records     []any
}

// WithAutoMigrate enables automatic schema migration after opening the test database.
func WithAutoMigrate() TestDBOption {
	return func(cfg *testDBConfig) {
		cfg.autoMigrate = true
	}
}

// WithSeedData ensures migrations are applied and the default users inserted.
func WithSeedData() TestDBOption {
	return func(cfg *testDBConfig) {
		cfg.autoMigrate = true
		cfg.seedData = true
	}
}

// WithFile stores the database in a WAL file under t.TempDir instead of memory,
// so several connections can contend for the write lock.
func WithFile() TestDBOption {
	return func(cfg *testDBConfig) {
		cfg.onDisk = true
	}
}

// WithRecords inserts fixtures after migrations, in order.
func WithRecords(records ...any) TestDBOption {
	return func(cfg *testDBConfig) {
		cfg.autoMigrate = true
		cfg.records = append(cfg.records, records...)
	}
}

// MustOpenTestDB opens a SQLite database private to t, applying optional
// migrations, seed users and fixtures. The connection is closed via t.Cleanup.
func MustOpenTestDB(t *testing.T, opts ...TestDBOption) *gorm.DB {
	t.Helper()

	cfg := testDBConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	dbCfg := database.Config{Driver: "sqlite"}
	if cfg.onDisk {
		dbCfg.Path = filepath.Join(t.TempDir(), "resourcedesk.sqlite")
		dbCfg.MaxOpenConns = 8
	}

	db, err := database.Open(dbCfg)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	if cfg.seedData {
		require.NoError(t, database.AutoMigrateAndSeed(db))
	} else if cfg.autoMigrate {
		require.NoError(t, database.AutoMigrate(db))
	}

	for _, record := range cfg.records {
		require.NoError(t, db.Create(record).Error)
	}

	return db
}
