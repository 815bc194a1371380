package db

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/opsdesk-backend/internal/platform/logger"
)

// OpenSQLite opens a file or ":memory:" database. Used for local runs and
// repository tests; Postgres-only features degrade (see EnsureSearchIndexes).
func OpenSQLite(log *logger.Logger, path string, quiet bool) (*gorm.DB, error) {
	if path == "" {
		path = "file::memory:?cache=shared"
	}
	cfg := gormConfig()
	if quiet {
		cfg.Logger = gormLogger.Default.LogMode(gormLogger.Silent)
	}
	db, err := gorm.Open(sqlite.Open(path), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite %q: %w", path, err)
	}
	if log != nil {
		log.Debug("SQLite database opened", "path", path)
	}
	return db, nil
}

// IsPostgres reports whether db talks to Postgres.
func IsPostgres(db *gorm.DB) bool {
	return db != nil && db.Dialector != nil && db.Dialector.Name() == "postgres"
}
