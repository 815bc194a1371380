package db

import (
	"fmt"

	types "github.com/yungbote/opsdesk-backend/internal/domain"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(
		// =========================
		// Field schema + templates
		// =========================
		&types.FieldDefinition{},
		&types.ModuleTemplate{},

		// =========================
		// Notifications
		// =========================
		&types.NotificationHistory{},

		// =========================
		// Search
		// =========================
		&types.SearchDocument{},
		&types.SearchHistory{},
	); err != nil {
		return err
	}
	return EnsureSearchIndexes(db)
}

// EnsureSearchIndexes adds the Postgres full-text index over search
// documents. A no-op on other dialects, which fall back to LIKE matching.
func EnsureSearchIndexes(db *gorm.DB) error {
	if !IsPostgres(db) {
		return nil
	}
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_search_documents_fts
		ON search_documents
		USING GIN (to_tsvector('simple', coalesce(title,'') || ' ' || coalesce(subtitle,'') || ' ' || coalesce(content,'')));
	`).Error; err != nil {
		return fmt.Errorf("create search fts index: %w", err)
	}
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_search_history_query_prefix ON search_history (query text_pattern_ops);`).Error; err != nil {
		return fmt.Errorf("create search history prefix index: %w", err)
	}
	return nil
}
