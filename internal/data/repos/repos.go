package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/opsdesk-backend/internal/data/repos/fields"
	"github.com/yungbote/opsdesk-backend/internal/data/repos/notifications"
	"github.com/yungbote/opsdesk-backend/internal/data/repos/probe"
	"github.com/yungbote/opsdesk-backend/internal/data/repos/search"
	"github.com/yungbote/opsdesk-backend/internal/data/repos/templates"
	"github.com/yungbote/opsdesk-backend/internal/platform/logger"
)

type FieldDefinitionRepo = fields.FieldDefinitionRepo
type ModuleTemplateRepo = templates.ModuleTemplateRepo
type TemplateListQuery = templates.ListQuery
type NotificationHistoryRepo = notifications.NotificationHistoryRepo
type HistoryQuery = notifications.HistoryQuery
type SearchDocumentRepo = search.SearchDocumentRepo
type SearchHistoryRepo = search.SearchHistoryRepo
type SearchQuery = search.Query
type SearchHit = search.Hit
type TableProbe = probe.TableProbe

func NewFieldDefinitionRepo(db *gorm.DB, baseLog *logger.Logger) FieldDefinitionRepo {
	return fields.NewFieldDefinitionRepo(db, baseLog)
}
func NewModuleTemplateRepo(db *gorm.DB, baseLog *logger.Logger) ModuleTemplateRepo {
	return templates.NewModuleTemplateRepo(db, baseLog)
}
func NewNotificationHistoryRepo(db *gorm.DB, baseLog *logger.Logger) NotificationHistoryRepo {
	return notifications.NewNotificationHistoryRepo(db, baseLog)
}
func NewSearchDocumentRepo(db *gorm.DB, baseLog *logger.Logger) SearchDocumentRepo {
	return search.NewSearchDocumentRepo(db, baseLog)
}
func NewSearchHistoryRepo(db *gorm.DB, baseLog *logger.Logger) SearchHistoryRepo {
	return search.NewSearchHistoryRepo(db, baseLog)
}
func NewTableProbe(db *gorm.DB, baseLog *logger.Logger) TableProbe {
	return probe.NewTableProbe(db, baseLog)
}
