package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/opsdesk-backend/internal/data/repos"
	"github.com/yungbote/opsdesk-backend/internal/platform/logger"
)

type Repos struct {
	Fields              repos.FieldDefinitionRepo
	Templates           repos.ModuleTemplateRepo
	NotificationHistory repos.NotificationHistoryRepo
	SearchDocuments     repos.SearchDocumentRepo
	SearchHistory       repos.SearchHistoryRepo
	Probe               repos.TableProbe
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Fields:              repos.NewFieldDefinitionRepo(db, log),
		Templates:           repos.NewModuleTemplateRepo(db, log),
		NotificationHistory: repos.NewNotificationHistoryRepo(db, log),
		SearchDocuments:     repos.NewSearchDocumentRepo(db, log),
		SearchHistory:       repos.NewSearchHistoryRepo(db, log),
		Probe:               repos.NewTableProbe(db, log),
	}
}
