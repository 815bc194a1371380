package app

import (
	"context"

	"gorm.io/gorm"

	httpH "github.com/yungbote/opsdesk-backend/internal/http/handlers"
	"github.com/yungbote/opsdesk-backend/internal/platform/logger"
)

type Handlers struct {
	Health        *httpH.HealthHandler
	Fields        *httpH.FieldHandler
	Templates     *httpH.TemplateHandler
	TemplateAdmin *httpH.TemplateAdminHandler
	Notifications *httpH.NotificationHandler
	Search        *httpH.SearchHandler
	Verification  *httpH.VerificationHandler
}

func wireHandlers(db *gorm.DB, log *logger.Logger, svc Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:        httpH.NewHealthHandler(dbPinger(db)),
		Fields:        httpH.NewFieldHandler(svc.Templates),
		Templates:     httpH.NewTemplateHandler(svc.Templates),
		TemplateAdmin: httpH.NewTemplateAdminHandler(svc.TemplateAdmin),
		Notifications: httpH.NewNotificationHandler(svc.Notifications),
		Search:        httpH.NewSearchHandler(svc.Search),
		Verification:  httpH.NewVerificationHandler(svc.Verification),
	}
}

func dbPinger(db *gorm.DB) httpH.Pinger {
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}
