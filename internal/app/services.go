package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/opsdesk-backend/internal/clients/redis"
	"github.com/yungbote/opsdesk-backend/internal/inference/engine/mock"
	"github.com/yungbote/opsdesk-backend/internal/modules/templating"
	"github.com/yungbote/opsdesk-backend/internal/platform/logger"
	"github.com/yungbote/opsdesk-backend/internal/services"
)

type Services struct {
	Store         templating.FieldStore
	Templates     services.TemplateService
	TemplateAdmin services.TemplateAdminService
	Notifications services.NotificationService
	Search        services.SearchService
	Verification  services.VerificationService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos, clients Clients) Services {
	log.Info("Wiring services...")

	// Field definitions are read on every expansion; cache them when Redis
	// is available.
	var (
		store       templating.FieldStore = reposet.Fields
		invalidator services.FieldInvalidator
	)
	if clients.Redis != nil {
		cache := redis.NewFieldCache(log, clients.Redis, reposet.Fields, cfg.FieldCacheTTL)
		store, invalidator = cache, cache
	}

	senders := map[templating.Channel]services.ChannelSender{}
	if clients.Slack != nil {
		senders[templating.ChannelSlack] = services.NewSlackSender(clients.Slack)
	}
	if clients.SendGrid != nil {
		senders[templating.ChannelEmail] = services.NewEmailSender(clients.SendGrid)
	}
	if clients.Twilio != nil {
		senders[templating.ChannelSMS] = services.NewSMSSender(clients.Twilio)
	}

	return Services{
		Store:         store,
		Templates:     services.NewTemplateService(log, store, mock.New()),
		TemplateAdmin: services.NewTemplateAdminService(db, log, reposet.Templates, reposet.Fields, store, invalidator),
		Notifications: services.NewNotificationService(log, reposet.Templates, reposet.NotificationHistory, store, senders, clients.Producer),
		Search:        services.NewSearchService(log, reposet.SearchDocuments, reposet.SearchHistory),
		Verification:  services.NewVerificationService(log, reposet.Probe, reposet.Fields, reposet.Templates, store),
	}
}
