package app

import (
	apphttp "github.com/yungbote/opsdesk-backend/internal/http"
	"github.com/yungbote/opsdesk-backend/internal/observability"
	"github.com/yungbote/opsdesk-backend/internal/platform/logger"
)

func wireServer(log *logger.Logger, cfg Config, metrics *observability.Metrics, h Handlers, mw Middleware) *apphttp.Server {
	log.Info("Wiring router...")
	return apphttp.NewServer(apphttp.RouterConfig{
		Log:            log,
		Metrics:        metrics,
		ServiceName:    cfg.ServiceName,
		TracingEnabled: cfg.OtelEnabled,
		CORSOrigins:    cfg.CORSOrigins,

		AuthMiddleware: mw.Auth,
		RequireAuth:    cfg.RequireAuth,
		RateLimiter:    mw.RateLimit,

		HealthHandler:        h.Health,
		FieldHandler:         h.Fields,
		TemplateHandler:      h.Templates,
		TemplateAdminHandler: h.TemplateAdmin,
		NotificationHandler:  h.Notifications,
		SearchHandler:        h.Search,
		VerificationHandler:  h.Verification,
	})
}
