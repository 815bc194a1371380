package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/opsdesk-backend/internal/http/handlers"
	httpMW "github.com/yungbote/opsdesk-backend/internal/http/middleware"
	"github.com/yungbote/opsdesk-backend/internal/observability"
	"github.com/yungbote/opsdesk-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	Metrics        *observability.Metrics
	ServiceName    string
	TracingEnabled bool
	CORSOrigins    []string

	AuthMiddleware *httpMW.AuthMiddleware
	RequireAuth    bool
	RateLimiter    *httpMW.RateLimiter

	HealthHandler        *httpH.HealthHandler
	FieldHandler         *httpH.FieldHandler
	TemplateHandler      *httpH.TemplateHandler
	TemplateAdminHandler *httpH.TemplateAdminHandler
	NotificationHandler  *httpH.NotificationHandler
	SearchHandler        *httpH.SearchHandler
	VerificationHandler  *httpH.VerificationHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.TracingEnabled {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api")
	if cfg.AuthMiddleware.Enabled() {
		if cfg.RequireAuth {
			api.Use(cfg.AuthMiddleware.RequireAuth())
		} else {
			api.Use(cfg.AuthMiddleware.OptionalAuth())
		}
	}
	// Prompt completion and delivery reach paid upstreams.
	limited := cfg.RateLimiter.Middleware()

	// Fields
	if cfg.FieldHandler != nil {
		api.GET("/modules/:module/fields", cfg.FieldHandler.ListFields)
		api.POST("/modules/:module/records/validate", cfg.FieldHandler.ValidateRecord)
	}

	// Templating engine
	if cfg.TemplateHandler != nil {
		api.POST("/templates/expand", cfg.TemplateHandler.Expand)
		api.POST("/modules/:module/prompts", limited, cfg.TemplateHandler.GeneratePrompt)
		api.POST("/modules/:module/notifications/preview", cfg.TemplateHandler.PreviewNotification)
		api.GET("/modules/:module/variables", cfg.TemplateHandler.ListVariables)
		api.POST("/modules/:module/templates/validate", cfg.TemplateHandler.ValidateTemplate)
	}

	// Stored templates
	if cfg.TemplateAdminHandler != nil {
		api.GET("/templates", cfg.TemplateAdminHandler.List)
		api.POST("/templates", cfg.TemplateAdminHandler.Create)
		api.GET("/templates/:id", cfg.TemplateAdminHandler.Get)
		api.PUT("/templates/:id", cfg.TemplateAdminHandler.Update)
		api.DELETE("/templates/:id", cfg.TemplateAdminHandler.Delete)
		api.POST("/templates/:id/preview", cfg.TemplateAdminHandler.Preview)
	}

	// Notifications
	if cfg.NotificationHandler != nil {
		api.POST("/modules/:module/notifications", limited, cfg.NotificationHandler.Send)
		api.GET("/notifications/history", cfg.NotificationHandler.History)
	}

	// Search
	if cfg.SearchHandler != nil {
		api.GET("/search", cfg.SearchHandler.Search)
		api.POST("/search/ai", limited, cfg.SearchHandler.AISearch)
		api.GET("/search/suggestions", cfg.SearchHandler.Suggestions)
		api.GET("/search/similar", cfg.SearchHandler.Similar)
		api.PUT("/search/documents", cfg.SearchHandler.IndexDocuments)
		api.DELETE("/search/documents/:table/:record_id", cfg.SearchHandler.RemoveDocument)
	}

	// Verification
	if cfg.VerificationHandler != nil {
		api.GET("/verification", cfg.VerificationHandler.VerifyAll)
		api.GET("/verification/:module", cfg.VerificationHandler.VerifyModule)
	}

	return r
}
