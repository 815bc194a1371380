package app

import (
	httpMW "github.com/yungbote/opsdesk-backend/internal/http/middleware"
	"github.com/yungbote/opsdesk-backend/internal/platform/logger"
)

type Middleware struct {
	Auth      *httpMW.AuthMiddleware
	RateLimit *httpMW.RateLimiter
}

func wireMiddleware(log *logger.Logger, cfg Config) Middleware {
	log.Info("Wiring middleware...")
	auth := httpMW.NewAuthMiddleware(log, cfg.JWTSecret)
	if cfg.RequireAuth && !auth.Enabled() {
		log.Warn("REQUIRE_AUTH set without BACKEND_JWT_SECRET, API is unauthenticated")
	}
	return Middleware{
		Auth:      auth,
		RateLimit: httpMW.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
	}
}
