package app

import (
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/yungbote/opsdesk-backend/internal/platform/envutil"
	"github.com/yungbote/opsdesk-backend/internal/platform/logger"
)

type Config struct {
	Port        string
	Environment string
	ServiceName string
	Version     string

	DBDriver   string // postgres|sqlite
	SQLitePath string

	FieldCacheTTL time.Duration

	NotificationAsync bool

	JWTSecret   string
	RequireAuth bool

	RateLimitRPS   float64
	RateLimitBurst int

	MetricsAddr string
	OtelEnabled bool

	CORSOrigins []string
}

// LoadEnvFiles reads .env files when present. Missing files are fine;
// variables already set in the environment win.
func LoadEnvFiles(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		_ = godotenv.Load(f)
	}
}

func LoadConfig(log *logger.Logger) Config {
	return Config{
		Port:        envutil.Logged(log, "PORT", "8080"),
		Environment: envutil.String("APP_ENV", "development"),
		ServiceName: envutil.String("OTEL_SERVICE_NAME", "opsdesk-backend"),
		Version:     envutil.String("APP_VERSION", "dev"),

		DBDriver:   strings.ToLower(envutil.Logged(log, "DB_DRIVER", "postgres")),
		SQLitePath: envutil.String("SQLITE_PATH", "opsdesk.db"),

		FieldCacheTTL: envutil.Seconds("FIELD_CACHE_TTL_SECONDS", 5*time.Minute),

		NotificationAsync: envutil.Bool("NOTIFICATION_ASYNC", false),

		JWTSecret:   envutil.String("BACKEND_JWT_SECRET", ""),
		RequireAuth: envutil.Bool("REQUIRE_AUTH", false),

		RateLimitRPS:   envutil.Float("RATE_LIMIT_RPS", 5),
		RateLimitBurst: envutil.Int("RATE_LIMIT_BURST", 10),

		MetricsAddr: envutil.String("METRICS_ADDR", ""),
		OtelEnabled: envutil.Bool("OTEL_ENABLED", false),

		CORSOrigins: envutil.CSV("CORS_ALLOWED_ORIGINS", nil),
	}
}
