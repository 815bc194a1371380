package app

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/opsdesk-backend/internal/data/db"
	apphttp "github.com/yungbote/opsdesk-backend/internal/http"
	"github.com/yungbote/opsdesk-backend/internal/observability"
	"github.com/yungbote/opsdesk-backend/internal/platform/envutil"
	"github.com/yungbote/opsdesk-backend/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Server   *apphttp.Server
	Cfg      Config
	Repos    Repos
	Clients  Clients
	Services Services
	Metrics  *observability.Metrics

	closeDB       func() error
	shutdownTrace func(context.Context) error
	cancel        context.CancelFunc
}

// NewLogger loads .env and builds the process logger from LOG_MODE.
func NewLogger() (*logger.Logger, error) {
	LoadEnvFiles()
	log, err := logger.New(envutil.String("LOG_MODE", "development"))
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return log, nil
}

// OpenDB connects the configured driver and migrates the schema.
func OpenDB(log *logger.Logger, cfg Config) (*gorm.DB, func() error, error) {
	switch cfg.DBDriver {
	case "sqlite":
		gdb, err := db.OpenSQLite(log, cfg.SQLitePath, false)
		if err != nil {
			return nil, nil, fmt.Errorf("init sqlite: %w", err)
		}
		if err := db.AutoMigrateAll(gdb); err != nil {
			return nil, nil, fmt.Errorf("sqlite automigrate: %w", err)
		}
		closeFn := func() error {
			sqlDB, err := gdb.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		}
		return gdb, closeFn, nil
	case "", "postgres":
		pg, err := db.NewPostgresService(log)
		if err != nil {
			return nil, nil, fmt.Errorf("init postgres: %w", err)
		}
		if err := db.AutoMigrateAll(pg.DB()); err != nil {
			_ = pg.Close()
			return nil, nil, fmt.Errorf("postgres automigrate: %w", err)
		}
		return pg.DB(), pg.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.DBDriver)
	}
}

// Bootstrap builds everything below the HTTP layer. Shared by the API
// server, the notification worker and templatectl.
func Bootstrap(log *logger.Logger) (*App, error) {
	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	theDB, closeDB, err := OpenDB(log, cfg)
	if err != nil {
		return nil, err
	}

	reposet := wireRepos(theDB, log)
	clients, err := wireClients(log, cfg)
	if err != nil {
		_ = closeDB()
		return nil, err
	}
	serviceset := wireServices(theDB, log, cfg, reposet, clients)

	return &App{
		Log:      log,
		DB:       theDB,
		Cfg:      cfg,
		Repos:    reposet,
		Clients:  clients,
		Services: serviceset,
		closeDB:  closeDB,
	}, nil
}

// New bootstraps and adds the HTTP server with its observability.
func New() (*App, error) {
	log, err := NewLogger()
	if err != nil {
		return nil, err
	}
	a, err := Bootstrap(log)
	if err != nil {
		log.Sync()
		return nil, err
	}

	// Init is a no-op returning nil unless METRICS_ENABLED is set.
	a.Metrics = observability.Init(log)
	if a.Cfg.OtelEnabled {
		a.shutdownTrace = observability.InitOTel(context.Background(), log, observability.OtelConfig{
			ServiceName: a.Cfg.ServiceName,
			Environment: a.Cfg.Environment,
			Version:     a.Cfg.Version,
		})
	}

	handlerset := wireHandlers(a.DB, log, a.Services)
	middleware := wireMiddleware(log, a.Cfg)
	a.Server = wireServer(log, a.Cfg, a.Metrics, handlerset, middleware)
	return a, nil
}

// Start launches background collectors. Safe to call once.
func (a *App) Start() {
	if a == nil || a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	if a.Metrics != nil {
		a.Metrics.StartPostgresCollector(ctx, a.Log, a.DB)
		if a.Clients.Redis != nil {
			a.Metrics.StartRedisCollector(ctx, a.Log, a.Clients.Redis)
		}
		if a.Cfg.MetricsAddr != "" {
			a.Metrics.StartServer(ctx, a.Log, a.Cfg.MetricsAddr)
		}
	}
}

func (a *App) Run(ctx context.Context, addr string) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	return a.Server.Run(ctx, addr)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.shutdownTrace != nil {
		_ = a.shutdownTrace(context.Background())
	}
	a.Clients.Close()
	if a.closeDB != nil {
		if err := a.closeDB(); err != nil && a.Log != nil {
			a.Log.Warn("Closing database failed", "error", err)
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
