package app

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yungbote/rowcount-backend/internal/db"
	apphttp "github.com/yungbote/rowcount-backend/internal/http"
	"github.com/yungbote/rowcount-backend/internal/observability"
	"github.com/yungbote/rowcount-backend/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Cfg      Config
	Repos    Repos
	Services Services
	Server   *apphttp.Server
	Metrics  *observability.Metrics

	dbService    *db.Service
	redis        *goredis.Client
	otelShutdown func(context.Context) error
}

// New loads config from configPath (or CONFIG_FILE), opens storage and wires
// every layer. Close releases what New opened.
func New(ctx context.Context, configPath string) (*App, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	if err := log.SetLevel(cfg.Log.Level); err != nil {
		log.Warn("ignoring configured log level", "level", cfg.Log.Level, "error", err)
	}

	a := &App{Log: log, Cfg: cfg}
	a.otelShutdown = observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: cfg.ServiceName,
		Environment: cfg.Env,
	})
	a.Metrics = observability.Init(log)

	a.dbService, err = OpenDB(log, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.DB = a.dbService.DB()

	a.redis, err = wireRedis(ctx, log, cfg.Redis)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("init redis: %w", err)
	}

	a.Repos = wireRepos(a.DB, log)
	a.Services, err = wireServices(a.DB, log, cfg, a.Metrics, a.Repos, a.redis)
	if err != nil {
		a.Close()
		return nil, err
	}
	handlers := wireHandlers(log, a.DB, a.Services)

	a.Server = apphttp.NewServer(log, apphttp.ServerConfig{
		Addr:              cfg.HTTP.Addr,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
		ShutdownTimeout:   cfg.HTTP.ShutdownTimeout,
	}, apphttp.RouterConfig{
		Log:                 log,
		Metrics:             a.Metrics,
		CORSOrigins:         cfg.HTTP.CORSOrigins,
		ServiceName:         cfg.ServiceName,
		CounterHandler:      handlers.Counter,
		QuickCounterHandler: handlers.QuickCounter,
		SettingsHandler:     handlers.Settings,
		HealthHandler:       handlers.Health,
	})
	return a, nil
}

// OpenDB connects and migrates the configured database.
func OpenDB(log *logger.Logger, cfg Config) (*db.Service, error) {
	svc, err := db.NewService(log, cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := svc.AutoMigrateAll(); err != nil {
		_ = svc.Close()
		return nil, fmt.Errorf("automigrate: %w", err)
	}
	return svc, nil
}

// Run serves HTTP and runs the background workers until ctx is done or one
// of them fails.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	g, gctx := errgroup.WithContext(ctx)

	a.Metrics.StartDBCollector(gctx, a.Log, a.DB)
	a.Metrics.StartRedisCollector(gctx, a.Log, a.redis)

	g.Go(func() error { return a.Server.Run(gctx) })
	if a.Services.Reminders != nil {
		g.Go(func() error { return a.Services.Reminders.Run(gctx) })
	}
	if a.Cfg.Path != "" {
		w := NewConfigWatcher(a.Log, a.Cfg.Path, nil)
		g.Go(func() error { return w.Run(gctx) })
	}
	return g.Wait()
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.otelShutdown(ctx); err != nil && a.Log != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
		cancel()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.dbService != nil {
		if err := a.dbService.Close(); err != nil && a.Log != nil {
			a.Log.Warn("database close failed", "error", err)
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
