package app

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	redisclient "github.com/yungbote/rowcount-backend/internal/clients/redis"
	"github.com/yungbote/rowcount-backend/internal/data/aggregates"
	"github.com/yungbote/rowcount-backend/internal/observability"
	"github.com/yungbote/rowcount-backend/internal/platform/logger"
	"github.com/yungbote/rowcount-backend/internal/services"
)

type Services struct {
	Settings     services.SettingsService
	Counters     services.CounterService
	QuickCounter services.QuickCounterService
	Reminders    *services.ReminderScheduler
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, metrics *observability.Metrics, reposet Repos, rdb *goredis.Client) (Services, error) {
	log.Info("Wiring services...")

	runner := aggregates.NewGormTxRunner(db, aggregates.TxRetryPolicy{
		MaxAttempts: 3,
		Backoff:     20 * time.Millisecond,
		OnRetry: func(attempt int, err error) {
			metrics.IncAggregateRetry("aggregate.tx")
			log.Warn("retrying transaction", "attempt", attempt, "error", err)
		},
	})
	base := aggregates.BaseDeps{
		DB:     db,
		Log:    log,
		Runner: runner,
		Hooks:  aggregates.ComposeHooks(aggregates.NewObservabilityHooks(metrics), aggregates.NewLogHooks(log)),
	}

	settingsSvc := services.NewSettingsService(services.SettingsServiceDeps{
		Log: log,
		Gateway: aggregates.NewSettingsGateway(aggregates.SettingsGatewayDeps{
			Base:     base,
			Settings: reposet.Settings,
		}),
	})

	counters := services.NewCounterService(services.CounterServiceDeps{
		Log:     log,
		Metrics: metrics,
		NewGateway: func() aggregates.CounterGateway {
			return aggregates.NewCounterGateway(aggregates.CounterGatewayDeps{
				Base:     base,
				Counters: reposet.Counter,
				History:  reposet.History,
			})
		},
		Settings:  settingsSvc,
		RowNotes:  reposet.RowNote,
		Sessions:  reposet.WorkSession,
		Reminders: reposet.Reminder,
	})

	store := services.NewMemoryQuickCounterStore()
	if rdb != nil {
		rs, err := redisclient.NewQuickCounterStore(log, rdb, redisclient.QuickCounterStoreOptions{
			KeyPrefix: cfg.Redis.KeyPrefix,
			TTL:       cfg.Redis.SessionTTL,
		})
		if err != nil {
			return Services{}, fmt.Errorf("init quick counter store: %w", err)
		}
		store = rs
	}
	quick := services.NewQuickCounterService(services.QuickCounterServiceDeps{
		Log:       log,
		Metrics:   metrics,
		Store:     store,
		Counters:  counters,
		UndoDepth: cfg.QuickCounter.UndoDepth,
	})

	var scheduler *services.ReminderScheduler
	if cfg.Reminders.Enabled {
		scheduler = services.NewReminderScheduler(services.ReminderSchedulerDeps{
			Log:      log,
			Counters: counters,
			Interval: cfg.Reminders.PollInterval,
		})
	}

	return Services{
		Settings:     settingsSvc,
		Counters:     counters,
		QuickCounter: quick,
		Reminders:    scheduler,
	}, nil
}

func wireRedis(ctx context.Context, log *logger.Logger, cfg RedisConfig) (*goredis.Client, error) {
	if cfg.Addr == "" {
		log.Info("redis not configured, quick counters stay in memory")
		return nil, nil
	}
	return redisclient.NewClient(ctx, log, redisclient.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}
