package services

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/yungbote/rowcount-backend/internal/data/aggregates"
	"github.com/yungbote/rowcount-backend/internal/data/repos"
	"github.com/yungbote/rowcount-backend/internal/data/repos/testutil"
	"github.com/yungbote/rowcount-backend/internal/observability"
	"github.com/yungbote/rowcount-backend/internal/platform/ctxutil"
	"gorm.io/gorm"
)

type serviceFixture struct {
	db       *gorm.DB
	metrics  *observability.Metrics
	settings SettingsService
	counters CounterService
	quick    QuickCounterService
	store    QuickCounterStore
}

func newServiceFixture(t *testing.T) serviceFixture {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	metrics := observability.NewMetrics()

	base := aggregates.BaseDeps{
		DB:     db,
		Log:    log,
		Runner: aggregates.NewGormTxRunner(db),
		Hooks:  aggregates.NewObservabilityHooks(metrics),
	}
	settingsSvc := NewSettingsService(SettingsServiceDeps{
		Log: log,
		Gateway: aggregates.NewSettingsGateway(aggregates.SettingsGatewayDeps{
			Base:     base,
			Settings: repos.NewSettingsRepo(db, log),
		}),
	})
	counterRepo := repos.NewCounterRepo(db, log)
	historyRepo := repos.NewHistoryRepo(db, log)
	counters := NewCounterService(CounterServiceDeps{
		Log:     log,
		Metrics: metrics,
		NewGateway: func() aggregates.CounterGateway {
			return aggregates.NewCounterGateway(aggregates.CounterGatewayDeps{
				Base:     base,
				Counters: counterRepo,
				History:  historyRepo,
			})
		},
		Settings:  settingsSvc,
		RowNotes:  repos.NewRowNoteRepo(db, log),
		Sessions:  repos.NewWorkSessionRepo(db, log),
		Reminders: repos.NewReminderRepo(db, log),
	})
	store := NewMemoryQuickCounterStore()
	quick := NewQuickCounterService(QuickCounterServiceDeps{
		Log:       log,
		Metrics:   metrics,
		Store:     store,
		Counters:  counters,
		UndoDepth: 3,
	})
	return serviceFixture{
		db:       db,
		metrics:  metrics,
		settings: settingsSvc,
		counters: counters,
		quick:    quick,
		store:    store,
	}
}

// ownerCtx carries owner the way the owner middleware does.
func ownerCtx(owner uuid.UUID) context.Context {
	return ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{OwnerUserID: &owner})
}

// fakeDialogs answers every prompt with a fixed reply and records what the
// service showed.
type fakeDialogs struct {
	answer   string
	accepted bool

	mu      sync.Mutex
	prompts []Prompt
	alerts  []string
	toasts  []string
}

func (d *fakeDialogs) PromptForText(_ context.Context, p Prompt) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.prompts = append(d.prompts, p)
	return d.answer, d.accepted
}

func (d *fakeDialogs) Alert(_ context.Context, title, message, _ string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.alerts = append(d.alerts, title+": "+message)
}

func (d *fakeDialogs) Toast(_ context.Context, message string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.toasts = append(d.toasts, message)
}
