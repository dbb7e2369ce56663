package services

import (
	"context"
	"sync"
	"time"

	"github.com/yungbote/rowcount-backend/internal/data/aggregates"
	types "github.com/yungbote/rowcount-backend/internal/domain"
	domainagg "github.com/yungbote/rowcount-backend/internal/domain/aggregates"
	"github.com/yungbote/rowcount-backend/internal/platform/logger"
)

type SettingsService interface {
	Get(ctx context.Context) (*types.Settings, error)
	CompleteFirstRun(ctx context.Context) (*types.Settings, error)
	UpdateTheme(ctx context.Context, theme string) (*types.Settings, error)
	SetHapticFeedback(ctx context.Context, enabled bool) (*types.Settings, error)
	EnableSync(ctx context.Context, provider string) (*types.Settings, error)
	DisableSync(ctx context.Context) (*types.Settings, error)
	RecordSuccessfulSync(ctx context.Context, at time.Time) (*types.Settings, error)
	IncrementCounterCreationCount(ctx context.Context) (*types.Settings, error)
}

type SettingsServiceDeps struct {
	Log     *logger.Logger
	Gateway aggregates.SettingsGateway
}

type settingsService struct {
	log *logger.Logger
	gw  aggregates.SettingsGateway

	// mu serializes read-modify-write cycles on the singleton.
	mu sync.Mutex
}

func NewSettingsService(deps SettingsServiceDeps) SettingsService {
	return &settingsService{
		log: deps.Log.With("service", "SettingsService"),
		gw:  deps.Gateway,
	}
}

func (s *settingsService) Get(ctx context.Context) (*types.Settings, error) {
	if s.gw == nil {
		return nil, domainagg.NewError(domainagg.CodeInternal, "settings.get", "settings gateway not configured", nil)
	}
	return s.gw.Get(ctx)
}

func (s *settingsService) CompleteFirstRun(ctx context.Context) (*types.Settings, error) {
	return s.update(ctx, "settings.complete_first_run", func(st *types.Settings) error {
		st.CompleteFirstRun()
		return nil
	})
}

func (s *settingsService) UpdateTheme(ctx context.Context, theme string) (*types.Settings, error) {
	return s.update(ctx, "settings.update_theme", func(st *types.Settings) error {
		return st.UpdateTheme(theme)
	})
}

func (s *settingsService) SetHapticFeedback(ctx context.Context, enabled bool) (*types.Settings, error) {
	return s.update(ctx, "settings.set_haptic_feedback", func(st *types.Settings) error {
		st.SetHapticFeedback(enabled)
		return nil
	})
}

func (s *settingsService) EnableSync(ctx context.Context, provider string) (*types.Settings, error) {
	return s.update(ctx, "settings.enable_sync", func(st *types.Settings) error {
		return st.EnableSync(provider)
	})
}

func (s *settingsService) DisableSync(ctx context.Context) (*types.Settings, error) {
	return s.update(ctx, "settings.disable_sync", func(st *types.Settings) error {
		st.DisableSync()
		return nil
	})
}

func (s *settingsService) RecordSuccessfulSync(ctx context.Context, at time.Time) (*types.Settings, error) {
	return s.update(ctx, "settings.record_sync", func(st *types.Settings) error {
		return st.RecordSuccessfulSync(at)
	})
}

func (s *settingsService) IncrementCounterCreationCount(ctx context.Context) (*types.Settings, error) {
	return s.update(ctx, "settings.increment_creation_count", func(st *types.Settings) error {
		st.IncrementCounterCreationCount()
		return nil
	})
}

func (s *settingsService) update(ctx context.Context, op string, fn func(st *types.Settings) error) (*types.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	if err := fn(st); err != nil {
		return nil, err
	}
	if err := s.gw.Save(ctx, st); err != nil {
		return nil, err
	}
	s.log.Debug("settings updated", "op", op)
	return st, nil
}
