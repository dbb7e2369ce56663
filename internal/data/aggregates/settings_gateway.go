package aggregates

import (
	"context"

	"github.com/yungbote/rowcount-backend/internal/data/repos"
	types "github.com/yungbote/rowcount-backend/internal/domain"
	domainagg "github.com/yungbote/rowcount-backend/internal/domain/aggregates"
	"github.com/yungbote/rowcount-backend/internal/domain/settings"
	"github.com/yungbote/rowcount-backend/internal/platform/dbctx"
	"golang.org/x/sync/singleflight"
)

// SettingsGateway loads and stores the singleton settings record.
type SettingsGateway interface {
	// Get never reports absence: the default record is created on first use.
	Get(ctx context.Context) (*types.Settings, error)
	Save(ctx context.Context, s *types.Settings) error
}

type SettingsGatewayDeps struct {
	Base BaseDeps

	Settings repos.SettingsRepo
}

type settingsGateway struct {
	deps  SettingsGatewayDeps
	group singleflight.Group
}

func NewSettingsGateway(deps SettingsGatewayDeps) SettingsGateway {
	deps.Base = deps.Base.withDefaults()
	return &settingsGateway{deps: deps}
}

func (g *settingsGateway) Get(ctx context.Context) (*types.Settings, error) {
	const op = "Settings.Get"
	if g.deps.Settings == nil {
		return nil, domainagg.NewError(domainagg.CodeInternal, op, "settings repo not configured", nil)
	}

	v, err, _ := g.group.Do(settings.SingletonID.String(), func() (any, error) {
		s, err := g.deps.Settings.GetByID(ctx, nil, settings.SingletonID)
		if err != nil {
			return nil, MapError(op, err)
		}
		if s != nil {
			return s, nil
		}
		err = executeWrite(ctx, g.deps.Base, "Settings.CreateDefault", func(dbc dbctx.Context) error {
			return g.deps.Settings.CreateIfAbsent(dbc.Ctx, dbc.Tx, settings.Default())
		})
		if err != nil {
			return nil, err
		}
		// Re-read so a row created concurrently by another process wins.
		s, err = g.deps.Settings.GetByID(ctx, nil, settings.SingletonID)
		if err != nil {
			return nil, MapError(op, err)
		}
		if s == nil {
			return nil, domainagg.NewError(domainagg.CodeInternal, op, "settings row missing after create", nil)
		}
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	// Callers collapsed onto one load each get their own copy.
	cp := *v.(*types.Settings)
	return &cp, nil
}

func (g *settingsGateway) Save(ctx context.Context, s *types.Settings) error {
	const op = "Settings.Save"
	if s == nil {
		return domainagg.Validation(op, "settings are required")
	}
	if err := s.Validate(); err != nil {
		return err
	}
	if g.deps.Settings == nil {
		return domainagg.NewError(domainagg.CodeInternal, op, "settings repo not configured", nil)
	}
	return executeWrite(ctx, g.deps.Base, op, func(dbc dbctx.Context) error {
		return g.deps.Settings.Upsert(dbc.Ctx, dbc.Tx, s)
	})
}
