package app

import (
	"gorm.io/gorm"

	httpH "github.com/yungbote/rowcount-backend/internal/http/handlers"
	"github.com/yungbote/rowcount-backend/internal/platform/logger"
)

type Handlers struct {
	Health       *httpH.HealthHandler
	Counter      *httpH.CounterHandler
	QuickCounter *httpH.QuickCounterHandler
	Settings     *httpH.SettingsHandler
}

func wireHandlers(log *logger.Logger, db *gorm.DB, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:       httpH.NewHealthHandler(db),
		Counter:      httpH.NewCounterHandler(services.Counters),
		QuickCounter: httpH.NewQuickCounterHandler(services.QuickCounter),
		Settings:     httpH.NewSettingsHandler(services.Settings),
	}
}
