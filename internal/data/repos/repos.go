package repos

import (
	"github.com/yungbote/rowcount-backend/internal/data/repos/counter"
	"github.com/yungbote/rowcount-backend/internal/data/repos/settings"
	"github.com/yungbote/rowcount-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type CounterRepo = counter.CounterRepo
type HistoryRepo = counter.HistoryRepo
type RowNoteRepo = counter.RowNoteRepo
type WorkSessionRepo = counter.WorkSessionRepo
type ReminderRepo = counter.ReminderRepo

type SettingsRepo = settings.SettingsRepo

func NewCounterRepo(db *gorm.DB, log *logger.Logger) CounterRepo {
	return counter.NewCounterRepo(db, log)
}

func NewHistoryRepo(db *gorm.DB, log *logger.Logger) HistoryRepo {
	return counter.NewHistoryRepo(db, log)
}

func NewRowNoteRepo(db *gorm.DB, log *logger.Logger) RowNoteRepo {
	return counter.NewRowNoteRepo(db, log)
}

func NewWorkSessionRepo(db *gorm.DB, log *logger.Logger) WorkSessionRepo {
	return counter.NewWorkSessionRepo(db, log)
}

func NewReminderRepo(db *gorm.DB, log *logger.Logger) ReminderRepo {
	return counter.NewReminderRepo(db, log)
}

func NewSettingsRepo(db *gorm.DB, log *logger.Logger) SettingsRepo {
	return settings.NewSettingsRepo(db, log)
}
