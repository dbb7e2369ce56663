package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/rowcount-backend/internal/data/repos"
	"github.com/yungbote/rowcount-backend/internal/platform/logger"
)

type Repos struct {
	Counter     repos.CounterRepo
	History     repos.HistoryRepo
	RowNote     repos.RowNoteRepo
	WorkSession repos.WorkSessionRepo
	Reminder    repos.ReminderRepo
	Settings    repos.SettingsRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Counter:     repos.NewCounterRepo(db, log),
		History:     repos.NewHistoryRepo(db, log),
		RowNote:     repos.NewRowNoteRepo(db, log),
		WorkSession: repos.NewWorkSessionRepo(db, log),
		Reminder:    repos.NewReminderRepo(db, log),
		Settings:    repos.NewSettingsRepo(db, log),
	}
}
