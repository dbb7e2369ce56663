package domain

import (
	"github.com/yungbote/rowcount-backend/internal/domain/counter"
	"github.com/yungbote/rowcount-backend/internal/domain/settings"
)

type Counter = counter.Counter
type CounterHistory = counter.CounterHistory
type CounterDetails = counter.Details
type RowNote = counter.RowNote
type WorkSession = counter.WorkSession
type Reminder = counter.Reminder

type Settings = settings.Settings
type Theme = settings.Theme

// Models lists every persisted type in migration order.
func Models() []any {
	return []any{
		&Counter{},
		&CounterHistory{},
		&RowNote{},
		&WorkSession{},
		&Reminder{},
		&Settings{},
	}
}
