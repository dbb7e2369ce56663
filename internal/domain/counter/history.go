package counter

import (
	"time"

	"github.com/google/uuid"
)

// CounterHistory is one immutable value transition. It refers to its counter
// by id only.
type CounterHistory struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CounterID uuid.UUID `gorm:"type:uuid;not null;index;column:counter_id" json:"counter_id"`
	OldValue  int       `gorm:"not null;column:old_value" json:"old_value"`
	NewValue  int       `gorm:"not null;column:new_value" json:"new_value"`
	ChangedAt time.Time `gorm:"not null;index;column:changed_at" json:"changed_at"`
	// Seq breaks ChangedAt ties in insertion order.
	Seq int64 `gorm:"not null;column:seq" json:"seq"`
}

func (CounterHistory) TableName() string { return "counter_history" }

func newHistory(counterID uuid.UUID, oldValue, newValue int, at time.Time, seq int64) CounterHistory {
	return CounterHistory{
		ID:        uuid.New(),
		CounterID: counterID,
		OldValue:  oldValue,
		NewValue:  newValue,
		ChangedAt: at,
		Seq:       seq,
	}
}

func (h CounterHistory) after(other CounterHistory) bool {
	if h.ChangedAt.Equal(other.ChangedAt) {
		return h.Seq > other.Seq
	}
	return h.ChangedAt.After(other.ChangedAt)
}
