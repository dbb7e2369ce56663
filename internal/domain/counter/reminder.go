package counter

import (
	"time"

	"github.com/google/uuid"
	domainagg "github.com/yungbote/rowcount-backend/internal/domain/aggregates"
)

// Reminder nudges the user back to a counter every IntervalMinutes.
type Reminder struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	CounterID       uuid.UUID  `gorm:"type:uuid;not null;index;column:counter_id" json:"counter_id"`
	IntervalMinutes int        `gorm:"not null;column:interval_minutes" json:"interval_minutes"`
	IsEnabled       bool       `gorm:"not null;column:is_enabled" json:"is_enabled"`
	LastTriggeredAt *time.Time `gorm:"column:last_triggered_at" json:"last_triggered_at,omitempty"`
}

func (Reminder) TableName() string { return "reminder" }

func NewReminder(counterID uuid.UUID, intervalMinutes int) (*Reminder, error) {
	if err := validateInterval("reminder.new", intervalMinutes); err != nil {
		return nil, err
	}
	return &Reminder{
		ID:              uuid.New(),
		CounterID:       counterID,
		IntervalMinutes: intervalMinutes,
		IsEnabled:       true,
	}, nil
}

func (r *Reminder) Enable()  { r.IsEnabled = true }
func (r *Reminder) Disable() { r.IsEnabled = false }

func (r *Reminder) UpdateInterval(intervalMinutes int) error {
	if err := validateInterval("reminder.update_interval", intervalMinutes); err != nil {
		return err
	}
	r.IntervalMinutes = intervalMinutes
	return nil
}

// ShouldTrigger reports whether the reminder is due at t.
func (r *Reminder) ShouldTrigger(t time.Time) bool {
	if !r.IsEnabled {
		return false
	}
	if r.LastTriggeredAt == nil {
		return true
	}
	return t.Sub(*r.LastTriggeredAt) >= time.Duration(r.IntervalMinutes)*time.Minute
}

func (r *Reminder) MarkTriggered(t time.Time) {
	ts := t.UTC().Truncate(time.Microsecond)
	r.LastTriggeredAt = &ts
}

func validateInterval(op string, minutes int) error {
	if minutes <= 0 {
		return domainagg.Validation(op, "interval must be positive")
	}
	return nil
}
