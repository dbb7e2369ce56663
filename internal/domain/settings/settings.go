package settings

import (
	"strings"
	"time"

	"github.com/google/uuid"
	domainagg "github.com/yungbote/rowcount-backend/internal/domain/aggregates"
)

// SingletonID is the well-known id of the only settings row.
var SingletonID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

type Theme string

const (
	ThemeLight Theme = "Light"
	ThemeDark  Theme = "Dark"
	ThemeAuto  Theme = "Auto"
)

func (t Theme) Valid() bool {
	switch t {
	case ThemeLight, ThemeDark, ThemeAuto:
		return true
	}
	return false
}

const maxProviderLength = 50

var now = func() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// Settings is the app-wide preference record. Onboarding and sync are
// independent axes; onboarding only ever moves forward.
type Settings struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	IsFirstRun          bool       `gorm:"not null;column:is_first_run" json:"is_first_run"`
	FirstRunCompletedAt *time.Time `gorm:"column:first_run_completed_at" json:"first_run_completed_at,omitempty"`

	SyncEnabled        bool       `gorm:"not null;column:sync_enabled" json:"sync_enabled"`
	SyncProvider       *string    `gorm:"size:50;column:sync_provider" json:"sync_provider,omitempty"`
	LastSuccessfulSync *time.Time `gorm:"column:last_successful_sync" json:"last_successful_sync,omitempty"`

	Theme                 Theme `gorm:"not null;size:10;column:theme" json:"theme"`
	HapticFeedbackEnabled bool  `gorm:"not null;column:haptic_feedback_enabled" json:"haptic_feedback_enabled"`
	CounterCreationCount  int   `gorm:"not null;column:counter_creation_count" json:"counter_creation_count"`
}

func (Settings) TableName() string { return "app_settings" }

func Default() *Settings {
	return &Settings{
		ID:                    SingletonID,
		IsFirstRun:            true,
		Theme:                 ThemeAuto,
		HapticFeedbackEnabled: true,
	}
}

// CompleteFirstRun ends onboarding. Later calls keep the first completion time.
func (s *Settings) CompleteFirstRun() {
	if !s.IsFirstRun && s.FirstRunCompletedAt != nil {
		return
	}
	ts := now()
	s.IsFirstRun = false
	s.FirstRunCompletedAt = &ts
}

func (s *Settings) EnableSync(provider string) error {
	p := strings.TrimSpace(provider)
	if p == "" {
		return domainagg.Validation("settings.enable_sync", "provider cannot be empty")
	}
	if len(p) > maxProviderLength {
		return domainagg.Validation("settings.enable_sync", "provider must be 50 characters or less")
	}
	s.SyncEnabled = true
	s.SyncProvider = &p
	return nil
}

func (s *Settings) DisableSync() {
	s.SyncEnabled = false
	s.SyncProvider = nil
}

// RecordSuccessfulSync stamps the last completed sync. Sync must be enabled.
func (s *Settings) RecordSuccessfulSync(at time.Time) error {
	if !s.SyncEnabled {
		return domainagg.Precondition("settings.record_sync", "sync is disabled")
	}
	ts := at.UTC().Truncate(time.Microsecond)
	s.LastSuccessfulSync = &ts
	return nil
}

func (s *Settings) UpdateTheme(theme string) error {
	t := Theme(strings.TrimSpace(theme))
	if !t.Valid() {
		return domainagg.Validation("settings.update_theme", "theme must be Light, Dark or Auto")
	}
	s.Theme = t
	return nil
}

func (s *Settings) SetHapticFeedback(enabled bool) {
	s.HapticFeedbackEnabled = enabled
}

func (s *Settings) IncrementCounterCreationCount() {
	s.CounterCreationCount++
}

// Validate checks the cross-field invariants before the record is persisted.
func (s *Settings) Validate() error {
	const op = "settings.validate"
	if s.ID != SingletonID {
		return domainagg.NewError(domainagg.CodeInvariantViolation, op, "settings id must be the singleton id", nil)
	}
	if !s.Theme.Valid() {
		return domainagg.Validation(op, "theme must be Light, Dark or Auto")
	}
	hasProvider := s.SyncProvider != nil && strings.TrimSpace(*s.SyncProvider) != ""
	if s.SyncEnabled != hasProvider {
		return domainagg.NewError(domainagg.CodeInvariantViolation, op, "sync provider must be set exactly when sync is enabled", nil)
	}
	if s.CounterCreationCount < 0 {
		return domainagg.NewError(domainagg.CodeInvariantViolation, op, "creation count cannot be negative", nil)
	}
	return nil
}
