package counter

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	domainagg "github.com/yungbote/rowcount-backend/internal/domain/aggregates"
)

const (
	// MaxNameLength bounds counter display names, in runes.
	MaxNameLength = 200
	// MaxNotesLength bounds the free-text note, in runes.
	MaxNotesLength = 4000
)

// now is the clock for every timestamp the aggregate writes. Microsecond
// precision keeps values stable across Postgres and SQLite round trips.
var now = func() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// Counter is the aggregate root for one counted project. All value changes go
// through its methods so the history stays in step with CurrentCount.
type Counter struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerUserID *uuid.UUID `gorm:"type:uuid;index;column:owner_user_id" json:"owner_user_id,omitempty"`

	Name         string `gorm:"not null;size:200;column:name" json:"name"`
	CurrentCount int    `gorm:"not null;column:current_count" json:"current_count"`
	IsArchived   bool   `gorm:"not null;index;column:is_archived" json:"is_archived"`

	ColorHex      *string `gorm:"size:9;column:color_hex" json:"color_hex,omitempty"`
	TotalRows     *int    `gorm:"column:total_rows" json:"total_rows,omitempty"`
	RowsPerRepeat *int    `gorm:"column:rows_per_repeat" json:"rows_per_repeat,omitempty"`
	Notes         *string `gorm:"size:4000;column:notes" json:"notes,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime:false;column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;index;autoUpdateTime:false;column:updated_at" json:"updated_at"`

	History []CounterHistory `gorm:"foreignKey:CounterID;constraint:OnDelete:CASCADE" json:"history,omitempty"`

	// Owned rows loaded by their own repos; declared here for the cascade constraints.
	RowNotes     []RowNote     `gorm:"foreignKey:CounterID;constraint:OnDelete:CASCADE" json:"-"`
	WorkSessions []WorkSession `gorm:"foreignKey:CounterID;constraint:OnDelete:CASCADE" json:"-"`
	Reminders    []Reminder    `gorm:"foreignKey:CounterID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Counter) TableName() string { return "counter" }

// New validates name and returns a zeroed counter. A nil owner places the
// counter in the unowned, local-only partition.
func New(name string, owner *uuid.UUID) (*Counter, error) {
	trimmed, err := ValidateName(name)
	if err != nil {
		return nil, err
	}
	ts := now()
	c := &Counter{
		ID:        uuid.New(),
		Name:      trimmed,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	if owner != nil && *owner != uuid.Nil {
		id := *owner
		c.OwnerUserID = &id
	}
	return c, nil
}

// ValidateName trims name and checks it against the display-name rules.
func ValidateName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", domainagg.Validation("counter.name", "name cannot be empty")
	}
	if utf8.RuneCountInString(trimmed) > MaxNameLength {
		return "", domainagg.Validation("counter.name", "name must be 200 characters or less")
	}
	return trimmed, nil
}

func (c *Counter) Increment() {
	old := c.CurrentCount
	c.CurrentCount++
	c.UpdatedAt = now()
	c.record(old, c.CurrentCount)
}

// Decrement lowers the count by one. At zero it does nothing at all: no
// history row and no timestamp change. It reports whether the count moved.
func (c *Counter) Decrement() bool {
	if c.CurrentCount <= 0 {
		return false
	}
	old := c.CurrentCount
	c.CurrentCount--
	c.UpdatedAt = now()
	c.record(old, c.CurrentCount)
	return true
}

// Reset sets the count to zero and always records the transition, even when
// the count was already zero.
func (c *Counter) Reset() {
	old := c.CurrentCount
	c.CurrentCount = 0
	c.UpdatedAt = now()
	c.record(old, 0)
}

// Restore sets the count directly. One history row is written when the value
// actually changes.
func (c *Counter) Restore(value int) error {
	if value < 0 {
		return domainagg.Validation("counter.restore", "count cannot be negative")
	}
	if value == c.CurrentCount {
		return nil
	}
	old := c.CurrentCount
	c.CurrentCount = value
	c.UpdatedAt = now()
	c.record(old, value)
	return nil
}

// UndoLastChange rolls back the most recent history row. It returns false,
// leaving the counter untouched, when there is no history.
func (c *Counter) UndoLastChange() bool {
	idx := c.latestHistoryIndex()
	if idx < 0 {
		return false
	}
	last := c.History[idx]
	c.CurrentCount = last.OldValue
	c.UpdatedAt = now()
	c.History = append(c.History[:idx], c.History[idx+1:]...)
	return true
}

// Rename replaces the display name under the same rules as New.
func (c *Counter) Rename(name string) error {
	trimmed, err := ValidateName(name)
	if err != nil {
		return err
	}
	if trimmed == c.Name {
		return nil
	}
	c.Name = trimmed
	c.UpdatedAt = now()
	return nil
}

func (c *Counter) Archive() {
	c.IsArchived = true
	c.UpdatedAt = now()
}

func (c *Counter) Unarchive() {
	c.IsArchived = false
	c.UpdatedAt = now()
}

// Progress returns how far CurrentCount is toward TotalRows as a percentage
// capped at 100. ok is false when no target is set.
func (c *Counter) Progress() (pct float64, ok bool) {
	if c.TotalRows == nil || *c.TotalRows <= 0 {
		return 0, false
	}
	pct = float64(c.CurrentCount) / float64(*c.TotalRows) * 100
	if pct > 100 {
		pct = 100
	}
	return pct, true
}

func (c *Counter) record(oldValue, newValue int) {
	c.History = append(c.History, newHistory(c.ID, oldValue, newValue, c.UpdatedAt, c.nextSeq()))
}

func (c *Counter) nextSeq() int64 {
	var max int64
	for _, h := range c.History {
		if h.Seq > max {
			max = h.Seq
		}
	}
	return max + 1
}

func (c *Counter) latestHistoryIndex() int {
	idx := -1
	for i, h := range c.History {
		if idx < 0 || h.after(c.History[idx]) {
			idx = i
		}
	}
	return idx
}
