package counter

import (
	"time"

	"github.com/google/uuid"
	domainagg "github.com/yungbote/rowcount-backend/internal/domain/aggregates"
)

// WorkSession is one timed stretch of work on a counter.
type WorkSession struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	CounterID        uuid.UUID  `gorm:"type:uuid;not null;index;column:counter_id" json:"counter_id"`
	StartedAt        time.Time  `gorm:"not null;column:started_at" json:"started_at"`
	EndedAt          *time.Time `gorm:"column:ended_at" json:"ended_at,omitempty"`
	DurationSeconds  int        `gorm:"not null;column:duration_seconds" json:"duration_seconds"`
	StartingRowCount *int       `gorm:"column:starting_row_count" json:"starting_row_count,omitempty"`
	EndingRowCount   *int       `gorm:"column:ending_row_count" json:"ending_row_count,omitempty"`
}

func (WorkSession) TableName() string { return "work_session" }

func StartWorkSession(counterID uuid.UUID, startingRowCount *int) *WorkSession {
	return &WorkSession{
		ID:               uuid.New(),
		CounterID:        counterID,
		StartedAt:        now(),
		StartingRowCount: startingRowCount,
	}
}

func (s *WorkSession) IsActive() bool { return s.EndedAt == nil }

// End closes the session. Ending twice is a precondition failure.
func (s *WorkSession) End(endingRowCount *int) error {
	if s.EndedAt != nil {
		return domainagg.Precondition("work_session.end", "session is already ended")
	}
	ended := now()
	s.EndedAt = &ended
	s.DurationSeconds = int(ended.Sub(s.StartedAt).Seconds())
	s.EndingRowCount = endingRowCount
	return nil
}

// RowsCompleted is the row delta over the session, when both ends are known.
func (s *WorkSession) RowsCompleted() (int, bool) {
	if s.StartingRowCount == nil || s.EndingRowCount == nil {
		return 0, false
	}
	return *s.EndingRowCount - *s.StartingRowCount, true
}
