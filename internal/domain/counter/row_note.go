package counter

import (
	"strings"
	"time"

	"github.com/google/uuid"
	domainagg "github.com/yungbote/rowcount-backend/internal/domain/aggregates"
)

// RowNote pins a short note to a row number of a counter, e.g. "decrease here".
type RowNote struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CounterID uuid.UUID `gorm:"type:uuid;not null;index;column:counter_id" json:"counter_id"`
	RowNumber int       `gorm:"not null;column:row_number" json:"row_number"`
	NoteText  *string   `gorm:"size:1000;column:note_text" json:"note_text,omitempty"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime:false;column:created_at" json:"created_at"`
}

func (RowNote) TableName() string { return "row_note" }

func NewRowNote(counterID uuid.UUID, rowNumber int, text *string) (*RowNote, error) {
	if rowNumber < 0 {
		return nil, domainagg.Validation("row_note.new", "row number cannot be negative")
	}
	return &RowNote{
		ID:        uuid.New(),
		CounterID: counterID,
		RowNumber: rowNumber,
		NoteText:  trimmedOrNil(text),
		CreatedAt: now(),
	}, nil
}

func (n *RowNote) UpdateText(text *string) {
	n.NoteText = trimmedOrNil(text)
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}
