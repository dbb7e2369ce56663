package counter

import (
	"context"
	"errors"

	"github.com/google/uuid"
	types "github.com/yungbote/rowcount-backend/internal/domain"
	"github.com/yungbote/rowcount-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type RowNoteRepo interface {
	Create(ctx context.Context, tx *gorm.DB, notes []*types.RowNote) ([]*types.RowNote, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.RowNote, error)
	ListByCounterID(ctx context.Context, tx *gorm.DB, counterID uuid.UUID) ([]*types.RowNote, error)
	UpdateText(ctx context.Context, tx *gorm.DB, id uuid.UUID, text *string) error
}

type rowNoteRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRowNoteRepo(db *gorm.DB, baseLog *logger.Logger) RowNoteRepo {
	repoLog := baseLog.With("repo", "RowNoteRepo")
	return &rowNoteRepo{db: db, log: repoLog}
}

func (r *rowNoteRepo) Create(ctx context.Context, tx *gorm.DB, notes []*types.RowNote) ([]*types.RowNote, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(notes) == 0 {
		return []*types.RowNote{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&notes).Error; err != nil {
		return nil, err
	}
	return notes, nil
}

func (r *rowNoteRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.RowNote, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var n types.RowNote
	err := transaction.WithContext(ctx).Where("id = ?", id).First(&n).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *rowNoteRepo) ListByCounterID(ctx context.Context, tx *gorm.DB, counterID uuid.UUID) ([]*types.RowNote, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.RowNote
	if err := transaction.WithContext(ctx).
		Where("counter_id = ?", counterID).
		Order("row_number ASC").
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *rowNoteRepo) UpdateText(ctx context.Context, tx *gorm.DB, id uuid.UUID, text *string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.RowNote{}).
		Where("id = ?", id).
		Update("note_text", text).Error
}
