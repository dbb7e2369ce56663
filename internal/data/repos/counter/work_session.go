package counter

import (
	"context"
	"errors"

	"github.com/google/uuid"
	types "github.com/yungbote/rowcount-backend/internal/domain"
	"github.com/yungbote/rowcount-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type WorkSessionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, s *types.WorkSession) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.WorkSession, error)
	GetActive(ctx context.Context, tx *gorm.DB, counterID uuid.UUID) (*types.WorkSession, error)
	ListByCounterID(ctx context.Context, tx *gorm.DB, counterID uuid.UUID) ([]*types.WorkSession, error)
	SaveEnd(ctx context.Context, tx *gorm.DB, s *types.WorkSession) error
}

type workSessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewWorkSessionRepo(db *gorm.DB, baseLog *logger.Logger) WorkSessionRepo {
	repoLog := baseLog.With("repo", "WorkSessionRepo")
	return &workSessionRepo{db: db, log: repoLog}
}

func (r *workSessionRepo) Create(ctx context.Context, tx *gorm.DB, s *types.WorkSession) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(s).Error
}

func (r *workSessionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.WorkSession, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return firstSession(transaction.WithContext(ctx).Where("id = ?", id))
}

// GetActive returns the newest session of the counter that has not ended.
func (r *workSessionRepo) GetActive(ctx context.Context, tx *gorm.DB, counterID uuid.UUID) (*types.WorkSession, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return firstSession(transaction.WithContext(ctx).
		Where("counter_id = ? AND ended_at IS NULL", counterID).
		Order("started_at DESC"))
}

func (r *workSessionRepo) ListByCounterID(ctx context.Context, tx *gorm.DB, counterID uuid.UUID) ([]*types.WorkSession, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.WorkSession
	if err := transaction.WithContext(ctx).
		Where("counter_id = ?", counterID).
		Order("started_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *workSessionRepo) SaveEnd(ctx context.Context, tx *gorm.DB, s *types.WorkSession) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.WorkSession{}).
		Where("id = ?", s.ID).
		Updates(map[string]any{
			"ended_at":         s.EndedAt,
			"duration_seconds": s.DurationSeconds,
			"ending_row_count": s.EndingRowCount,
		}).Error
}

func firstSession(q *gorm.DB) (*types.WorkSession, error) {
	var s types.WorkSession
	err := q.First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}
