package counter

import (
	"context"

	"github.com/google/uuid"
	types "github.com/yungbote/rowcount-backend/internal/domain"
	"github.com/yungbote/rowcount-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type HistoryRepo interface {
	ListIDs(ctx context.Context, tx *gorm.DB, counterID uuid.UUID) ([]uuid.UUID, error)
	Create(ctx context.Context, tx *gorm.DB, rows []*types.CounterHistory) (int64, error)
	DeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) (int64, error)
}

type historyRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewHistoryRepo(db *gorm.DB, baseLog *logger.Logger) HistoryRepo {
	repoLog := baseLog.With("repo", "HistoryRepo")
	return &historyRepo{db: db, log: repoLog}
}

func (r *historyRepo) ListIDs(ctx context.Context, tx *gorm.DB, counterID uuid.UUID) ([]uuid.UUID, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var ids []uuid.UUID
	if err := transaction.WithContext(ctx).
		Model(&types.CounterHistory{}).
		Where("counter_id = ?", counterID).
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *historyRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.CounterHistory) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(rows) == 0 {
		return 0, nil
	}

	res := transaction.WithContext(ctx).Create(&rows)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *historyRepo) DeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(ids) == 0 {
		return 0, nil
	}

	res := transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&types.CounterHistory{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
