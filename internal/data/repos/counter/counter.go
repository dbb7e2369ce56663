package counter

import (
	"context"
	"errors"

	"github.com/google/uuid"
	types "github.com/yungbote/rowcount-backend/internal/domain"
	"github.com/yungbote/rowcount-backend/internal/platform/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CounterRepo interface {
	Create(ctx context.Context, tx *gorm.DB, counters []*types.Counter) (int64, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Counter, error)
	ListByArchived(ctx context.Context, tx *gorm.DB, archived bool, ownerUserID *uuid.UUID) ([]*types.Counter, error)
	UpdateState(ctx context.Context, tx *gorm.DB, c *types.Counter) (int64, error)
}

type counterRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCounterRepo(db *gorm.DB, baseLog *logger.Logger) CounterRepo {
	repoLog := baseLog.With("repo", "CounterRepo")
	return &counterRepo{db: db, log: repoLog}
}

// Create inserts counter rows only; history rows are written by HistoryRepo.
func (r *counterRepo) Create(ctx context.Context, tx *gorm.DB, counters []*types.Counter) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(counters) == 0 {
		return 0, nil
	}

	res := transaction.WithContext(ctx).
		Omit(clause.Associations).
		Create(&counters)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// GetByID returns nil, nil when no counter has the id.
func (r *counterRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Counter, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var c types.Counter
	err := transaction.WithContext(ctx).
		Preload("History", orderHistory).
		Where("id = ?", id).
		First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListByArchived returns one partition of counters, most recently touched
// first. A nil owner selects only unowned counters, never all of them.
func (r *counterRepo) ListByArchived(ctx context.Context, tx *gorm.DB, archived bool, ownerUserID *uuid.UUID) ([]*types.Counter, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	q := transaction.WithContext(ctx).
		Preload("History", orderHistory).
		Where("is_archived = ?", archived)
	if ownerUserID != nil {
		q = q.Where("owner_user_id = ?", *ownerUserID)
	} else {
		q = q.Where("owner_user_id IS NULL")
	}

	var results []*types.Counter
	if err := q.Order("updated_at DESC").
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// UpdateState writes every mutable column of c. Zero rows affected means the
// counter does not exist.
func (r *counterRepo) UpdateState(ctx context.Context, tx *gorm.DB, c *types.Counter) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	res := transaction.WithContext(ctx).
		Model(&types.Counter{}).
		Where("id = ?", c.ID).
		Updates(map[string]any{
			"owner_user_id":   c.OwnerUserID,
			"name":            c.Name,
			"current_count":   c.CurrentCount,
			"is_archived":     c.IsArchived,
			"color_hex":       c.ColorHex,
			"total_rows":      c.TotalRows,
			"rows_per_repeat": c.RowsPerRepeat,
			"notes":           c.Notes,
			"updated_at":      c.UpdatedAt,
		})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func orderHistory(db *gorm.DB) *gorm.DB {
	return db.Order("changed_at ASC").Order("seq ASC")
}
