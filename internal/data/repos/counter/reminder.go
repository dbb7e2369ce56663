package counter

import (
	"context"
	"errors"

	"github.com/google/uuid"
	types "github.com/yungbote/rowcount-backend/internal/domain"
	"github.com/yungbote/rowcount-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type ReminderRepo interface {
	Create(ctx context.Context, tx *gorm.DB, r *types.Reminder) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Reminder, error)
	ListByCounterID(ctx context.Context, tx *gorm.DB, counterID uuid.UUID) ([]*types.Reminder, error)
	ListEnabled(ctx context.Context, tx *gorm.DB) ([]*types.Reminder, error)
	Save(ctx context.Context, tx *gorm.DB, r *types.Reminder) error
}

type reminderRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewReminderRepo(db *gorm.DB, baseLog *logger.Logger) ReminderRepo {
	repoLog := baseLog.With("repo", "ReminderRepo")
	return &reminderRepo{db: db, log: repoLog}
}

func (r *reminderRepo) Create(ctx context.Context, tx *gorm.DB, rem *types.Reminder) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(rem).Error
}

// GetByID returns nil, nil when no reminder has the id.
func (r *reminderRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Reminder, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var rem types.Reminder
	err := transaction.WithContext(ctx).Where("id = ?", id).First(&rem).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rem, nil
}

func (r *reminderRepo) ListByCounterID(ctx context.Context, tx *gorm.DB, counterID uuid.UUID) ([]*types.Reminder, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Reminder
	if err := transaction.WithContext(ctx).
		Where("counter_id = ?", counterID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// ListEnabled returns enabled reminders whose counter is still active.
func (r *reminderRepo) ListEnabled(ctx context.Context, tx *gorm.DB) ([]*types.Reminder, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Reminder
	if err := transaction.WithContext(ctx).
		Select("reminder.*").
		Joins("JOIN counter ON counter.id = reminder.counter_id").
		Where("reminder.is_enabled = ? AND counter.is_archived = ?", true, false).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *reminderRepo) Save(ctx context.Context, tx *gorm.DB, rem *types.Reminder) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.Reminder{}).
		Where("id = ?", rem.ID).
		Updates(map[string]any{
			"interval_minutes":  rem.IntervalMinutes,
			"is_enabled":        rem.IsEnabled,
			"last_triggered_at": rem.LastTriggeredAt,
		}).Error
}
