package settings

import (
	"context"
	"errors"

	"github.com/google/uuid"
	types "github.com/yungbote/rowcount-backend/internal/domain"
	"github.com/yungbote/rowcount-backend/internal/platform/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingsRepo interface {
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Settings, error)
	CreateIfAbsent(ctx context.Context, tx *gorm.DB, s *types.Settings) error
	Upsert(ctx context.Context, tx *gorm.DB, s *types.Settings) error
}

type settingsRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSettingsRepo(db *gorm.DB, baseLog *logger.Logger) SettingsRepo {
	repoLog := baseLog.With("repo", "SettingsRepo")
	return &settingsRepo{db: db, log: repoLog}
}

// GetByID returns nil, nil when the row does not exist.
func (r *settingsRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Settings, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var s types.Settings
	err := transaction.WithContext(ctx).Where("id = ?", id).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// CreateIfAbsent inserts s unless a row with the same id already exists.
func (r *settingsRepo) CreateIfAbsent(ctx context.Context, tx *gorm.DB, s *types.Settings) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(s).Error
}

func (r *settingsRepo) Upsert(ctx context.Context, tx *gorm.DB, s *types.Settings) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, UpdateAll: true}).
		Create(s).Error
}
