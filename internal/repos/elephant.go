package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/elemephant/backend/internal/domain"
	"github.com/elemephant/backend/internal/platform/logger"
)

var ErrRecordNotFound = gorm.ErrRecordNotFound

type ElephantRepo interface {
	Create(ctx context.Context, tx *gorm.DB, elephant *domain.Elephant) (*domain.Elephant, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Elephant, error)
	GetAll(ctx context.Context, tx *gorm.DB) ([]domain.Elephant, error)
	GetByElementSymbol(ctx context.Context, tx *gorm.DB, symbol string) ([]domain.Elephant, error)
	DeleteByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type elephantRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewElephantRepo(db *gorm.DB, baseLog *logger.Logger) ElephantRepo {
	repoLog := baseLog.With("repo", "ElephantRepo")
	return &elephantRepo{db: db, log: repoLog}
}

func (r *elephantRepo) Create(ctx context.Context, tx *gorm.DB, elephant *domain.Elephant) (*domain.Elephant, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).Create(elephant).Error; err != nil {
		return nil, err
	}
	return elephant, nil
}

func (r *elephantRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Elephant, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result domain.Elephant
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *elephantRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]domain.Elephant, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []domain.Elephant
	if err := transaction.WithContext(ctx).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *elephantRepo) GetByElementSymbol(ctx context.Context, tx *gorm.DB, symbol string) ([]domain.Elephant, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []domain.Elephant
	if err := transaction.WithContext(ctx).
		Where("element_symbol = ?", symbol).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *elephantRepo) DeleteByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		Delete(&domain.Elephant{}).Error; err != nil {
		return err
	}
	return nil
}

// IsNotFound reports whether err is the store's missing-record error.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
