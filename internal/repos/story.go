package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/elemephant/backend/internal/domain"
	"github.com/elemephant/backend/internal/platform/logger"
)

type StoryRepo interface {
	Create(ctx context.Context, tx *gorm.DB, story *domain.Story) (*domain.Story, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Story, error)
	GetByElephantID(ctx context.Context, tx *gorm.DB, elephantID uuid.UUID) ([]domain.Story, error)
	DeleteByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	DeleteByElephantID(ctx context.Context, tx *gorm.DB, elephantID uuid.UUID) error
}

type storyRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStoryRepo(db *gorm.DB, baseLog *logger.Logger) StoryRepo {
	repoLog := baseLog.With("repo", "StoryRepo")
	return &storyRepo{db: db, log: repoLog}
}

func (r *storyRepo) Create(ctx context.Context, tx *gorm.DB, story *domain.Story) (*domain.Story, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).Create(story).Error; err != nil {
		return nil, err
	}
	return story, nil
}

func (r *storyRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Story, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result domain.Story
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *storyRepo) GetByElephantID(ctx context.Context, tx *gorm.DB, elephantID uuid.UUID) ([]domain.Story, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []domain.Story
	if err := transaction.WithContext(ctx).
		Where("elephant_id = ?", elephantID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *storyRepo) DeleteByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		Delete(&domain.Story{}).Error; err != nil {
		return err
	}
	return nil
}

func (r *storyRepo) DeleteByElephantID(ctx context.Context, tx *gorm.DB, elephantID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).
		Where("elephant_id = ?", elephantID).
		Delete(&domain.Story{}).Error; err != nil {
		return err
	}
	return nil
}
