package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/elemephant/backend/internal/domain"
	"github.com/elemephant/backend/internal/platform/apierr"
	"github.com/elemephant/backend/internal/platform/logger"
	"github.com/elemephant/backend/internal/repos"
)

type StoryService interface {
	List(ctx context.Context, elephantID uuid.UUID) ([]domain.Story, error)
	Create(ctx context.Context, elephantID uuid.UUID, content string, genMeta datatypes.JSON) (*domain.Story, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type storyService struct {
	db           *gorm.DB
	log          *logger.Logger
	elephantRepo repos.ElephantRepo
	storyRepo    repos.StoryRepo
}

func NewStoryService(db *gorm.DB, baseLog *logger.Logger, elephantRepo repos.ElephantRepo, storyRepo repos.StoryRepo) StoryService {
	serviceLog := baseLog.With("service", "StoryService")
	return &storyService{
		db:           db,
		log:          serviceLog,
		elephantRepo: elephantRepo,
		storyRepo:    storyRepo,
	}
}

func (ss *storyService) List(ctx context.Context, elephantID uuid.UUID) ([]domain.Story, error) {
	stories, err := ss.storyRepo.GetByElephantID(ctx, nil, elephantID)
	if err != nil {
		ss.log.Error("failed to list stories", "error", err, "elephant_id", elephantID)
		return nil, apierr.Internal(fmt.Errorf("list stories: %w", err))
	}
	if stories == nil {
		stories = []domain.Story{}
	}
	return stories, nil
}

func (ss *storyService) Create(ctx context.Context, elephantID uuid.UUID, content string, genMeta datatypes.JSON) (*domain.Story, error) {
	if strings.TrimSpace(content) == "" {
		return nil, apierr.Validationf("story content is required")
	}

	// Same-content duplicates are allowed; only the referenced elephant must
	// exist.
	if _, err := ss.elephantRepo.GetByID(ctx, nil, elephantID); err != nil {
		if repos.IsNotFound(err) {
			return nil, apierr.NotFoundf("elephant %s not found", elephantID)
		}
		ss.log.Error("failed to look up elephant for story", "error", err, "elephant_id", elephantID)
		return nil, apierr.Internal(fmt.Errorf("get elephant: %w", err))
	}

	story := &domain.Story{
		ElephantID: elephantID,
		Content:    content,
		GenMeta:    genMeta,
	}
	created, err := ss.storyRepo.Create(ctx, nil, story)
	if err != nil {
		ss.log.Error("failed to create story", "error", err, "elephant_id", elephantID)
		return nil, apierr.Internal(fmt.Errorf("persist story: %w", err))
	}
	return created, nil
}

func (ss *storyService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := ss.storyRepo.DeleteByID(ctx, nil, id); err != nil {
		ss.log.Error("failed to delete story", "error", err, "story_id", id)
		return apierr.Internal(fmt.Errorf("delete story: %w", err))
	}
	return nil
}
