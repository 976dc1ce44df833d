package services

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/elemephant/backend/internal/domain"
	"github.com/elemephant/backend/internal/platform/apierr"
	"github.com/elemephant/backend/internal/platform/logger"
	"github.com/elemephant/backend/internal/repos"
)

func newStoryFixture(t *testing.T) (StoryService, repos.ElephantRepo, repos.StoryRepo) {
	t.Helper()
	db := newServiceTestDB(t)
	log := logger.NewNop()
	elephantRepo := repos.NewElephantRepo(db, log)
	storyRepo := repos.NewStoryRepo(db, log)
	return NewStoryService(db, log, elephantRepo, storyRepo), elephantRepo, storyRepo
}

func seedServiceElephant(t *testing.T, repo repos.ElephantRepo) *domain.Elephant {
	t.Helper()
	created, err := repo.Create(context.Background(), nil, &domain.Elephant{
		ElementSymbol: "He",
		ImageURL:      "https://media.test/He-1-a.png",
		BlobKey:       "He-1-a.png",
		Caption:       "floaty",
	})
	if err != nil {
		t.Fatalf("seed elephant: %v", err)
	}
	return created
}

func TestStoryCreateMissingElephantIsNotFound(t *testing.T) {
	svc, _, storyRepo := newStoryFixture(t)

	_, err := svc.Create(context.Background(), uuid.New(), "a tale", nil)
	if !apierr.IsCode(err, apierr.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	stories, repoErr := storyRepo.GetByElephantID(context.Background(), nil, uuid.New())
	if repoErr != nil {
		t.Fatalf("get stories: %v", repoErr)
	}
	if len(stories) != 0 {
		t.Fatalf("no story record should be created")
	}
}

func TestStoryCreateEmptyContentIsValidationError(t *testing.T) {
	svc, elephantRepo, _ := newStoryFixture(t)
	e := seedServiceElephant(t, elephantRepo)

	_, err := svc.Create(context.Background(), e.ID, "   ", nil)
	if !apierr.IsCode(err, apierr.CodeValidationError) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestStoryCreateListDelete(t *testing.T) {
	svc, elephantRepo, _ := newStoryFixture(t)
	e := seedServiceElephant(t, elephantRepo)

	created, err := svc.Create(context.Background(), e.ID, "Once upon a trunk.", nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	stories, err := svc.List(context.Background(), e.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(stories) != 1 || stories[0].ID != created.ID {
		t.Fatalf("list after create: got %+v", stories)
	}

	if err := svc.Delete(context.Background(), created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	stories, err = svc.List(context.Background(), e.ID)
	if err != nil {
		t.Fatalf("list after delete: %v", err)
	}
	if len(stories) != 0 {
		t.Fatalf("story should be gone, got %d", len(stories))
	}
}

func TestStoryCreateSameContentTwiceMakesTwoRecords(t *testing.T) {
	svc, elephantRepo, _ := newStoryFixture(t)
	e := seedServiceElephant(t, elephantRepo)

	// Duplicate content is intended behavior: saving the same text twice
	// produces two independent records, no dedup.
	first, err := svc.Create(context.Background(), e.ID, "The very same tale.", nil)
	if err != nil {
		t.Fatalf("first create: %v", err)
	}
	second, err := svc.Create(context.Background(), e.ID, "The very same tale.", nil)
	if err != nil {
		t.Fatalf("second create: %v", err)
	}
	if first.ID == second.ID {
		t.Fatalf("duplicate content must produce distinct records, both got id %s", first.ID)
	}

	stories, err := svc.List(context.Background(), e.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(stories) != 2 {
		t.Fatalf("expected 2 records, got %d", len(stories))
	}
}

func TestStoryListNeverReturnsNil(t *testing.T) {
	svc, elephantRepo, _ := newStoryFixture(t)
	e := seedServiceElephant(t, elephantRepo)

	stories, err := svc.List(context.Background(), e.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if stories == nil {
		t.Fatalf("empty story list must serialize as [], not null")
	}
}
