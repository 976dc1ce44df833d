package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/elemephant/backend/internal/domain"
	"github.com/elemephant/backend/internal/elements"
	"github.com/elemephant/backend/internal/platform/apierr"
	"github.com/elemephant/backend/internal/platform/gcp"
	"github.com/elemephant/backend/internal/platform/logger"
	"github.com/elemephant/backend/internal/repos"
)

type fakeBucket struct {
	uploads   []string
	deletes   []string
	listCalls int
	objects   []gcp.ObjectAttrs

	uploadErr error
	deleteErr error
	listErr   error
}

func (f *fakeBucket) UploadObject(ctx context.Context, key string, file io.Reader) error {
	if f.uploadErr != nil {
		return f.uploadErr
	}
	f.uploads = append(f.uploads, key)
	return nil
}

func (f *fakeBucket) DeleteObject(ctx context.Context, key string) error {
	f.deletes = append(f.deletes, key)
	return f.deleteErr
}

func (f *fakeBucket) ListObjects(ctx context.Context, prefix string) ([]gcp.ObjectAttrs, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.objects, nil
}

func (f *fakeBucket) PublicURL(key string) string {
	return "https://media.test/" + key
}

func newServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.Elephant{}, &domain.Story{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	t.Cleanup(func() {
		db.Exec("DELETE FROM story")
		db.Exec("DELETE FROM elephant")
	})
	return db
}

func newElephantFixture(t *testing.T) (ElephantService, *fakeBucket, repos.ElephantRepo, repos.StoryRepo) {
	t.Helper()
	db := newServiceTestDB(t)
	log := logger.NewNop()
	elephantRepo := repos.NewElephantRepo(db, log)
	storyRepo := repos.NewStoryRepo(db, log)
	dataset, err := elements.Load()
	if err != nil {
		t.Fatalf("load elements: %v", err)
	}
	bucket := &fakeBucket{}
	svc := NewElephantService(db, log, elephantRepo, storyRepo, bucket, dataset)
	return svc, bucket, elephantRepo, storyRepo
}

func TestElephantCreateMissingSymbolIsValidationError(t *testing.T) {
	svc, bucket, _, _ := newElephantFixture(t)

	_, err := svc.Create(context.Background(), "", "trunk.jpg", "cap", strings.NewReader("img"))
	if !apierr.IsCode(err, apierr.CodeValidationError) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(bucket.uploads) != 0 {
		t.Fatalf("no upload should happen on validation failure")
	}
}

func TestElephantCreateMissingFileIsValidationError(t *testing.T) {
	svc, bucket, _, _ := newElephantFixture(t)

	_, err := svc.Create(context.Background(), "H", "trunk.jpg", "cap", nil)
	if !apierr.IsCode(err, apierr.CodeValidationError) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(bucket.uploads) != 0 {
		t.Fatalf("no upload should happen on validation failure")
	}
}

func TestElephantCreateUnknownSymbolIsValidationError(t *testing.T) {
	svc, _, _, _ := newElephantFixture(t)

	_, err := svc.Create(context.Background(), "Zz", "trunk.jpg", "cap", strings.NewReader("img"))
	if !apierr.IsCode(err, apierr.CodeValidationError) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestElephantCreateUploadsThenPersists(t *testing.T) {
	svc, bucket, _, _ := newElephantFixture(t)

	created, err := svc.Create(context.Background(), "H", "light one.jpg", "Light one", strings.NewReader("imgbytes"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(bucket.uploads) != 1 {
		t.Fatalf("uploads: want=1 got=%d", len(bucket.uploads))
	}
	key := bucket.uploads[0]
	if !strings.HasPrefix(key, "H-") {
		t.Fatalf("storage key must start with the symbol as-is, got %q", key)
	}
	if !strings.HasSuffix(key, "-light_one.jpg") {
		t.Fatalf("storage key must end with sanitized filename, got %q", key)
	}
	if created.BlobKey != key {
		t.Fatalf("blob key mismatch: record=%q uploaded=%q", created.BlobKey, key)
	}
	if created.ImageURL != "https://media.test/"+key {
		t.Fatalf("image url: got %q", created.ImageURL)
	}

	listed, err := svc.List(context.Background(), "H")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 1 || listed[0].Caption != "Light one" {
		t.Fatalf("list after create: got %+v", listed)
	}
	if listed[0].ImageURL == "" {
		t.Fatalf("listed record must carry a non-empty image url")
	}
}

func TestElephantCreateUpstreamFailureOnUploadError(t *testing.T) {
	svc, bucket, elephantRepo, _ := newElephantFixture(t)
	bucket.uploadErr = errors.New("bucket down")

	_, err := svc.Create(context.Background(), "H", "a.jpg", "cap", strings.NewReader("img"))
	if !apierr.IsCode(err, apierr.CodeUpstreamFailure) {
		t.Fatalf("expected upstream failure, got %v", err)
	}
	all, err := elephantRepo.GetAll(context.Background(), nil)
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("no metadata record should exist after failed upload")
	}
}

func TestElephantDeleteNotFoundSkipsBucket(t *testing.T) {
	svc, bucket, _, _ := newElephantFixture(t)

	err := svc.Delete(context.Background(), uuid.New())
	if !apierr.IsCode(err, apierr.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if len(bucket.deletes) != 0 {
		t.Fatalf("no bucket delete should be attempted for a missing record")
	}
}

func TestElephantDeleteRemovesBlobRecordAndStories(t *testing.T) {
	svc, bucket, elephantRepo, storyRepo := newElephantFixture(t)

	created, err := svc.Create(context.Background(), "Fe", "iron.jpg", "rusty", strings.NewReader("img"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := storyRepo.Create(context.Background(), nil, &domain.Story{ElephantID: created.ID, Content: "tale"}); err != nil {
		t.Fatalf("create story: %v", err)
	}

	if err := svc.Delete(context.Background(), created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(bucket.deletes) != 1 || bucket.deletes[0] != created.BlobKey {
		t.Fatalf("bucket delete calls: got %v", bucket.deletes)
	}
	if _, err := elephantRepo.GetByID(context.Background(), nil, created.ID); !repos.IsNotFound(err) {
		t.Fatalf("record should be gone, got %v", err)
	}
	stories, err := storyRepo.GetByElephantID(context.Background(), nil, created.ID)
	if err != nil {
		t.Fatalf("get stories: %v", err)
	}
	if len(stories) != 0 {
		t.Fatalf("stories of a deleted elephant must be purged, got %d", len(stories))
	}
}

func TestElephantDeleteBlobFailureStillRemovesMetadata(t *testing.T) {
	svc, bucket, elephantRepo, _ := newElephantFixture(t)

	created, err := svc.Create(context.Background(), "Au", "gold.jpg", "shiny", strings.NewReader("img"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	bucket.deleteErr = errors.New("object store unavailable")

	err = svc.Delete(context.Background(), created.ID)
	if !apierr.IsCode(err, apierr.CodeUpstreamFailure) {
		t.Fatalf("expected partial-failure signal, got %v", err)
	}
	if _, err := elephantRepo.GetByID(context.Background(), nil, created.ID); !repos.IsNotFound(err) {
		t.Fatalf("metadata must be removed even when blob delete fails, got %v", err)
	}
}

func TestElephantUsageGroupsBySymbolPrefixAndCaches(t *testing.T) {
	svc, bucket, _, _ := newElephantFixture(t)
	bucket.objects = []gcp.ObjectAttrs{
		{Key: "H-1-a.jpg", Size: 100},
		{Key: "H-2-b.jpg", Size: 50},
		{Key: "He-3-c.png", Size: 10},
	}

	usage, err := svc.Usage(context.Background())
	if err != nil {
		t.Fatalf("usage: %v", err)
	}
	// Keys match Element.Symbol casing.
	if got := usage["H"]; got.Count != 2 || got.Bytes != 150 {
		t.Fatalf("H usage: got %+v", got)
	}
	if got := usage["He"]; got.Count != 1 || got.Bytes != 10 {
		t.Fatalf("He usage: got %+v", got)
	}

	if _, err := svc.Usage(context.Background()); err != nil {
		t.Fatalf("second usage: %v", err)
	}
	if bucket.listCalls != 1 {
		t.Fatalf("second call should be served from cache, list calls=%d", bucket.listCalls)
	}
}

func TestElephantListNeverReturnsNil(t *testing.T) {
	svc, _, _, _ := newElephantFixture(t)

	all, err := svc.List(context.Background(), "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if all == nil {
		t.Fatalf("empty catalog must serialize as [], not null")
	}
}
