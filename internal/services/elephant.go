package services

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"gorm.io/gorm"

	"github.com/elemephant/backend/internal/domain"
	"github.com/elemephant/backend/internal/elements"
	"github.com/elemephant/backend/internal/platform/apierr"
	"github.com/elemephant/backend/internal/platform/gcp"
	"github.com/elemephant/backend/internal/platform/logger"
	"github.com/elemephant/backend/internal/repos"
)

// SymbolUsage is the per-element slice of the storage usage report.
type SymbolUsage struct {
	Count int   `json:"count"`
	Bytes int64 `json:"size"`
}

type ElephantService interface {
	List(ctx context.Context, elementSymbol string) ([]domain.Elephant, error)
	Create(ctx context.Context, elementSymbol, filename, caption string, file io.Reader) (*domain.Elephant, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Usage(ctx context.Context) (map[string]SymbolUsage, error)
}

type elephantService struct {
	db            *gorm.DB
	log           *logger.Logger
	elephantRepo  repos.ElephantRepo
	storyRepo     repos.StoryRepo
	bucketService gcp.BucketService
	dataset       *elements.Dataset
	usageCache    *gocache.Cache
}

const usageCacheKey = "usage-by-symbol"

func NewElephantService(
	db *gorm.DB,
	baseLog *logger.Logger,
	elephantRepo repos.ElephantRepo,
	storyRepo repos.StoryRepo,
	bucketService gcp.BucketService,
	dataset *elements.Dataset,
) ElephantService {
	serviceLog := baseLog.With("service", "ElephantService")
	return &elephantService{
		db:            db,
		log:           serviceLog,
		elephantRepo:  elephantRepo,
		storyRepo:     storyRepo,
		bucketService: bucketService,
		dataset:       dataset,
		usageCache:    gocache.New(time.Minute, 5*time.Minute),
	}
}

func (es *elephantService) List(ctx context.Context, elementSymbol string) ([]domain.Elephant, error) {
	var (
		result []domain.Elephant
		err    error
	)
	if elementSymbol != "" {
		result, err = es.elephantRepo.GetByElementSymbol(ctx, nil, elementSymbol)
	} else {
		result, err = es.elephantRepo.GetAll(ctx, nil)
	}
	if err != nil {
		es.log.Error("failed to list elephants", "error", err, "element_symbol", elementSymbol)
		return nil, apierr.Internal(fmt.Errorf("list elephants: %w", err))
	}
	if result == nil {
		result = []domain.Elephant{}
	}
	return result, nil
}

func (es *elephantService) Create(ctx context.Context, elementSymbol, filename, caption string, file io.Reader) (*domain.Elephant, error) {
	if strings.TrimSpace(elementSymbol) == "" {
		return nil, apierr.Validationf("element symbol is required")
	}
	if file == nil {
		return nil, apierr.Validationf("file is required")
	}
	if _, ok := es.dataset.BySymbol(elementSymbol); !ok {
		return nil, apierr.Validationf("unknown element symbol %q", elementSymbol)
	}

	key := storageKey(elementSymbol, filename, time.Now())

	es.log.Info("Uploading elephant image to bucket", "element_symbol", elementSymbol, "storage_key", key)
	if err := es.bucketService.UploadObject(ctx, key, file); err != nil {
		es.log.Error("upload failed", "error", err, "storage_key", key)
		return nil, apierr.Upstream(fmt.Errorf("upload image: %w", err))
	}

	elephant := &domain.Elephant{
		ElementSymbol: elementSymbol,
		ImageURL:      es.bucketService.PublicURL(key),
		BlobKey:       key,
		Caption:       caption,
	}
	created, err := es.elephantRepo.Create(ctx, nil, elephant)
	if err != nil {
		// The uploaded object is orphaned here; there is no automatic
		// cleanup. The usage report surfaces the drift.
		es.log.Error("metadata write failed after successful upload; blob orphaned",
			"error", err,
			"storage_key", key,
		)
		return nil, apierr.Internal(fmt.Errorf("persist elephant: %w", err))
	}

	es.usageCache.Delete(usageCacheKey)
	return created, nil
}

func (es *elephantService) Delete(ctx context.Context, id uuid.UUID) error {
	elephant, err := es.elephantRepo.GetByID(ctx, nil, id)
	if err != nil {
		if repos.IsNotFound(err) {
			return apierr.NotFoundf("elephant %s not found", id)
		}
		es.log.Error("failed to look up elephant", "error", err, "elephant_id", id)
		return apierr.Internal(fmt.Errorf("get elephant: %w", err))
	}

	var blobErr error
	if elephant.BlobKey != "" {
		es.log.Info("Deleting elephant image from bucket", "elephant_id", id, "storage_key", elephant.BlobKey)
		if blobErr = es.bucketService.DeleteObject(ctx, elephant.BlobKey); blobErr != nil {
			// The metadata record is still removed below; the two stores are
			// not transactionally coupled.
			es.log.Error("blob delete failed; metadata record will still be removed",
				"error", blobErr,
				"elephant_id", id,
				"storage_key", elephant.BlobKey,
			)
		}
	}

	err = es.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := es.storyRepo.DeleteByElephantID(ctx, tx, id); err != nil {
			return fmt.Errorf("delete stories: %w", err)
		}
		if err := es.elephantRepo.DeleteByID(ctx, tx, id); err != nil {
			return fmt.Errorf("delete elephant: %w", err)
		}
		return nil
	})
	if err != nil {
		es.log.Error("failed to delete elephant metadata", "error", err, "elephant_id", id)
		return apierr.Internal(err)
	}

	es.usageCache.Delete(usageCacheKey)

	if blobErr != nil {
		return apierr.Upstream(fmt.Errorf("metadata removed but blob delete failed: %w", blobErr))
	}
	return nil
}

func (es *elephantService) Usage(ctx context.Context) (map[string]SymbolUsage, error) {
	if cached, ok := es.usageCache.Get(usageCacheKey); ok {
		return cached.(map[string]SymbolUsage), nil
	}

	objects, err := es.bucketService.ListObjects(ctx, "")
	if err != nil {
		es.log.Error("failed to list bucket objects", "error", err)
		return nil, apierr.Upstream(fmt.Errorf("list objects: %w", err))
	}

	usage := make(map[string]SymbolUsage)
	for _, obj := range objects {
		symbol := obj.Key
		if i := strings.Index(symbol, "-"); i >= 0 {
			symbol = symbol[:i]
		}
		entry := usage[symbol]
		entry.Count++
		entry.Bytes += obj.Size
		usage[symbol] = entry
	}

	es.usageCache.Set(usageCacheKey, usage, gocache.DefaultExpiration)
	return usage, nil
}

// storageKey combines the element symbol, a millisecond timestamp and the
// sanitized original filename. The symbol keeps its case so usage report keys
// match Element.Symbol directly.
func storageKey(elementSymbol, filename string, now time.Time) string {
	name := filepath.Base(strings.TrimSpace(filename))
	if name == "" || name == "." || name == "/" {
		name = "upload"
	}
	name = strings.ReplaceAll(name, " ", "_")
	return fmt.Sprintf("%s-%d-%s", elementSymbol, now.UnixMilli(), name)
}
