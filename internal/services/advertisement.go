package services

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/admatch-backend/internal/jobs/payload"
	"github.com/yungbote/admatch-backend/internal/platform/gcp"
	"github.com/yungbote/admatch-backend/internal/platform/logger"
	"github.com/yungbote/admatch-backend/internal/repos"
	"github.com/yungbote/admatch-backend/internal/types"
)

// Mime types accepted at upload. Anything else is rejected synchronously,
// before a single job is enqueued.
var supportedUploadMimes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/png":       true,
	"image/webp":      true,
}

// AdvertisementView is one advertisement with its live match aggregate.
type AdvertisementView struct {
	Advertisement   *types.Advertisement `json:"advertisement"`
	Counts          repos.MatchCounts    `json:"counts"`
	MatchPercentage int                  `json:"match_percentage"`
}

type AdvertisementService interface {
	CreateRetailer(ctx context.Context, name string) (*types.Retailer, error)
	Create(ctx context.Context, retailerID uuid.UUID) (*types.Advertisement, error)
	// UploadFiles validates the batch and enqueues the ingest job. Validation
	// failures surface to the uploader immediately; nothing is enqueued.
	UploadFiles(ctx context.Context, adID uuid.UUID, files []payload.FileBlob) (*types.JobRun, error)
	GetWithMatchStats(ctx context.Context, id uuid.UUID) (*AdvertisementView, error)
	ListItems(ctx context.Context, adID uuid.UUID) ([]*types.Item, error)
	ConfirmMatch(ctx context.Context, itemID uuid.UUID, kind repos.SuggestionKind, suggestionID uuid.UUID) error
	Unmatch(ctx context.Context, itemID uuid.UUID) error
	// FinishLater freezes the current match percentage. A fully matched
	// advertisement completes; a partially matched one stays in needs_review.
	FinishLater(ctx context.Context, id uuid.UUID) (*AdvertisementView, error)
	// MarkComplete force-completes the advertisement at 100%, regardless of
	// how many items are actually matched. Safe to repeat.
	MarkComplete(ctx context.Context, id uuid.UUID) (*AdvertisementView, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type advertisementService struct {
	log            *logger.Logger
	db             *gorm.DB
	retailerRepo   repos.RetailerRepo
	adRepo         repos.AdvertisementRepo
	itemRepo       repos.ItemRepo
	suggestionRepo repos.SuggestionRepo
	jobs           JobService
	bucket         gcp.BucketService
}

func NewAdvertisementService(
	baseLog *logger.Logger,
	db *gorm.DB,
	retailerRepo repos.RetailerRepo,
	adRepo repos.AdvertisementRepo,
	itemRepo repos.ItemRepo,
	suggestionRepo repos.SuggestionRepo,
	jobs JobService,
	bucket gcp.BucketService,
) AdvertisementService {
	return &advertisementService{
		log:            baseLog.With("service", "AdvertisementService"),
		db:             db,
		retailerRepo:   retailerRepo,
		adRepo:         adRepo,
		itemRepo:       itemRepo,
		suggestionRepo: suggestionRepo,
		jobs:           jobs,
		bucket:         bucket,
	}
}

func (s *advertisementService) CreateRetailer(ctx context.Context, name string) (*types.Retailer, error) {
	if name == "" {
		return nil, fmt.Errorf("retailer name required")
	}
	return s.retailerRepo.Create(ctx, nil, &types.Retailer{Name: name})
}

func (s *advertisementService) Create(ctx context.Context, retailerID uuid.UUID) (*types.Advertisement, error) {
	retailer, err := s.retailerRepo.GetByID(ctx, nil, retailerID)
	if err != nil {
		return nil, err
	}
	if retailer == nil {
		return nil, fmt.Errorf("retailer %s not found", retailerID)
	}
	return s.adRepo.Create(ctx, nil, &types.Advertisement{
		RetailerID: retailerID,
		Status:     types.AdvertisementStatusIntake,
	})
}

func (s *advertisementService) UploadFiles(ctx context.Context, adID uuid.UUID, files []payload.FileBlob) (*types.JobRun, error) {
	ad, err := s.adRepo.GetByID(ctx, nil, adID)
	if err != nil {
		return nil, err
	}
	if ad == nil {
		return nil, fmt.Errorf("advertisement %s not found", adID)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no files uploaded")
	}
	for i, f := range files {
		if len(f.Data) == 0 {
			return nil, fmt.Errorf("file %d is empty", i+1)
		}
		if !supportedUploadMimes[f.Mime] {
			return nil, fmt.Errorf("file %d has unsupported type %q", i+1, f.Mime)
		}
	}
	return s.jobs.Enqueue(ctx, nil, payload.TypeProcessFiles, "advertisement", &adID, payload.ProcessFiles{
		AdvertisementID: adID,
		Files:           files,
	})
}

func (s *advertisementService) GetWithMatchStats(ctx context.Context, id uuid.UUID) (*AdvertisementView, error) {
	ad, err := s.adRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if ad == nil {
		return nil, fmt.Errorf("advertisement %s not found", id)
	}
	counts, err := s.adRepo.MatchCounts(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	return &AdvertisementView{
		Advertisement:   ad,
		Counts:          counts,
		MatchPercentage: matchPercentage(counts.MatchedItems, counts.TotalItems),
	}, nil
}

func (s *advertisementService) ListItems(ctx context.Context, adID uuid.UUID) ([]*types.Item, error) {
	return s.itemRepo.ListByAdvertisement(ctx, nil, adID)
}

func (s *advertisementService) ConfirmMatch(ctx context.Context, itemID uuid.UUID, kind repos.SuggestionKind, suggestionID uuid.UUID) error {
	item, err := s.itemRepo.GetByID(ctx, nil, itemID)
	if err != nil {
		return err
	}
	if item == nil {
		return fmt.Errorf("item %s not found", itemID)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.suggestionRepo.MarkMatched(ctx, tx, kind, suggestionID); err != nil {
			return err
		}
		return s.itemRepo.SetMatched(ctx, tx, itemID, true)
	})
}

func (s *advertisementService) Unmatch(ctx context.Context, itemID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.suggestionRepo.ClearMatchedForItem(ctx, tx, itemID); err != nil {
			return err
		}
		return s.itemRepo.SetMatched(ctx, tx, itemID, false)
	})
}

func (s *advertisementService) FinishLater(ctx context.Context, id uuid.UUID) (*AdvertisementView, error) {
	counts, err := s.adRepo.MatchCounts(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	pct := matchPercentage(counts.MatchedItems, counts.TotalItems)
	status := types.AdvertisementStatusNeedsReview
	if pct == 100 {
		status = types.AdvertisementStatusCompleted
	}
	if err := s.adRepo.UpdateFields(ctx, nil, id, map[string]interface{}{
		"match_percentage": pct,
		"status":           status,
	}); err != nil {
		return nil, err
	}
	return s.GetWithMatchStats(ctx, id)
}

func (s *advertisementService) MarkComplete(ctx context.Context, id uuid.UUID) (*AdvertisementView, error) {
	if err := s.adRepo.UpdateFields(ctx, nil, id, map[string]interface{}{
		"match_percentage": 100,
		"status":           types.AdvertisementStatusCompleted,
	}); err != nil {
		return nil, err
	}
	return s.GetWithMatchStats(ctx, id)
}

func (s *advertisementService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.adRepo.Delete(ctx, nil, id); err != nil {
		return err
	}
	// Blob cleanup is best-effort; orphaned objects under the prefix are
	// harmless and re-deletable.
	if err := s.bucket.DeletePrefix(ctx, fmt.Sprintf("ads/%s", id)); err != nil {
		s.log.Warn("Blob cleanup failed", "advertisement_id", id, "error", err)
	}
	return nil
}

// matchPercentage rounds 100·matched/total to the nearest integer. An
// advertisement with no items reviews at 0.
func matchPercentage(matched, total int64) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(matched) / float64(total) * 100))
}
