package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/admatch-backend/internal/platform/logger"
	"github.com/yungbote/admatch-backend/internal/types"
)

// MatchCounts is the aggregate item match state of one advertisement,
// always computed fresh by the database.
type MatchCounts struct {
	TotalItems   int64 `json:"total_items"`
	MatchedItems int64 `json:"matched_items"`
}

type AdvertisementRepo interface {
	Create(ctx context.Context, tx *gorm.DB, ad *types.Advertisement) (*types.Advertisement, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Advertisement, error)
	SetTotalPages(ctx context.Context, tx *gorm.DB, id uuid.UUID, totalPages int) error
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
	// TransitionToNeedsReview flips intake -> needs_review and reports whether
	// this call performed the flip. The conditional update is what keeps the
	// transition exactly-once under concurrent page completions.
	TransitionToNeedsReview(ctx context.Context, tx *gorm.DB, id uuid.UUID) (bool, error)
	MatchCounts(ctx context.Context, tx *gorm.DB, id uuid.UUID) (MatchCounts, error)
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type advertisementRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAdvertisementRepo(db *gorm.DB, baseLog *logger.Logger) AdvertisementRepo {
	return &advertisementRepo{
		db:  db,
		log: baseLog.With("repo", "AdvertisementRepo"),
	}
}

func (r *advertisementRepo) Create(ctx context.Context, tx *gorm.DB, ad *types.Advertisement) (*types.Advertisement, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(ad).Error; err != nil {
		return nil, err
	}
	return ad, nil
}

func (r *advertisementRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Advertisement, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var ad types.Advertisement
	err := transaction.WithContext(ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&ad).Error
	if err != nil {
		return nil, err
	}
	if ad.ID == uuid.Nil {
		return nil, nil
	}
	return &ad, nil
}

func (r *advertisementRepo) SetTotalPages(ctx context.Context, tx *gorm.DB, id uuid.UUID, totalPages int) error {
	return r.UpdateFields(ctx, tx, id, map[string]interface{}{
		"total_pages": totalPages,
	})
}

func (r *advertisementRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now()
	}
	return transaction.WithContext(ctx).
		Model(&types.Advertisement{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *advertisementRepo) TransitionToNeedsReview(ctx context.Context, tx *gorm.DB, id uuid.UUID) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return false, nil
	}
	res := transaction.WithContext(ctx).
		Model(&types.Advertisement{}).
		Where("id = ? AND status = ?", id, types.AdvertisementStatusIntake).
		Updates(map[string]interface{}{
			"status":     types.AdvertisementStatusNeedsReview,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *advertisementRepo) MatchCounts(ctx context.Context, tx *gorm.DB, id uuid.UUID) (MatchCounts, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var counts MatchCounts
	err := transaction.WithContext(ctx).Raw(`
		SELECT
			COUNT(*)                                      AS total_items,
			COUNT(*) FILTER (WHERE item.matched)          AS matched_items
		FROM item
		JOIN page ON page.id = item.page_id
		WHERE page.advertisement_id = ?
	`, id).Scan(&counts).Error
	if err != nil {
		return MatchCounts{}, err
	}
	return counts, nil
}

func (r *advertisementRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	return transaction.WithContext(ctx).
		Where("id = ?", id).
		Delete(&types.Advertisement{}).Error
}
