package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/admatch-backend/internal/platform/logger"
	"github.com/yungbote/admatch-backend/internal/types"
)

type PageRepo interface {
	// Upsert creates the page or, when a row for the same
	// (advertisement_id, page_number) already exists from a redelivered job,
	// returns that existing row untouched.
	Upsert(ctx context.Context, tx *gorm.DB, page *types.Page) (*types.Page, error)
	GetByAdvertisementAndNumber(ctx context.Context, tx *gorm.DB, adID uuid.UUID, pageNumber int) (*types.Page, error)
	CountByAdvertisement(ctx context.Context, tx *gorm.DB, adID uuid.UUID) (int64, error)
}

type pageRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPageRepo(db *gorm.DB, baseLog *logger.Logger) PageRepo {
	return &pageRepo{
		db:  db,
		log: baseLog.With("repo", "PageRepo"),
	}
}

func (r *pageRepo) Upsert(ctx context.Context, tx *gorm.DB, page *types.Page) (*types.Page, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if page.ID == uuid.Nil {
		page.ID = uuid.New()
	}
	res := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "advertisement_id"}, {Name: "page_number"}},
			DoNothing: true,
		}).
		Create(page)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 1 {
		return page, nil
	}
	// Conflict: the page landed on a previous delivery. Use the stored row so
	// downstream keys (blob key = page id) stay stable.
	return r.GetByAdvertisementAndNumber(ctx, transaction, page.AdvertisementID, page.PageNumber)
}

func (r *pageRepo) GetByAdvertisementAndNumber(ctx context.Context, tx *gorm.DB, adID uuid.UUID, pageNumber int) (*types.Page, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var page types.Page
	err := transaction.WithContext(ctx).
		Where("advertisement_id = ? AND page_number = ?", adID, pageNumber).
		Limit(1).
		Find(&page).Error
	if err != nil {
		return nil, err
	}
	if page.ID == uuid.Nil {
		return nil, nil
	}
	return &page, nil
}

func (r *pageRepo) CountByAdvertisement(ctx context.Context, tx *gorm.DB, adID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	err := transaction.WithContext(ctx).
		Model(&types.Page{}).
		Where("advertisement_id = ?", adID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
