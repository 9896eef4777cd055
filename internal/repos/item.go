package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/admatch-backend/internal/platform/logger"
	"github.com/yungbote/admatch-backend/internal/types"
)

type ItemRepo interface {
	// BulkUpsert inserts all items in a single multi-row statement. Item ids
	// are deterministic per (page, entry index), so a redelivered store_page
	// job conflicts on the primary key and inserts nothing new.
	BulkUpsert(ctx context.Context, tx *gorm.DB, items []*types.Item) ([]*types.Item, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Item, error)
	ListByAdvertisement(ctx context.Context, tx *gorm.DB, adID uuid.UUID) ([]*types.Item, error)
	SetMatched(ctx context.Context, tx *gorm.DB, id uuid.UUID, matched bool) error
}

type itemRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewItemRepo(db *gorm.DB, baseLog *logger.Logger) ItemRepo {
	return &itemRepo{
		db:  db,
		log: baseLog.With("repo", "ItemRepo"),
	}
}

func (r *itemRepo) BulkUpsert(ctx context.Context, tx *gorm.DB, items []*types.Item) ([]*types.Item, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(items) == 0 {
		return []*types.Item{}, nil
	}
	err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoNothing: true,
		}).
		Create(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *itemRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Item, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var item types.Item
	err := transaction.WithContext(ctx).
		Preload("Page").
		Where("id = ?", id).
		Limit(1).
		Find(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == uuid.Nil {
		return nil, nil
	}
	return &item, nil
}

func (r *itemRepo) ListByAdvertisement(ctx context.Context, tx *gorm.DB, adID uuid.UUID) ([]*types.Item, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var items []*types.Item
	err := transaction.WithContext(ctx).
		Preload("ProductSuggestions.Product").
		Preload("ProductGroupSuggestions.ProductGroup").
		Preload("BrandSuggestions.Brand").
		Joins("JOIN page ON page.id = item.page_id").
		Where("page.advertisement_id = ?", adID).
		Order("page.page_number ASC, item.created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *itemRepo) SetMatched(ctx context.Context, tx *gorm.DB, id uuid.UUID, matched bool) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	return transaction.WithContext(ctx).
		Model(&types.Item{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"matched":    matched,
			"updated_at": time.Now(),
		}).Error
}
