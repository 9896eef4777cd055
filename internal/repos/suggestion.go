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

// SuggestionKind discriminates the three parallel suggestion tables.
type SuggestionKind string

const (
	SuggestionKindProduct      SuggestionKind = "product"
	SuggestionKindProductGroup SuggestionKind = "product_group"
	SuggestionKindBrand        SuggestionKind = "brand"
)

type SuggestionRepo interface {
	// The upserts conflict on (item_id, candidate id) and refresh the score
	// only, so re-running the matcher never accumulates duplicate rows.
	UpsertProductSuggestions(ctx context.Context, tx *gorm.DB, rows []*types.ProductSuggestion) error
	UpsertProductGroupSuggestions(ctx context.Context, tx *gorm.DB, rows []*types.ProductGroupSuggestion) error
	UpsertBrandSuggestions(ctx context.Context, tx *gorm.DB, rows []*types.BrandSuggestion) error
	MarkMatched(ctx context.Context, tx *gorm.DB, kind SuggestionKind, suggestionID uuid.UUID) error
	ClearMatchedForItem(ctx context.Context, tx *gorm.DB, itemID uuid.UUID) error
}

type suggestionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSuggestionRepo(db *gorm.DB, baseLog *logger.Logger) SuggestionRepo {
	return &suggestionRepo{
		db:  db,
		log: baseLog.With("repo", "SuggestionRepo"),
	}
}

func (r *suggestionRepo) UpsertProductSuggestions(ctx context.Context, tx *gorm.DB, rows []*types.ProductSuggestion) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(rows) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "item_id"}, {Name: "product_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"score", "updated_at"}),
		}).
		Create(&rows).Error
}

func (r *suggestionRepo) UpsertProductGroupSuggestions(ctx context.Context, tx *gorm.DB, rows []*types.ProductGroupSuggestion) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(rows) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "item_id"}, {Name: "product_group_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"score", "updated_at"}),
		}).
		Create(&rows).Error
}

func (r *suggestionRepo) UpsertBrandSuggestions(ctx context.Context, tx *gorm.DB, rows []*types.BrandSuggestion) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(rows) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "item_id"}, {Name: "brand_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"score", "updated_at"}),
		}).
		Create(&rows).Error
}

func (r *suggestionRepo) MarkMatched(ctx context.Context, tx *gorm.DB, kind SuggestionKind, suggestionID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if suggestionID == uuid.Nil {
		return nil
	}
	updates := map[string]interface{}{
		"matched":    true,
		"updated_at": time.Now(),
	}
	switch kind {
	case SuggestionKindProduct:
		return transaction.WithContext(ctx).Model(&types.ProductSuggestion{}).
			Where("id = ?", suggestionID).Updates(updates).Error
	case SuggestionKindProductGroup:
		return transaction.WithContext(ctx).Model(&types.ProductGroupSuggestion{}).
			Where("id = ?", suggestionID).Updates(updates).Error
	case SuggestionKindBrand:
		return transaction.WithContext(ctx).Model(&types.BrandSuggestion{}).
			Where("id = ?", suggestionID).Updates(updates).Error
	default:
		return gorm.ErrInvalidData
	}
}

func (r *suggestionRepo) ClearMatchedForItem(ctx context.Context, tx *gorm.DB, itemID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if itemID == uuid.Nil {
		return nil
	}
	now := time.Now()
	updates := map[string]interface{}{
		"matched":    false,
		"updated_at": now,
	}
	if err := transaction.WithContext(ctx).Model(&types.ProductSuggestion{}).
		Where("item_id = ? AND matched", itemID).Updates(updates).Error; err != nil {
		return err
	}
	if err := transaction.WithContext(ctx).Model(&types.ProductGroupSuggestion{}).
		Where("item_id = ? AND matched", itemID).Updates(updates).Error; err != nil {
		return err
	}
	return transaction.WithContext(ctx).Model(&types.BrandSuggestion{}).
		Where("item_id = ? AND matched", itemID).Updates(updates).Error
}
