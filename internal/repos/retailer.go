package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/admatch-backend/internal/platform/logger"
	"github.com/yungbote/admatch-backend/internal/types"
)

type RetailerRepo interface {
	Create(ctx context.Context, tx *gorm.DB, retailer *types.Retailer) (*types.Retailer, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Retailer, error)
}

type retailerRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRetailerRepo(db *gorm.DB, baseLog *logger.Logger) RetailerRepo {
	return &retailerRepo{
		db:  db,
		log: baseLog.With("repo", "RetailerRepo"),
	}
}

func (r *retailerRepo) Create(ctx context.Context, tx *gorm.DB, retailer *types.Retailer) (*types.Retailer, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(retailer).Error; err != nil {
		return nil, err
	}
	return retailer, nil
}

func (r *retailerRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Retailer, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var retailer types.Retailer
	err := transaction.WithContext(ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&retailer).Error
	if err != nil {
		return nil, err
	}
	if retailer.ID == uuid.Nil {
		return nil, nil
	}
	return &retailer, nil
}
