package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/admatch-backend/internal/types"
)

func SeedRetailer(tb testing.TB, ctx context.Context, tx *gorm.DB, name string) *types.Retailer {
	tb.Helper()
	r := &types.Retailer{
		ID:   uuid.New(),
		Name: name,
	}
	if err := tx.WithContext(ctx).Create(r).Error; err != nil {
		tb.Fatalf("seed retailer: %v", err)
	}
	return r
}

func SeedAdvertisement(tb testing.TB, ctx context.Context, tx *gorm.DB, retailerID uuid.UUID, totalPages int) *types.Advertisement {
	tb.Helper()
	ad := &types.Advertisement{
		ID:         uuid.New(),
		RetailerID: retailerID,
		TotalPages: totalPages,
		Status:     types.AdvertisementStatusIntake,
	}
	if err := tx.WithContext(ctx).Create(ad).Error; err != nil {
		tb.Fatalf("seed advertisement: %v", err)
	}
	return ad
}

func SeedPage(tb testing.TB, ctx context.Context, tx *gorm.DB, adID uuid.UUID, pageNumber int) *types.Page {
	tb.Helper()
	p := &types.Page{
		ID:              uuid.New(),
		AdvertisementID: adID,
		PageNumber:      pageNumber,
		RawEntries:      datatypes.JSON([]byte("[]")),
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed page: %v", err)
	}
	return p
}

func SeedItem(tb testing.TB, ctx context.Context, tx *gorm.DB, pageID uuid.UUID, description string) *types.Item {
	tb.Helper()
	it := &types.Item{
		ID:          uuid.New(),
		PageID:      pageID,
		Description: description,
		ListPrice:   1.99,
		PromoPrice:  1.99,
	}
	if err := tx.WithContext(ctx).Create(it).Error; err != nil {
		tb.Fatalf("seed item: %v", err)
	}
	return it
}

func SeedProduct(tb testing.TB, ctx context.Context, tx *gorm.DB, name string) *types.Product {
	tb.Helper()
	p := &types.Product{ID: uuid.New(), Name: name}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed product: %v", err)
	}
	return p
}

func SeedBrand(tb testing.TB, ctx context.Context, tx *gorm.DB, name string) *types.Brand {
	tb.Helper()
	b := &types.Brand{ID: uuid.New(), Name: name}
	if err := tx.WithContext(ctx).Create(b).Error; err != nil {
		tb.Fatalf("seed brand: %v", err)
	}
	return b
}

// UniqueName avoids collisions with rows left by other test databases.
func UniqueName(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, uuid.NewString()[:8])
}
