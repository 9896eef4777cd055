package repos

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/admatch-backend/internal/repos/testutil"
	"github.com/yungbote/admatch-backend/internal/types"
)

func TestProductSuggestionUpsertRefreshesScore(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	retailer := testutil.SeedRetailer(t, ctx, tx, testutil.UniqueName("retailer"))
	ad := testutil.SeedAdvertisement(t, ctx, tx, retailer.ID, 1)
	page := testutil.SeedPage(t, ctx, tx, ad.ID, 1)
	item := testutil.SeedItem(t, ctx, tx, page.ID, "Oat Flakes")
	product := testutil.SeedProduct(t, ctx, tx, testutil.UniqueName("Oat Flakes"))

	repo := NewSuggestionRepo(db, testutil.Logger(t))

	if err := repo.UpsertProductSuggestions(ctx, tx, []*types.ProductSuggestion{{
		ID:        uuid.New(),
		ItemID:    item.ID,
		ProductID: product.ID,
		Score:     0.42,
	}}); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	// Matcher redelivery: same (item, product), new score. Must update in
	// place, not add a second row.
	if err := repo.UpsertProductSuggestions(ctx, tx, []*types.ProductSuggestion{{
		ID:        uuid.New(),
		ItemID:    item.ID,
		ProductID: product.ID,
		Score:     0.57,
	}}); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	var rows []types.ProductSuggestion
	if err := tx.WithContext(ctx).Where("item_id = ?", item.ID).Find(&rows).Error; err != nil {
		t.Fatalf("load suggestions: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("suggestion rows = %d, want 1", len(rows))
	}
	if rows[0].Score != 0.57 {
		t.Fatalf("score = %v, want refreshed 0.57", rows[0].Score)
	}
}

func TestMarkMatchedAndClear(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	retailer := testutil.SeedRetailer(t, ctx, tx, testutil.UniqueName("retailer"))
	ad := testutil.SeedAdvertisement(t, ctx, tx, retailer.ID, 1)
	page := testutil.SeedPage(t, ctx, tx, ad.ID, 1)
	item := testutil.SeedItem(t, ctx, tx, page.ID, "Butter")
	brand := testutil.SeedBrand(t, ctx, tx, testutil.UniqueName("Dairyco"))

	repo := NewSuggestionRepo(db, testutil.Logger(t))

	sug := &types.BrandSuggestion{
		ID:      uuid.New(),
		ItemID:  item.ID,
		BrandID: brand.ID,
		Score:   0.9,
	}
	if err := repo.UpsertBrandSuggestions(ctx, tx, []*types.BrandSuggestion{sug}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	var stored types.BrandSuggestion
	if err := tx.WithContext(ctx).Where("item_id = ?", item.ID).First(&stored).Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := repo.MarkMatched(ctx, tx, SuggestionKindBrand, stored.ID); err != nil {
		t.Fatalf("mark matched: %v", err)
	}
	if err := tx.WithContext(ctx).Where("id = ?", stored.ID).First(&stored).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !stored.Matched {
		t.Fatal("suggestion not marked matched")
	}

	if err := repo.ClearMatchedForItem(ctx, tx, item.ID); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if err := tx.WithContext(ctx).Where("id = ?", stored.ID).First(&stored).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.Matched {
		t.Fatal("suggestion still matched after clear")
	}
}
