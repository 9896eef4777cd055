package match_item

import (
	"fmt"
	"math"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/admatch-backend/internal/jobs/payload"
	jobrt "github.com/yungbote/admatch-backend/internal/jobs/runtime"
	"github.com/yungbote/admatch-backend/internal/types"
)

func (p *Pipeline) Run(jc *jobrt.Context) error {
	if jc == nil || jc.Job == nil {
		return nil
	}
	var in payload.MatchItem
	if err := jc.Decode(&in); err != nil {
		jc.Fail("validate", fmt.Errorf("decode payload: %w", err))
		return nil
	}
	if in.ItemID == uuid.Nil {
		jc.Fail("validate", fmt.Errorf("missing item_id"))
		return nil
	}

	jc.Progress("load")
	item, err := p.itemRepo.GetByID(jc.Ctx, nil, in.ItemID)
	if err != nil {
		jc.Retry("load", err)
		return nil
	}
	if item == nil {
		// The advertisement was deleted between fan-out and now.
		jc.Fail("load", fmt.Errorf("item %s gone", in.ItemID))
		return nil
	}

	// A matcher failure never blocks the pipeline: the item just carries no
	// suggestions and shows up unmatched in review.
	jc.Progress("match")
	if err := p.match(jc, item); err != nil {
		p.log.Warn("Matching failed, item left unmatched",
			"item_id", item.ID, "error", err)
		jc.Succeed("done", map[string]any{
			"item_id":     item.ID.String(),
			"suggestions": 0,
			"match_error": err.Error(),
		})
		return nil
	}

	jc.Succeed("done", map[string]any{
		"item_id": item.ID.String(),
	})
	return nil
}

func (p *Pipeline) match(jc *jobrt.Context, item *types.Item) error {
	query := item.Description

	products, err := p.catalogRepo.SimilarProducts(jc.Ctx, nil, query, suggestionLimit)
	if err != nil {
		return fmt.Errorf("product lookup: %w", err)
	}
	groups, err := p.catalogRepo.SimilarProductGroups(jc.Ctx, nil, query, suggestionLimit)
	if err != nil {
		return fmt.Errorf("product group lookup: %w", err)
	}
	brands, err := p.catalogRepo.SimilarBrands(jc.Ctx, nil, query, suggestionLimit)
	if err != nil {
		return fmt.Errorf("brand lookup: %w", err)
	}

	productRows := make([]*types.ProductSuggestion, 0, len(products))
	for _, c := range products {
		productRows = append(productRows, &types.ProductSuggestion{
			ID:        uuid.New(),
			ItemID:    item.ID,
			ProductID: c.ID,
			Score:     roundScore(c.Score),
		})
	}
	groupRows := make([]*types.ProductGroupSuggestion, 0, len(groups))
	for _, c := range groups {
		groupRows = append(groupRows, &types.ProductGroupSuggestion{
			ID:             uuid.New(),
			ItemID:         item.ID,
			ProductGroupID: c.ID,
			Score:          roundScore(c.Score),
		})
	}
	brandRows := make([]*types.BrandSuggestion, 0, len(brands))
	for _, c := range brands {
		brandRows = append(brandRows, &types.BrandSuggestion{
			ID:      uuid.New(),
			ItemID:  item.ID,
			BrandID: c.ID,
			Score:   roundScore(c.Score),
		})
	}

	return p.db.WithContext(jc.Ctx).Transaction(func(tx *gorm.DB) error {
		if err := p.suggestionRepo.UpsertProductSuggestions(jc.Ctx, tx, productRows); err != nil {
			return err
		}
		if err := p.suggestionRepo.UpsertProductGroupSuggestions(jc.Ctx, tx, groupRows); err != nil {
			return err
		}
		return p.suggestionRepo.UpsertBrandSuggestions(jc.Ctx, tx, brandRows)
	})
}

// roundScore fits a similarity in [0,1] into the numeric(4,2) score column.
func roundScore(s float64) float64 {
	return math.Round(s*100) / 100
}
