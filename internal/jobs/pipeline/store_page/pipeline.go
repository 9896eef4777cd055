package store_page

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/admatch-backend/internal/jobs/payload"
	jobrt "github.com/yungbote/admatch-backend/internal/jobs/runtime"
	"github.com/yungbote/admatch-backend/internal/types"
)

func (p *Pipeline) Run(jc *jobrt.Context) error {
	if jc == nil || jc.Job == nil {
		return nil
	}
	var in payload.StorePage
	if err := jc.Decode(&in); err != nil {
		jc.Fail("validate", fmt.Errorf("decode payload: %w", err))
		return nil
	}
	if in.AdvertisementID == uuid.Nil || len(in.Image.Data) == 0 {
		jc.Fail("validate", fmt.Errorf("missing advertisement_id or image"))
		return nil
	}

	rawEntries, err := json.Marshal(in.Entries)
	if err != nil {
		jc.Fail("validate", fmt.Errorf("marshal entries: %w", err))
		return nil
	}

	// Page, items and match fan-out in one transaction. The page upsert keys
	// on (advertisement_id, page_number) and the item ids are uuid5 of
	// (page id, entry index), so a redelivered job converges on the same rows.
	jc.Progress("persist")
	adID := in.AdvertisementID
	var page *types.Page
	err = p.db.WithContext(jc.Ctx).Transaction(func(tx *gorm.DB) error {
		var txErr error
		page, txErr = p.pageRepo.Upsert(jc.Ctx, tx, &types.Page{
			ID:              uuid.New(),
			AdvertisementID: adID,
			PageNumber:      in.Index + 1,
			RawEntries:      datatypes.JSON(rawEntries),
		})
		if txErr != nil {
			return txErr
		}
		items := make([]*types.Item, 0, len(in.Entries))
		for i, entry := range in.Entries {
			items = append(items, &types.Item{
				ID:          uuid.NewSHA1(page.ID, []byte(fmt.Sprintf("item:%d", i))),
				PageID:      page.ID,
				Description: entry.Name,
				ListPrice:   entry.Price,
				PromoPrice:  entry.Price,
			})
		}
		if _, txErr = p.itemRepo.BulkUpsert(jc.Ctx, tx, items); txErr != nil {
			return txErr
		}
		for _, item := range items {
			itemID := item.ID
			if _, txErr = p.jobs.Enqueue(jc.Ctx, tx, payload.TypeMatchItem, "item", &itemID, payload.MatchItem{
				ItemID: itemID,
			}); txErr != nil {
				return txErr
			}
		}
		return nil
	})
	if err != nil {
		jc.Retry("persist", err)
		return nil
	}

	jc.Progress("upload")
	key := fmt.Sprintf("ads/%s/images/%s", adID, page.ID)
	if err := p.bucket.UploadFile(jc.Ctx, key, in.Image.Data, in.Image.Mime); err != nil {
		// The DB rows are committed; a redelivery re-runs the transaction as a
		// no-op and retries only this upload.
		jc.Retry("upload", err)
		return nil
	}

	// Completion check against a fresh count. The conditional status update
	// ensures only one of N racing page jobs performs the flip.
	jc.Progress("complete_check")
	ad, err := p.adRepo.GetByID(jc.Ctx, nil, adID)
	if err != nil {
		jc.Retry("complete_check", err)
		return nil
	}
	if ad == nil {
		jc.Fail("complete_check", fmt.Errorf("advertisement %s gone", adID))
		return nil
	}
	pageCount, err := p.pageRepo.CountByAdvertisement(jc.Ctx, nil, adID)
	if err != nil {
		jc.Retry("complete_check", err)
		return nil
	}
	flipped := false
	if ad.TotalPages > 0 && pageCount >= int64(ad.TotalPages) {
		flipped, err = p.adRepo.TransitionToNeedsReview(jc.Ctx, nil, adID)
		if err != nil {
			jc.Retry("complete_check", err)
			return nil
		}
		if flipped && p.notify != nil {
			p.notify.AdvertisementReady(adID)
		}
	}

	jc.Succeed("done", map[string]any{
		"advertisement_id": adID.String(),
		"page_id":          page.ID.String(),
		"page_number":      in.Index + 1,
		"items":            len(in.Entries),
		"all_pages_landed": flipped,
	})
	return nil
}
