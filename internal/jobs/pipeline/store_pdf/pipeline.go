package store_pdf

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/yungbote/admatch-backend/internal/jobs/payload"
	jobrt "github.com/yungbote/admatch-backend/internal/jobs/runtime"
)

func (p *Pipeline) Run(jc *jobrt.Context) error {
	if jc == nil || jc.Job == nil {
		return nil
	}
	var in payload.StorePDF
	if err := jc.Decode(&in); err != nil {
		jc.Fail("validate", fmt.Errorf("decode payload: %w", err))
		return nil
	}
	if in.AdvertisementID == uuid.Nil || len(in.PDF.Data) == 0 {
		jc.Fail("validate", fmt.Errorf("missing advertisement_id or pdf"))
		return nil
	}

	// The key is deterministic, so a redelivered job overwrites the same
	// object with the same bytes.
	key := fmt.Sprintf("ads/%s", in.AdvertisementID)
	jc.Progress("upload")
	if err := p.bucket.UploadFile(jc.Ctx, key, in.PDF.Data, "application/pdf"); err != nil {
		jc.Retry("upload", err)
		return nil
	}

	jc.Succeed("done", map[string]any{
		"advertisement_id": in.AdvertisementID.String(),
		"key":              key,
		"bytes":            len(in.PDF.Data),
	})
	return nil
}
