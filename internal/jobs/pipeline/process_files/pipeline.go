package process_files

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/admatch-backend/internal/jobs/payload"
	jobrt "github.com/yungbote/admatch-backend/internal/jobs/runtime"
	"github.com/yungbote/admatch-backend/internal/media"
)

// batchKind classifies an upload batch. A batch that mixes PDFs with images
// is normalized from its PDF: the PDF already fixes the page set and order,
// so it becomes the canonical document and the loose images are dropped.
type batchKind int

const (
	batchInvalid batchKind = iota
	batchPDFs
	batchImages
	batchMixed
)

func classify(files []payload.FileBlob) (batchKind, error) {
	if len(files) == 0 {
		return batchInvalid, fmt.Errorf("empty batch")
	}
	pdfs, images := 0, 0
	for _, f := range files {
		switch {
		case f.Mime == "application/pdf":
			pdfs++
		case strings.HasPrefix(f.Mime, "image/"):
			images++
		default:
			return batchInvalid, fmt.Errorf("unsupported file type %q", f.Mime)
		}
	}
	switch {
	case pdfs > 0 && images > 0:
		return batchMixed, nil
	case pdfs > 0:
		return batchPDFs, nil
	default:
		return batchImages, nil
	}
}

// pdfDocs returns the PDF members of the batch, in upload order.
func pdfDocs(files []payload.FileBlob) [][]byte {
	docs := make([][]byte, 0, len(files))
	for _, f := range files {
		if f.Mime == "application/pdf" {
			docs = append(docs, f.Data)
		}
	}
	return docs
}

func (p *Pipeline) Run(jc *jobrt.Context) error {
	if jc == nil || jc.Job == nil {
		return nil
	}
	var in payload.ProcessFiles
	if err := jc.Decode(&in); err != nil {
		jc.Fail("validate", fmt.Errorf("decode payload: %w", err))
		return nil
	}
	if in.AdvertisementID == uuid.Nil {
		jc.Fail("validate", fmt.Errorf("missing advertisement_id"))
		return nil
	}
	kind, err := classify(in.Files)
	if err != nil {
		jc.Fail("validate", err)
		return nil
	}

	// Normalize to one canonical PDF plus one image per page. Malformed input
	// is terminal: retrying the same bytes cannot succeed.
	jc.Progress("normalize")
	var pdf []byte
	var pages []payload.FileBlob
	switch kind {
	case batchPDFs, batchMixed:
		pdf, err = media.MergePDFs(pdfDocs(in.Files))
		if err != nil {
			jc.Fail("normalize", err)
			return nil
		}
		rasters, rErr := media.RasterizePDF(pdf)
		if rErr != nil {
			jc.Fail("normalize", rErr)
			return nil
		}
		for _, img := range rasters {
			pages = append(pages, payload.FileBlob{
				Data: img,
				Mime: media.RasterMime,
				Size: int64(len(img)),
			})
		}
	case batchImages:
		// Each uploaded image is one page, in upload order.
		images := make([][]byte, 0, len(in.Files))
		for _, f := range in.Files {
			images = append(images, f.Data)
		}
		pdf, err = media.ImagesToPDF(images)
		if err != nil {
			jc.Fail("normalize", err)
			return nil
		}
		pages = in.Files
	}

	// One transaction: the page count and every fan-out job land together or
	// not at all, so a crash here can never leave a half-enqueued ad.
	jc.Progress("fanout")
	adID := in.AdvertisementID
	err = p.db.WithContext(jc.Ctx).Transaction(func(tx *gorm.DB) error {
		if err := p.adRepo.SetTotalPages(jc.Ctx, tx, adID, len(pages)); err != nil {
			return err
		}
		if _, err := p.jobs.Enqueue(jc.Ctx, tx, payload.TypeStorePDF, "advertisement", &adID, payload.StorePDF{
			AdvertisementID: adID,
			PDF: payload.FileBlob{
				Data: pdf,
				Mime: "application/pdf",
				Size: int64(len(pdf)),
			},
		}); err != nil {
			return err
		}
		for i, page := range pages {
			if _, err := p.jobs.Enqueue(jc.Ctx, tx, payload.TypeScanPage, "advertisement", &adID, payload.ScanPage{
				AdvertisementID: adID,
				Image:           page,
				Index:           i,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		jc.Retry("fanout", err)
		return nil
	}

	jc.Succeed("done", map[string]any{
		"advertisement_id": adID.String(),
		"total_pages":      len(pages),
	})
	return nil
}
