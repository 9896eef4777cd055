package scan_page

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/admatch-backend/internal/jobs/payload"
	jobrt "github.com/yungbote/admatch-backend/internal/jobs/runtime"
	"github.com/yungbote/admatch-backend/internal/platform/openai"
)

func (p *Pipeline) Run(jc *jobrt.Context) error {
	if jc == nil || jc.Job == nil {
		return nil
	}
	var in payload.ScanPage
	if err := jc.Decode(&in); err != nil {
		jc.Fail("validate", fmt.Errorf("decode payload: %w", err))
		return nil
	}
	if in.AdvertisementID == uuid.Nil || len(in.Image.Data) == 0 {
		jc.Fail("validate", fmt.Errorf("missing advertisement_id or image"))
		return nil
	}

	// The oracle client already retries transient upstream errors internally.
	// An error surfacing here means the page is not extractable; the page is
	// dropped and the advertisement stays visibly short of total_pages.
	jc.Progress("extract")
	raw, err := p.oracle.ExtractListings(jc.Ctx, in.Image.Data, in.Image.Mime)
	if err != nil {
		jc.Fail("extract", err)
		return nil
	}

	entries := cleanEntries(raw)

	jc.Progress("handoff")
	adID := in.AdvertisementID
	if _, err := p.jobs.Enqueue(jc.Ctx, nil, payload.TypeStorePage, "advertisement", &adID, payload.StorePage{
		AdvertisementID: adID,
		Image:           in.Image,
		Index:           in.Index,
		Entries:         entries,
	}); err != nil {
		jc.Retry("handoff", err)
		return nil
	}

	jc.Succeed("done", map[string]any{
		"advertisement_id": adID.String(),
		"page_index":       in.Index,
		"entries":          len(entries),
	})
	return nil
}

func cleanEntries(raw []openai.RawEntry) []payload.ScannedEntry {
	out := make([]payload.ScannedEntry, 0, len(raw))
	for _, e := range raw {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			continue
		}
		out = append(out, payload.ScannedEntry{
			Name:     name,
			Price:    parsePrice(e.Price),
			Discount: trimPtr(e.Discount),
			Brand:    trimPtr(e.Brand),
		})
	}
	return out
}

// parsePrice coerces whatever the oracle put in the price slot to a usable
// amount. Numbers pass through; numeric strings (including "2,49" and values
// wearing a currency symbol) are parsed; everything else becomes 0.
func parsePrice(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return sanitizePrice(f)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0
	}
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-':
			return r
		case r == ',':
			return '.'
		default:
			return -1
		}
	}, s)
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return sanitizePrice(v)
}

func sanitizePrice(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
