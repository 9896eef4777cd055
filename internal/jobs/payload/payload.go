// Package payload defines the typed job payloads carried on the work queue.
// Each job type has its own struct; the persist queue carries two explicit
// variants (store_pdf, store_page) rather than one probed-by-shape payload.
package payload

import "github.com/google/uuid"

// Job type names, also the registry keys.
const (
	TypeProcessFiles = "process_files"
	TypeScanPage     = "scan_page"
	TypeStorePDF     = "store_pdf"
	TypeStorePage    = "store_page"
	TypeMatchItem    = "match_item"
)

// Queue names.
const (
	QueueIngest  = "ingest"
	QueueScan    = "scan"
	QueuePersist = "persist"
	QueueMatch   = "match"
)

// FileBlob is one uploaded or derived file travelling through the pipeline.
// Data is base64 on the wire (encoding/json handles []byte transparently).
type FileBlob struct {
	Data []byte `json:"data"`
	Mime string `json:"mime"`
	Size int64  `json:"size"`
}

// ScannedEntry is one cleaned product-listing entry extracted from a page
// image. Price has already been coerced (garbage input becomes 0).
type ScannedEntry struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Discount *string `json:"discount"`
	Brand    *string `json:"brand"`
}

type ProcessFiles struct {
	AdvertisementID uuid.UUID  `json:"advertisement_id"`
	Files           []FileBlob `json:"files"`
}

type StorePDF struct {
	AdvertisementID uuid.UUID `json:"advertisement_id"`
	PDF             FileBlob  `json:"pdf"`
}

type ScanPage struct {
	AdvertisementID uuid.UUID `json:"advertisement_id"`
	Image           FileBlob  `json:"image"`
	// 0-based page index; the stored page number is Index+1.
	Index int `json:"index"`
}

type StorePage struct {
	AdvertisementID uuid.UUID      `json:"advertisement_id"`
	Image           FileBlob       `json:"image"`
	Index           int            `json:"index"`
	Entries         []ScannedEntry `json:"entries"`
}

type MatchItem struct {
	ItemID uuid.UUID `json:"item_id"`
}
