package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Page is one rasterized page of an advertisement. Created exactly once by
// the store_page job and never updated afterwards; the count of pages per
// advertisement is the durable "pages processed" counter.
type Page struct {
	ID              uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	AdvertisementID uuid.UUID      `gorm:"type:uuid;not null;index;uniqueIndex:uq_page_ad_number" json:"advertisement_id"`
	Advertisement   *Advertisement `gorm:"constraint:OnDelete:CASCADE;foreignKey:AdvertisementID;references:ID" json:"advertisement,omitempty"`

	// 1-based page index, unique within the advertisement. The unique index
	// makes store_page redelivery a no-op instead of a duplicate row.
	PageNumber int `gorm:"column:page_number;not null;uniqueIndex:uq_page_ad_number" json:"page_number"`

	// RawEntries keeps the extractor output verbatim for auditability even
	// after items are derived from it.
	RawEntries datatypes.JSON `gorm:"column:raw_entries;type:jsonb" json:"raw_entries"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Page) TableName() string { return "page" }
