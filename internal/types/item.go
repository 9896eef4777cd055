package types

import (
	"time"

	"github.com/google/uuid"
)

// Item is one product-listing line extracted from a page. Item ids are
// deterministic (uuid5 of page id + entry index) so that redelivered
// store_page jobs upsert the same rows.
type Item struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PageID uuid.UUID `gorm:"type:uuid;not null;index" json:"page_id"`
	Page   *Page     `gorm:"constraint:OnDelete:CASCADE;foreignKey:PageID;references:ID" json:"page,omitempty"`

	Description string `gorm:"column:description;not null" json:"description"`

	// Both prices equal the extracted price at creation time; a later review
	// workflow may diverge them.
	ListPrice  float64 `gorm:"column:list_price;type:numeric(12,2);not null;default:0" json:"list_price"`
	PromoPrice float64 `gorm:"column:promo_price;type:numeric(12,2);not null;default:0" json:"promo_price"`

	Matched bool `gorm:"column:matched;not null;default:false" json:"matched"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`

	ProductSuggestions      []ProductSuggestion      `gorm:"foreignKey:ItemID" json:"product_suggestions,omitempty"`
	ProductGroupSuggestions []ProductGroupSuggestion `gorm:"foreignKey:ItemID" json:"product_group_suggestions,omitempty"`
	BrandSuggestions        []BrandSuggestion        `gorm:"foreignKey:ItemID" json:"brand_suggestions,omitempty"`
}

func (Item) TableName() string { return "item" }
