package types

import (
	"time"

	"github.com/google/uuid"
)

// Match suggestions, one table per candidate kind. The composite unique
// index on (item_id, candidate id) is what makes matcher redelivery refresh
// scores instead of accumulating duplicates.

type ProductSuggestion struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ItemID    uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:uq_product_suggestion" json:"item_id"`
	Item      *Item     `gorm:"constraint:OnDelete:CASCADE;foreignKey:ItemID;references:ID" json:"item,omitempty"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_product_suggestion" json:"product_id"`
	Product   *Product  `gorm:"constraint:OnDelete:CASCADE;foreignKey:ProductID;references:ID" json:"product,omitempty"`
	Score     float64   `gorm:"column:score;type:numeric(4,2);not null;default:0" json:"score"`
	Matched   bool      `gorm:"column:matched;not null;default:false" json:"matched"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (ProductSuggestion) TableName() string { return "product_suggestion" }

type ProductGroupSuggestion struct {
	ID             uuid.UUID     `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ItemID         uuid.UUID     `gorm:"type:uuid;not null;index;uniqueIndex:uq_product_group_suggestion" json:"item_id"`
	Item           *Item         `gorm:"constraint:OnDelete:CASCADE;foreignKey:ItemID;references:ID" json:"item,omitempty"`
	ProductGroupID uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex:uq_product_group_suggestion" json:"product_group_id"`
	ProductGroup   *ProductGroup `gorm:"constraint:OnDelete:CASCADE;foreignKey:ProductGroupID;references:ID" json:"product_group,omitempty"`
	Score          float64       `gorm:"column:score;type:numeric(4,2);not null;default:0" json:"score"`
	Matched        bool          `gorm:"column:matched;not null;default:false" json:"matched"`
	CreatedAt      time.Time     `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt      time.Time     `gorm:"not null;default:now()" json:"updated_at"`
}

func (ProductGroupSuggestion) TableName() string { return "product_group_suggestion" }

type BrandSuggestion struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ItemID    uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:uq_brand_suggestion" json:"item_id"`
	Item      *Item     `gorm:"constraint:OnDelete:CASCADE;foreignKey:ItemID;references:ID" json:"item,omitempty"`
	BrandID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_brand_suggestion" json:"brand_id"`
	Brand     *Brand    `gorm:"constraint:OnDelete:CASCADE;foreignKey:BrandID;references:ID" json:"brand,omitempty"`
	Score     float64   `gorm:"column:score;type:numeric(4,2);not null;default:0" json:"score"`
	Matched   bool      `gorm:"column:matched;not null;default:false" json:"matched"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (BrandSuggestion) TableName() string { return "brand_suggestion" }
