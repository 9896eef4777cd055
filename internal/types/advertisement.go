package types

import (
	"time"

	"github.com/google/uuid"
)

// Advertisement lifecycle statuses. An advertisement starts in intake,
// moves to needs_review once every page job has landed, and reaches
// completed through the review boundary.
const (
	AdvertisementStatusIntake      = "intake"
	AdvertisementStatusNeedsReview = "needs_review"
	AdvertisementStatusCompleted   = "completed"
)

type Advertisement struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	RetailerID uuid.UUID `gorm:"type:uuid;not null;index" json:"retailer_id"`
	Retailer   *Retailer `gorm:"constraint:OnDelete:CASCADE;foreignKey:RetailerID;references:ID" json:"retailer,omitempty"`

	// TotalPages is written once by the ingest normalizer, before any page
	// job for this advertisement is enqueued. Completion detection compares
	// the live page count against it.
	TotalPages      int    `gorm:"column:total_pages;not null;default:0" json:"total_pages"`
	Status          string `gorm:"column:status;not null;default:'intake'" json:"status"`
	MatchPercentage int    `gorm:"column:match_percentage;not null;default:0" json:"match_percentage"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Advertisement) TableName() string { return "advertisement" }
