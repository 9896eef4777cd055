// Package store_page persists one scanned page: the Page row with its raw
// extractor output, the derived Item rows, the page image blob, and the
// match job per item. It also detects when the last page of an advertisement
// has landed.
package store_page

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/admatch-backend/internal/jobs/payload"
	"github.com/yungbote/admatch-backend/internal/platform/gcp"
	"github.com/yungbote/admatch-backend/internal/platform/logger"
	"github.com/yungbote/admatch-backend/internal/repos"
	"github.com/yungbote/admatch-backend/internal/services"
)

// ReadyNotifier receives the one-shot "all pages landed" signal.
type ReadyNotifier interface {
	AdvertisementReady(adID uuid.UUID)
}

type Pipeline struct {
	db  *gorm.DB
	log *logger.Logger

	adRepo   repos.AdvertisementRepo
	pageRepo repos.PageRepo
	itemRepo repos.ItemRepo
	jobs     services.JobService
	bucket   gcp.BucketService
	notify   ReadyNotifier
}

func New(
	db *gorm.DB,
	baseLog *logger.Logger,
	adRepo repos.AdvertisementRepo,
	pageRepo repos.PageRepo,
	itemRepo repos.ItemRepo,
	jobs services.JobService,
	bucket gcp.BucketService,
	notify ReadyNotifier,
) *Pipeline {
	return &Pipeline{
		db:       db,
		log:      baseLog.With("job", payload.TypeStorePage),
		adRepo:   adRepo,
		pageRepo: pageRepo,
		itemRepo: itemRepo,
		jobs:     jobs,
		bucket:   bucket,
		notify:   notify,
	}
}

func (p *Pipeline) Type() string { return payload.TypeStorePage }
