// Package process_files is the ingest normalizer. It turns an uploaded batch
// (PDFs, page images, or a mix) into one canonical PDF plus one rasterized
// image per page, then fans out the storage and scan jobs.
package process_files

import (
	"gorm.io/gorm"

	"github.com/yungbote/admatch-backend/internal/jobs/payload"
	"github.com/yungbote/admatch-backend/internal/platform/logger"
	"github.com/yungbote/admatch-backend/internal/repos"
	"github.com/yungbote/admatch-backend/internal/services"
)

type Pipeline struct {
	db  *gorm.DB
	log *logger.Logger

	adRepo repos.AdvertisementRepo
	jobs   services.JobService
}

func New(db *gorm.DB, baseLog *logger.Logger, adRepo repos.AdvertisementRepo, jobs services.JobService) *Pipeline {
	return &Pipeline{
		db:     db,
		log:    baseLog.With("job", payload.TypeProcessFiles),
		adRepo: adRepo,
		jobs:   jobs,
	}
}

func (p *Pipeline) Type() string { return payload.TypeProcessFiles }
