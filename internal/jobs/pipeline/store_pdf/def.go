// Package store_pdf writes the canonical merged PDF of an advertisement to
// the blob store.
package store_pdf

import (
	"github.com/yungbote/admatch-backend/internal/jobs/payload"
	"github.com/yungbote/admatch-backend/internal/platform/gcp"
	"github.com/yungbote/admatch-backend/internal/platform/logger"
)

type Pipeline struct {
	log    *logger.Logger
	bucket gcp.BucketService
}

func New(baseLog *logger.Logger, bucket gcp.BucketService) *Pipeline {
	return &Pipeline{
		log:    baseLog.With("job", payload.TypeStorePDF),
		bucket: bucket,
	}
}

func (p *Pipeline) Type() string { return payload.TypeStorePDF }
