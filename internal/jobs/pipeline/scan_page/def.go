// Package scan_page runs one page image through the extraction oracle and
// hands the cleaned entries to the persist queue.
package scan_page

import (
	"github.com/yungbote/admatch-backend/internal/jobs/payload"
	"github.com/yungbote/admatch-backend/internal/platform/logger"
	"github.com/yungbote/admatch-backend/internal/platform/openai"
	"github.com/yungbote/admatch-backend/internal/services"
)

type Pipeline struct {
	log    *logger.Logger
	oracle openai.Client
	jobs   services.JobService
}

func New(baseLog *logger.Logger, oracle openai.Client, jobs services.JobService) *Pipeline {
	return &Pipeline{
		log:    baseLog.With("job", payload.TypeScanPage),
		oracle: oracle,
		jobs:   jobs,
	}
}

func (p *Pipeline) Type() string { return payload.TypeScanPage }
