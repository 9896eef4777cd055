package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/admatch-backend/internal/events"
	"github.com/yungbote/admatch-backend/internal/platform/logger"
	"github.com/yungbote/admatch-backend/internal/types"
)

// PipelineNotifier fans pipeline transitions out to the event bus. It
// satisfies the job runtime's Notifier and adds the advertisement-level
// "ready for review" signal.
type PipelineNotifier struct {
	log *logger.Logger
	bus events.Bus
}

func NewPipelineNotifier(baseLog *logger.Logger, bus events.Bus) *PipelineNotifier {
	if bus == nil {
		bus = events.NoopBus{}
	}
	return &PipelineNotifier{
		log: baseLog.With("service", "PipelineNotifier"),
		bus: bus,
	}
}

func (n *PipelineNotifier) JobSucceeded(job *types.JobRun) {
	if n == nil || job == nil {
		return
	}
	n.publish(events.Event{
		Type:    events.TypeJobSucceeded,
		JobID:   job.ID,
		JobType: job.JobType,
		Queue:   job.Queue,
		Stage:   job.Stage,
	})
}

func (n *PipelineNotifier) JobFailed(job *types.JobRun, stage string, errMsg string) {
	if n == nil || job == nil {
		return
	}
	n.publish(events.Event{
		Type:    events.TypeJobFailed,
		JobID:   job.ID,
		JobType: job.JobType,
		Queue:   job.Queue,
		Stage:   stage,
		Error:   errMsg,
	})
}

// AdvertisementReady fires once per advertisement, when the last page lands
// and the status flips to needs_review.
func (n *PipelineNotifier) AdvertisementReady(adID uuid.UUID) {
	if n == nil {
		return
	}
	n.publish(events.Event{
		Type:            events.TypeAdvertisementReady,
		AdvertisementID: adID,
	})
}

func (n *PipelineNotifier) publish(ev events.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := n.bus.Publish(ctx, ev); err != nil {
		n.log.Warn("Event publish failed", "type", ev.Type, "error", err)
	}
}
