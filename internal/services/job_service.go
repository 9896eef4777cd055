package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/admatch-backend/internal/jobs/payload"
	"github.com/yungbote/admatch-backend/internal/platform/logger"
	"github.com/yungbote/admatch-backend/internal/repos"
	"github.com/yungbote/admatch-backend/internal/types"
)

// RetryPolicy is the per-job-type attempt budget and backoff base.
type RetryPolicy struct {
	MaxAttempts int
	BackoffBase time.Duration
}

var queueForType = map[string]string{
	payload.TypeProcessFiles: payload.QueueIngest,
	payload.TypeScanPage:     payload.QueueScan,
	payload.TypeStorePDF:     payload.QueuePersist,
	payload.TypeStorePage:    payload.QueuePersist,
	payload.TypeMatchItem:    payload.QueueMatch,
}

// The normalizer fails fast (its input is still in hand for re-upload); the
// oracle and matcher talk to flakier dependencies and get a longer leash.
var retryForType = map[string]RetryPolicy{
	payload.TypeProcessFiles: {MaxAttempts: 2, BackoffBase: 1 * time.Second},
	payload.TypeScanPage:     {MaxAttempts: 3, BackoffBase: 3 * time.Second},
	payload.TypeStorePDF:     {MaxAttempts: 2, BackoffBase: 1 * time.Second},
	payload.TypeStorePage:    {MaxAttempts: 2, BackoffBase: 1 * time.Second},
	payload.TypeMatchItem:    {MaxAttempts: 3, BackoffBase: 3 * time.Second},
}

type JobService interface {
	// Enqueue persists one job run. Passing the caller's transaction makes the
	// enqueue atomic with whatever state change produced it.
	Enqueue(ctx context.Context, tx *gorm.DB, jobType string, entityType string, entityID *uuid.UUID, body any) (*types.JobRun, error)
	GetByID(ctx context.Context, id uuid.UUID) (*types.JobRun, error)
}

type jobService struct {
	log     *logger.Logger
	jobRepo repos.JobRunRepo
}

func NewJobService(baseLog *logger.Logger, jobRepo repos.JobRunRepo) JobService {
	return &jobService{
		log:     baseLog.With("service", "JobService"),
		jobRepo: jobRepo,
	}
}

func (s *jobService) Enqueue(ctx context.Context, tx *gorm.DB, jobType string, entityType string, entityID *uuid.UUID, body any) (*types.JobRun, error) {
	queue, ok := queueForType[jobType]
	if !ok {
		return nil, fmt.Errorf("unknown job type %q", jobType)
	}
	policy := retryForType[jobType]

	var raw datatypes.JSON
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal payload for %s: %w", jobType, err)
		}
		raw = datatypes.JSON(b)
	}

	job := &types.JobRun{
		ID:            uuid.New(),
		Queue:         queue,
		JobType:       jobType,
		EntityType:    entityType,
		EntityID:      entityID,
		Status:        types.JobStatusQueued,
		MaxAttempts:   policy.MaxAttempts,
		BackoffBaseMS: int(policy.BackoffBase / time.Millisecond),
		RunAt:         time.Now(),
		Payload:       raw,
	}
	created, err := s.jobRepo.Create(ctx, tx, []*types.JobRun{job})
	if err != nil {
		return nil, err
	}
	s.log.Debug("Job enqueued", "job_id", job.ID, "job_type", jobType, "queue", queue)
	return created[0], nil
}

func (s *jobService) GetByID(ctx context.Context, id uuid.UUID) (*types.JobRun, error) {
	return s.jobRepo.GetByID(ctx, nil, id)
}
