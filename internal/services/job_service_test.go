package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/admatch-backend/internal/jobs/payload"
	"github.com/yungbote/admatch-backend/internal/platform/logger"
	"github.com/yungbote/admatch-backend/internal/repos"
	"github.com/yungbote/admatch-backend/internal/types"
)

type captureJobRunRepo struct {
	created []*types.JobRun
}

func (r *captureJobRunRepo) Create(ctx context.Context, tx *gorm.DB, jobs []*types.JobRun) ([]*types.JobRun, error) {
	r.created = append(r.created, jobs...)
	return jobs, nil
}

func (r *captureJobRunRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.JobRun, error) {
	return nil, nil
}

func (r *captureJobRunRepo) ClaimNextRunnable(ctx context.Context, tx *gorm.DB, queue string, staleRunning time.Duration) (*types.JobRun, error) {
	return nil, nil
}

func (r *captureJobRunRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	return nil
}

func (r *captureJobRunRepo) Heartbeat(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return nil
}

var _ repos.JobRunRepo = (*captureJobRunRepo)(nil)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return log
}

func TestEnqueueRoutesTypesToQueues(t *testing.T) {
	repo := &captureJobRunRepo{}
	svc := NewJobService(testLogger(t), repo)
	adID := uuid.New()

	cases := []struct {
		jobType     string
		wantQueue   string
		wantMaxAtt  int
		wantBackoff int
	}{
		{payload.TypeProcessFiles, payload.QueueIngest, 2, 1000},
		{payload.TypeScanPage, payload.QueueScan, 3, 3000},
		{payload.TypeStorePDF, payload.QueuePersist, 2, 1000},
		{payload.TypeStorePage, payload.QueuePersist, 2, 1000},
		{payload.TypeMatchItem, payload.QueueMatch, 3, 3000},
	}
	for _, tc := range cases {
		job, err := svc.Enqueue(context.Background(), nil, tc.jobType, "advertisement", &adID, map[string]string{"k": "v"})
		if err != nil {
			t.Fatalf("Enqueue(%s): %v", tc.jobType, err)
		}
		if job.Queue != tc.wantQueue {
			t.Errorf("%s: queue = %q, want %q", tc.jobType, job.Queue, tc.wantQueue)
		}
		if job.MaxAttempts != tc.wantMaxAtt {
			t.Errorf("%s: max_attempts = %d, want %d", tc.jobType, job.MaxAttempts, tc.wantMaxAtt)
		}
		if job.BackoffBaseMS != tc.wantBackoff {
			t.Errorf("%s: backoff_base_ms = %d, want %d", tc.jobType, job.BackoffBaseMS, tc.wantBackoff)
		}
		if job.Status != types.JobStatusQueued {
			t.Errorf("%s: status = %q, want queued", tc.jobType, job.Status)
		}
		var decoded map[string]string
		if err := json.Unmarshal(job.Payload, &decoded); err != nil || decoded["k"] != "v" {
			t.Errorf("%s: payload round trip failed: %v %v", tc.jobType, decoded, err)
		}
	}
	if len(repo.created) != len(cases) {
		t.Fatalf("created %d jobs, want %d", len(repo.created), len(cases))
	}
}

func TestEnqueueRejectsUnknownType(t *testing.T) {
	svc := NewJobService(testLogger(t), &captureJobRunRepo{})
	if _, err := svc.Enqueue(context.Background(), nil, "bogus_type", "", nil, nil); err == nil {
		t.Fatal("expected error for unknown job type")
	}
}
