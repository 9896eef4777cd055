package repos

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/admatch-backend/internal/repos/testutil"
	"github.com/yungbote/admatch-backend/internal/types"
)

func queuedJob(queue string, jobType string, runAt time.Time) *types.JobRun {
	return &types.JobRun{
		ID:            uuid.New(),
		Queue:         queue,
		JobType:       jobType,
		Status:        types.JobStatusQueued,
		MaxAttempts:   3,
		BackoffBaseMS: 1000,
		RunAt:         runAt,
	}
}

func TestClaimNextRunnablePicksOldestDue(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	repo := NewJobRunRepo(db, testutil.Logger(t))
	queue := "test-" + uuid.NewString()[:8]

	now := time.Now()
	older := queuedJob(queue, "scan_page", now.Add(-2*time.Minute))
	newer := queuedJob(queue, "scan_page", now.Add(-1*time.Minute))
	if _, err := repo.Create(ctx, tx, []*types.JobRun{newer, older}); err != nil {
		t.Fatalf("create jobs: %v", err)
	}

	claimed, err := repo.ClaimNextRunnable(ctx, tx, queue, 15*time.Minute)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if claimed == nil || claimed.ID != older.ID {
		t.Fatalf("claimed %v, want oldest job %s", claimed, older.ID)
	}
	if claimed.Status != types.JobStatusRunning {
		t.Fatalf("claimed status = %q, want running", claimed.Status)
	}
	if claimed.Attempts != 1 {
		t.Fatalf("claimed attempts = %d, want 1", claimed.Attempts)
	}

	second, err := repo.ClaimNextRunnable(ctx, tx, queue, 15*time.Minute)
	if err != nil {
		t.Fatalf("second claim: %v", err)
	}
	if second == nil || second.ID != newer.ID {
		t.Fatalf("second claim = %v, want %s", second, newer.ID)
	}

	third, err := repo.ClaimNextRunnable(ctx, tx, queue, 15*time.Minute)
	if err != nil {
		t.Fatalf("third claim: %v", err)
	}
	if third != nil {
		t.Fatalf("third claim = %v, want nil on empty queue", third)
	}
}

func TestClaimNextRunnableSkipsFutureRunAt(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	repo := NewJobRunRepo(db, testutil.Logger(t))
	queue := "test-" + uuid.NewString()[:8]

	future := queuedJob(queue, "match_item", time.Now().Add(1*time.Hour))
	if _, err := repo.Create(ctx, tx, []*types.JobRun{future}); err != nil {
		t.Fatalf("create job: %v", err)
	}

	claimed, err := repo.ClaimNextRunnable(ctx, tx, queue, 15*time.Minute)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if claimed != nil {
		t.Fatalf("claimed backoff-delayed job %s before its run_at", claimed.ID)
	}
}

func TestClaimNextRunnableReclaimsStaleRunning(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	repo := NewJobRunRepo(db, testutil.Logger(t))
	queue := "test-" + uuid.NewString()[:8]

	stale := time.Now().Add(-30 * time.Minute)
	abandoned := &types.JobRun{
		ID:            uuid.New(),
		Queue:         queue,
		JobType:       "store_page",
		Status:        types.JobStatusRunning,
		Attempts:      1,
		MaxAttempts:   3,
		BackoffBaseMS: 1000,
		RunAt:         stale,
		LockedAt:      &stale,
		HeartbeatAt:   &stale,
	}
	if _, err := repo.Create(ctx, tx, []*types.JobRun{abandoned}); err != nil {
		t.Fatalf("create job: %v", err)
	}

	claimed, err := repo.ClaimNextRunnable(ctx, tx, queue, 15*time.Minute)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if claimed == nil || claimed.ID != abandoned.ID {
		t.Fatalf("stale running job not reclaimed, got %v", claimed)
	}
	if claimed.Attempts != 2 {
		t.Fatalf("reclaim attempts = %d, want 2", claimed.Attempts)
	}
}
