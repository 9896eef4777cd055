package worker

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/admatch-backend/internal/jobs/runtime"
	"github.com/yungbote/admatch-backend/internal/platform/logger"
	"github.com/yungbote/admatch-backend/internal/repos"
)

// QueueConfig bounds one named queue's worker pool.
type QueueConfig struct {
	Name        string
	Concurrency int
}

// Worker runs one polling loop per pool slot per queue. Queues are
// independent, so a slow stage (vision calls on scan) never starves the
// others.
type Worker struct {
	db       *gorm.DB
	log      *logger.Logger
	repo     repos.JobRunRepo
	registry *runtime.Registry
	notify   runtime.Notifier
	queues   []QueueConfig
}

func NewWorker(db *gorm.DB, baseLog *logger.Logger, repo repos.JobRunRepo, registry *runtime.Registry, notify runtime.Notifier, queues []QueueConfig) *Worker {
	return &Worker{
		db:       db,
		log:      baseLog.With("component", "JobWorker"),
		repo:     repo,
		registry: registry,
		notify:   notify,
		queues:   queues,
	}
}

func (w *Worker) Start(ctx context.Context) {
	for _, q := range w.queues {
		concurrency := q.Concurrency
		if concurrency < 1 {
			concurrency = 1
		}
		w.log.Info("Starting queue worker pool", "queue", q.Name, "concurrency", concurrency)
		for i := 0; i < concurrency; i++ {
			go w.runLoop(ctx, q.Name, i+1)
		}
	}
}

func (w *Worker) runLoop(ctx context.Context, queue string, slot int) {
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	staleRunning := 15 * time.Minute

	for {
		select {
		case <-ctx.Done():
			w.log.Info("Worker loop stopped", "queue", queue, "slot", slot)
			return
		case <-ticker.C:
			job, err := w.repo.ClaimNextRunnable(ctx, w.db, queue, staleRunning)
			if err != nil {
				w.log.Warn("ClaimNextRunnable failed", "queue", queue, "slot", slot, "error", err)
				continue
			}
			if job == nil {
				continue
			}

			h, ok := w.registry.Get(job.JobType)
			jc := runtime.NewContext(ctx, w.db, job, w.repo, w.notify)

			if !ok {
				w.log.Warn("No handler registered for job_type",
					"queue", queue,
					"job_type", job.JobType,
					"job_id", job.ID,
				)
				jc.Fail("dispatch", &missingHandlerError{JobType: job.JobType})
				continue
			}

			func() {
				defer func() {
					if r := recover(); r != nil {
						w.log.Error("Job handler panic",
							"queue", queue,
							"job_id", job.ID,
							"job_type", job.JobType,
							"panic", r,
						)
						jc.Retry("panic", &panicError{})
					}
				}()

				if runErr := h.Run(jc); runErr != nil {
					// Pipelines normally terminate the job themselves; a
					// returned error means an unhandled storage failure, which
					// gets the standard retry treatment.
					jc.Retry("run", runErr)
				}
			}()
		}
	}
}

type missingHandlerError struct{ JobType string }

func (e *missingHandlerError) Error() string { return "no handler registered for job_type=" + e.JobType }

type panicError struct{}

func (e *panicError) Error() string { return "panic: unexpected error" }
