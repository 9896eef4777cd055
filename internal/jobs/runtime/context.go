package runtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/admatch-backend/internal/repos"
	"github.com/yungbote/admatch-backend/internal/types"
)

// Notifier receives terminal job transitions. Implementations publish to the
// pipeline event bus; a nil notifier is a no-op.
type Notifier interface {
	JobSucceeded(job *types.JobRun)
	JobFailed(job *types.JobRun, stage string, errMsg string)
}

// Context is the execution handle for one claimed job run. It owns the only
// sanctioned ways to terminate execution: Succeed, Fail (terminal, no retry)
// and Retry (reschedule with backoff until the attempt budget runs out).
// Pipelines never write job_run rows directly.
type Context struct {
	Ctx    context.Context
	DB     *gorm.DB
	Job    *types.JobRun
	Repo   repos.JobRunRepo
	Notify Notifier
}

func NewContext(ctx context.Context, db *gorm.DB, job *types.JobRun, repo repos.JobRunRepo, notify Notifier) *Context {
	return &Context{
		Ctx:    ctx,
		DB:     db,
		Job:    job,
		Repo:   repo,
		Notify: notify,
	}
}

// Decode unmarshals the job payload into the given typed payload struct.
func (c *Context) Decode(v any) error {
	if c == nil || c.Job == nil || len(c.Job.Payload) == 0 {
		return json.Unmarshal([]byte(`{}`), v)
	}
	return json.Unmarshal(c.Job.Payload, v)
}

// Progress records a non-terminal stage update plus a heartbeat.
func (c *Context) Progress(stage string) {
	if c == nil || c.Job == nil || c.Job.ID == uuid.Nil {
		return
	}
	now := time.Now()
	if c.Repo != nil {
		_ = c.Repo.UpdateFields(c.ctx(), nil, c.Job.ID, map[string]interface{}{
			"stage":        stage,
			"heartbeat_at": now,
			"updated_at":   now,
		})
	}
	c.Job.Stage = stage
	c.Job.HeartbeatAt = &now
	c.Job.UpdatedAt = now
}

// Fail marks the job terminally failed. Used for non-retryable failures:
// malformed payloads, oracle failures, exhausted work.
func (c *Context) Fail(stage string, err error) {
	if c == nil || c.Job == nil {
		return
	}
	now := time.Now()
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	if c.Repo != nil && c.Job.ID != uuid.Nil {
		_ = c.Repo.UpdateFields(c.ctx(), nil, c.Job.ID, map[string]interface{}{
			"status":        types.JobStatusFailed,
			"stage":         stage,
			"error":         msg,
			"last_error_at": now,
			"locked_at":     nil,
			"updated_at":    now,
		})
	}
	c.Job.Status = types.JobStatusFailed
	c.Job.Stage = stage
	c.Job.Error = msg
	c.Job.LastErrorAt = &now
	c.Job.LockedAt = nil
	c.Job.UpdatedAt = now

	if c.Notify != nil {
		c.Notify.JobFailed(c.Job, stage, msg)
	}
}

// Retry reschedules the job with exponential backoff, or fails it terminally
// once the attempt budget is exhausted. Backoff doubles per attempt:
// base, 2·base, 4·base, ...
func (c *Context) Retry(stage string, err error) {
	if c == nil || c.Job == nil {
		return
	}
	if c.Job.Attempts >= c.Job.MaxAttempts {
		c.Fail(stage, err)
		return
	}
	now := time.Now()
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	runAt := now.Add(backoffDelay(c.Job.BackoffBaseMS, c.Job.Attempts))
	if c.Repo != nil && c.Job.ID != uuid.Nil {
		_ = c.Repo.UpdateFields(c.ctx(), nil, c.Job.ID, map[string]interface{}{
			"status":        types.JobStatusQueued,
			"stage":         stage,
			"error":         msg,
			"last_error_at": now,
			"run_at":        runAt,
			"locked_at":     nil,
			"updated_at":    now,
		})
	}
	c.Job.Status = types.JobStatusQueued
	c.Job.Stage = stage
	c.Job.Error = msg
	c.Job.LastErrorAt = &now
	c.Job.RunAt = runAt
	c.Job.LockedAt = nil
	c.Job.UpdatedAt = now
}

// Succeed marks the job terminally succeeded with a result payload.
func (c *Context) Succeed(finalStage string, result any) {
	if c == nil || c.Job == nil {
		return
	}
	now := time.Now()
	var res datatypes.JSON
	if result != nil {
		b, _ := json.Marshal(result)
		res = datatypes.JSON(b)
	}
	if c.Repo != nil && c.Job.ID != uuid.Nil {
		_ = c.Repo.UpdateFields(c.ctx(), nil, c.Job.ID, map[string]interface{}{
			"status":       types.JobStatusSucceeded,
			"stage":        finalStage,
			"error":        "",
			"result":       res,
			"locked_at":    nil,
			"heartbeat_at": now,
			"updated_at":   now,
		})
	}
	c.Job.Status = types.JobStatusSucceeded
	c.Job.Stage = finalStage
	c.Job.Error = ""
	c.Job.Result = res
	c.Job.LockedAt = nil
	c.Job.HeartbeatAt = &now
	c.Job.UpdatedAt = now

	if c.Notify != nil {
		c.Notify.JobSucceeded(c.Job)
	}
}

func (c *Context) ctx() context.Context {
	if c.Ctx != nil {
		return c.Ctx
	}
	return context.Background()
}

// backoffDelay returns base · 2^(attempts-1). Attempts is the number of the
// attempt that just failed, so the first retry waits exactly base.
func backoffDelay(baseMS int, attempts int) time.Duration {
	if baseMS <= 0 {
		baseMS = 1000
	}
	if attempts < 1 {
		attempts = 1
	}
	d := time.Duration(baseMS) * time.Millisecond
	for i := 1; i < attempts; i++ {
		d *= 2
	}
	return d
}
