package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	JobStatusQueued    = "queued"
	JobStatusRunning   = "running"
	JobStatusSucceeded = "succeeded"
	JobStatusFailed    = "failed"
)

// JobRun is one persisted job on the at-least-once work queue. Workers claim
// rows per queue with FOR UPDATE SKIP LOCKED; retryable failures go back to
// queued with RunAt pushed out by the job type's exponential backoff.
type JobRun struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Queue      string     `gorm:"column:queue;not null;index:idx_job_run_claim" json:"queue"`
	JobType    string     `gorm:"column:job_type;not null" json:"job_type"`
	EntityType string     `gorm:"column:entity_type" json:"entity_type"`
	EntityID   *uuid.UUID `gorm:"column:entity_id;type:uuid" json:"entity_id,omitempty"`

	Status string `gorm:"column:status;not null;default:'queued';index:idx_job_run_claim" json:"status"`
	Stage  string `gorm:"column:stage" json:"stage"`

	Attempts       int       `gorm:"column:attempts;not null;default:0" json:"attempts"`
	MaxAttempts    int       `gorm:"column:max_attempts;not null;default:1" json:"max_attempts"`
	BackoffBaseMS  int       `gorm:"column:backoff_base_ms;not null;default:1000" json:"backoff_base_ms"`
	RunAt          time.Time `gorm:"column:run_at;not null;index:idx_job_run_claim" json:"run_at"`

	Payload datatypes.JSON `gorm:"column:payload;type:jsonb" json:"payload"`
	Result  datatypes.JSON `gorm:"column:result;type:jsonb" json:"result"`

	Error       string     `gorm:"column:error" json:"error"`
	LastErrorAt *time.Time `gorm:"column:last_error_at" json:"last_error_at,omitempty"`
	LockedAt    *time.Time `gorm:"column:locked_at" json:"locked_at,omitempty"`
	HeartbeatAt *time.Time `gorm:"column:heartbeat_at" json:"heartbeat_at,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (JobRun) TableName() string { return "job_run" }
