// Package events carries pipeline lifecycle events to interested consumers
// (dashboards, review UI) over a pub/sub channel.
package events

import (
	"context"

	"github.com/google/uuid"
)

const (
	TypeJobSucceeded       = "job_succeeded"
	TypeJobFailed          = "job_failed"
	TypeAdvertisementReady = "advertisement_ready"
)

type Event struct {
	Type            string    `json:"type"`
	JobID           uuid.UUID `json:"job_id,omitempty"`
	JobType         string    `json:"job_type,omitempty"`
	Queue           string    `json:"queue,omitempty"`
	AdvertisementID uuid.UUID `json:"advertisement_id,omitempty"`
	Stage           string    `json:"stage,omitempty"`
	Error           string    `json:"error,omitempty"`
}

type Bus interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NoopBus drops all events; used when no Redis address is configured.
type NoopBus struct{}

func (NoopBus) Publish(ctx context.Context, event Event) error { return nil }
func (NoopBus) Close() error                                   { return nil }
