package tasks

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
	"github.com/makkenzo/feedbackhub-api/internal/domain/billing"
)

const (
	TypeSubscriptionEvent = "billing:subscription:event"
	TypeFreeTierEnforce   = "project:free-tier:enforce"

	QueueCritical = "critical"
	QueueDefault  = "default"
)

type SubscriptionEventPayload struct {
	Event billing.Event `json:"event"`
}

// NewSubscriptionEventTask uses the provider event id as the task id so
// webhook redeliveries collapse into one task.
func NewSubscriptionEventTask(evt billing.Event, opts ...asynq.Option) (*asynq.Task, error) {
	payloadBytes, err := json.Marshal(SubscriptionEventPayload{Event: evt})
	if err != nil {
		return nil, err
	}

	allOpts := []asynq.Option{asynq.Queue(QueueCritical), asynq.MaxRetry(10)}
	if evt.ID != "" {
		allOpts = append(allOpts, asynq.TaskID(evt.ID), asynq.Retention(24*time.Hour))
	}
	allOpts = append(allOpts, opts...)

	return asynq.NewTask(TypeSubscriptionEvent, payloadBytes, allOpts...), nil
}

type FreeTierEnforcePayload struct{}

func NewFreeTierEnforceTask(opts ...asynq.Option) (*asynq.Task, error) {
	payloadBytes, err := json.Marshal(FreeTierEnforcePayload{})
	if err != nil {
		return nil, err
	}

	uniqueOpt := asynq.Unique(1 * time.Hour)
	allOpts := append(opts, uniqueOpt)

	return asynq.NewTask(TypeFreeTierEnforce, payloadBytes, allOpts...), nil
}
