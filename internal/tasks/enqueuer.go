package tasks

import (
	"context"
	"errors"

	"github.com/hibiken/asynq"
	"github.com/makkenzo/feedbackhub-api/internal/domain/billing"
	"go.uber.org/zap"
)

type Enqueuer struct {
	client *asynq.Client
	logger *zap.Logger
}

func NewEnqueuer(client *asynq.Client, logger *zap.Logger) *Enqueuer {
	return &Enqueuer{
		client: client,
		logger: logger.Named("TaskEnqueuer"),
	}
}

func (q *Enqueuer) EnqueueSubscriptionEvent(ctx context.Context, evt billing.Event) error {
	task, err := NewSubscriptionEventTask(evt)
	if err != nil {
		return err
	}

	info, err := q.client.EnqueueContext(ctx, task)
	if err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			q.logger.Debug("Subscription event already queued", zap.String("event_id", evt.ID))
			return nil
		}
		q.logger.Warn("Enqueue subscription event failed", zap.String("event_id", evt.ID), zap.Error(err))
		return err
	}

	q.logger.Debug("Subscription event enqueued", zap.String("task_id", info.ID), zap.String("queue", info.Queue))
	return nil
}
