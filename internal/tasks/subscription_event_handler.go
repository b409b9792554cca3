package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/makkenzo/feedbackhub-api/internal/domain/billing"
	"github.com/makkenzo/feedbackhub-api/internal/metrics"
	"go.uber.org/zap"
)

type SubscriptionApplier interface {
	ApplySubscriptionEvent(ctx context.Context, evt billing.Event) error
}

type SubscriptionEventHandler struct {
	applier SubscriptionApplier
	logger  *zap.Logger
}

func NewSubscriptionEventHandler(applier SubscriptionApplier, logger *zap.Logger) *SubscriptionEventHandler {
	return &SubscriptionEventHandler{
		applier: applier,
		logger:  logger.Named("SubscriptionEventHandler"),
	}
}

func (h *SubscriptionEventHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	if t.Type() != TypeSubscriptionEvent {
		return fmt.Errorf("unexpected task type: %s", t.Type())
	}

	var p SubscriptionEventPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		h.logger.Error("Failed to unmarshal payload for subscription event task", zap.Error(err), zap.ByteString("payload", t.Payload()))
		metrics.TasksProcessed.WithLabelValues(TypeSubscriptionEvent, "invalid").Inc()
		return fmt.Errorf("invalid payload: %v: %w", err, asynq.SkipRetry)
	}

	h.logger.Info("Processing subscription event", zap.String("event_id", p.Event.ID), zap.String("type", string(p.Event.Type)))

	if err := h.applier.ApplySubscriptionEvent(ctx, p.Event); err != nil {
		metrics.TasksProcessed.WithLabelValues(TypeSubscriptionEvent, "error").Inc()
		return fmt.Errorf("apply subscription event %s: %w", p.Event.ID, err)
	}

	metrics.TasksProcessed.WithLabelValues(TypeSubscriptionEvent, "ok").Inc()
	return nil
}
