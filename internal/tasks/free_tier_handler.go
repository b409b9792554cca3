package tasks

import (
	"context"
	"fmt"
	"sort"

	"github.com/hibiken/asynq"
	"github.com/makkenzo/feedbackhub-api/internal/domain/project"
	"github.com/makkenzo/feedbackhub-api/internal/metrics"
	"go.uber.org/zap"
)

type SubscriptionChecker interface {
	IsSubscriptionActive(ctx context.Context, userID string) (bool, error)
}

// FreeTierEnforcer deactivates the newest active projects of unsubscribed
// owners until each holds at most maxFree. It never reactivates.
type FreeTierEnforcer struct {
	projects      project.Repository
	subscriptions SubscriptionChecker
	maxFree       int
	logger        *zap.Logger
}

func NewFreeTierEnforcer(projects project.Repository, subscriptions SubscriptionChecker, maxFree int, logger *zap.Logger) *FreeTierEnforcer {
	return &FreeTierEnforcer{
		projects:      projects,
		subscriptions: subscriptions,
		maxFree:       maxFree,
		logger:        logger.Named("FreeTierEnforcer"),
	}
}

func (h *FreeTierEnforcer) ProcessTask(ctx context.Context, t *asynq.Task) error {
	if t.Type() != TypeFreeTierEnforce {
		return fmt.Errorf("unexpected task type: %s", t.Type())
	}

	h.logger.Info("Processing free tier enforcement task...")

	owners, err := h.projects.ListOwnersWithActiveOver(ctx, h.maxFree)
	if err != nil {
		h.logger.Error("Failed to list owners over the free tier", zap.Error(err))
		metrics.TasksProcessed.WithLabelValues(TypeFreeTierEnforce, "error").Inc()
		return fmt.Errorf("repository error listing owners: %w", err)
	}

	deactivated := 0
	failed := 0

	for _, owner := range owners {
		n, err := h.enforceOwner(ctx, owner)
		deactivated += n
		if err != nil {
			failed++
			h.logger.Error("Failed to enforce free tier for owner", zap.String("owner_id", owner), zap.Error(err))
		}
	}

	h.logger.Info("Free tier enforcement task finished",
		zap.Int("owners_checked", len(owners)),
		zap.Int("deactivated", deactivated),
		zap.Int("failed", failed),
	)

	if failed > 0 {
		metrics.TasksProcessed.WithLabelValues(TypeFreeTierEnforce, "error").Inc()
		return fmt.Errorf("free tier enforcement failed for %d owners", failed)
	}
	metrics.TasksProcessed.WithLabelValues(TypeFreeTierEnforce, "ok").Inc()
	return nil
}

func (h *FreeTierEnforcer) enforceOwner(ctx context.Context, ownerID string) (int, error) {
	subscribed, err := h.subscriptions.IsSubscriptionActive(ctx, ownerID)
	if err != nil {
		return 0, err
	}
	if subscribed {
		return 0, nil
	}

	all, err := h.projects.ListByOwner(ctx, ownerID)
	if err != nil {
		return 0, err
	}

	active := make([]*project.Project, 0, len(all))
	for _, p := range all {
		if p.IsActive {
			active = append(active, p)
		}
	}
	if len(active) <= h.maxFree {
		return 0, nil
	}

	// Oldest projects stay active.
	sort.SliceStable(active, func(i, j int) bool {
		if active[i].CreatedAt.Equal(active[j].CreatedAt) {
			return active[i].ID < active[j].ID
		}
		return active[i].CreatedAt.Before(active[j].CreatedAt)
	})

	deactivated := 0
	for _, p := range active[h.maxFree:] {
		if err := h.projects.SetActive(ctx, p.ID, false); err != nil {
			return deactivated, err
		}
		deactivated++
		h.logger.Info("Deactivated project over free tier", zap.String("owner_id", ownerID), zap.Int64("project_id", p.ID))
	}
	return deactivated, nil
}
