package service

import (
	"context"
	"errors"

	"github.com/makkenzo/feedbackhub-api/internal/domain/project"
	"github.com/makkenzo/feedbackhub-api/internal/ierr"
	"github.com/makkenzo/feedbackhub-api/internal/metrics"
	"go.uber.org/zap"
)

// AccessResult carries either the loaded project or a denial reason.
type AccessResult struct {
	Project *project.Project
	Reason  ierr.Reason
}

func (r AccessResult) Granted() bool {
	return r.Reason == "" && r.Project != nil
}

// AccessGuard decides whether a user may read a project. Denials are
// returned as values; only read and integrity failures are errors.
type AccessGuard struct {
	projects      project.Repository
	subscriptions SubscriptionChecker
	logger        *zap.Logger
}

func NewAccessGuard(projects project.Repository, subscriptions SubscriptionChecker, logger *zap.Logger) *AccessGuard {
	return &AccessGuard{
		projects:      projects,
		subscriptions: subscriptions,
		logger:        logger.Named("AccessGuard"),
	}
}

// Evaluate checks, in order: subscription status can be read, project
// exists and belongs to userID, project is active, subscription is active.
// The first failing check decides the reason.
func (g *AccessGuard) Evaluate(ctx context.Context, projectID int64, userID string) (AccessResult, error) {
	subscribed, err := g.subscriptions.IsSubscriptionActive(ctx, userID)
	if err != nil {
		return AccessResult{}, err
	}

	p, err := g.projects.FindByIDWithFeedbacks(ctx, projectID)
	if err != nil {
		if errors.Is(err, project.ErrNotFound) {
			return g.deny(projectID, userID, ierr.ReasonProjectNotFound), nil
		}
		g.logger.Error("Failed to load project", zap.Int64("project_id", projectID), zap.Error(err))
		return AccessResult{}, ierr.Upstream("find project", err)
	}

	// A foreign project is indistinguishable from a missing one.
	if !p.OwnedBy(userID) {
		return g.deny(projectID, userID, ierr.ReasonProjectNotFound), nil
	}
	if !p.IsActive {
		return g.deny(projectID, userID, ierr.ReasonProjectInactive), nil
	}
	if !subscribed {
		return g.deny(projectID, userID, ierr.ReasonSubscriptionExpired), nil
	}

	metrics.AccessDecisions.WithLabelValues("granted").Inc()
	g.logger.Debug("Project access granted", zap.Int64("project_id", projectID), zap.String("user_id", userID))
	return AccessResult{Project: p}, nil
}

func (g *AccessGuard) deny(projectID int64, userID string, reason ierr.Reason) AccessResult {
	metrics.AccessDecisions.WithLabelValues(string(reason)).Inc()
	g.logger.Info("Project access denied",
		zap.Int64("project_id", projectID),
		zap.String("user_id", userID),
		zap.String("reason", string(reason)),
	)
	return AccessResult{Reason: reason}
}
