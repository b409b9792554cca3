package service

import (
	"context"
	"errors"

	"github.com/makkenzo/feedbackhub-api/internal/domain/subscription"
	"github.com/makkenzo/feedbackhub-api/internal/ierr"
	"go.uber.org/zap"
)

// SubscriptionChecker answers whether a user currently pays.
type SubscriptionChecker interface {
	IsSubscriptionActive(ctx context.Context, userID string) (bool, error)
}

type SubscriptionService struct {
	repo   subscription.Repository
	logger *zap.Logger
}

func NewSubscriptionService(repo subscription.Repository, logger *zap.Logger) *SubscriptionService {
	return &SubscriptionService{
		repo:   repo,
		logger: logger.Named("SubscriptionService"),
	}
}

var _ SubscriptionChecker = (*SubscriptionService)(nil)

// IsSubscriptionActive treats a missing row as not subscribed and an unset
// status as an integrity fault.
func (s *SubscriptionService) IsSubscriptionActive(ctx context.Context, userID string) (bool, error) {
	sub, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, subscription.ErrNotFound) {
			return false, nil
		}
		s.logger.Error("Failed to read subscription", zap.String("user_id", userID), zap.Error(err))
		return false, ierr.Upstream("find subscription", err)
	}

	active, err := sub.Active()
	if err != nil {
		s.logger.Error("Subscription record failed integrity check", zap.String("user_id", userID), zap.Int64("subscription_id", sub.ID), zap.Error(err))
		return false, err
	}
	return active, nil
}
