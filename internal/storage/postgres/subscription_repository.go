package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/makkenzo/feedbackhub-api/internal/domain/subscription"
	"go.uber.org/zap"
)

type SubscriptionRepository struct {
	db     DBTX
	logger *zap.Logger
}

func NewSubscriptionRepository(db DBTX, logger *zap.Logger) *SubscriptionRepository {
	return &SubscriptionRepository{
		db:     db,
		logger: logger.Named("SubscriptionRepository"),
	}
}

var _ subscription.Repository = (*SubscriptionRepository)(nil)

func (r *SubscriptionRepository) FindByUserID(ctx context.Context, userID string) (*subscription.Subscription, error) {
	query := `
        SELECT id, user_id, stripe_customer_id, stripe_subscription_id, subscribed, created_at, updated_at
        FROM subscriptions
        WHERE user_id = $1
    `
	var s subscription.Subscription
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&s.ID,
		&s.UserID,
		&s.StripeCustomerID,
		&s.StripeSubscriptionID,
		&s.Subscribed,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, subscription.ErrNotFound
		}
		r.logger.Error("Failed to find subscription by user", zap.String("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("database error finding subscription: %w", err)
	}
	return &s, nil
}

func (r *SubscriptionRepository) CreateForCustomer(ctx context.Context, userID, customerID string) error {
	query := `
        INSERT INTO subscriptions (user_id, stripe_customer_id, subscribed)
        VALUES ($1, $2, FALSE)
        ON CONFLICT (user_id) DO UPDATE SET
            stripe_customer_id = COALESCE(subscriptions.stripe_customer_id, EXCLUDED.stripe_customer_id),
            subscribed = COALESCE(subscriptions.subscribed, FALSE),
            updated_at = NOW()
    `
	if _, err := r.db.Exec(ctx, query, userID, customerID); err != nil {
		r.logger.Error("Failed to create subscription row", zap.String("user_id", userID), zap.String("customer_id", customerID), zap.Error(err))
		return fmt.Errorf("database error creating subscription: %w", err)
	}

	r.logger.Info("Subscription row created", zap.String("user_id", userID), zap.String("customer_id", customerID))
	return nil
}

func (r *SubscriptionRepository) SetStatusByCustomer(ctx context.Context, customerID, subscriptionID string, subscribed bool) error {
	query := `
        UPDATE subscriptions SET
            subscribed = $1,
            stripe_subscription_id = COALESCE(NULLIF($2, ''), stripe_subscription_id),
            updated_at = NOW()
        WHERE stripe_customer_id = $3
    `
	cmdTag, err := r.db.Exec(ctx, query, subscribed, subscriptionID, customerID)
	if err != nil {
		r.logger.Error("Failed to update subscription status", zap.String("customer_id", customerID), zap.Error(err))
		return fmt.Errorf("database error updating subscription: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		r.logger.Warn("No subscription row for customer", zap.String("customer_id", customerID))
		return subscription.ErrNotFound
	}

	r.logger.Info("Subscription status updated", zap.String("customer_id", customerID), zap.Bool("subscribed", subscribed))
	return nil
}
