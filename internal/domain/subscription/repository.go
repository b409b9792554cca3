package subscription

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("subscription not found")

type Repository interface {
	FindByUserID(ctx context.Context, userID string) (*Subscription, error)
	// CreateForCustomer inserts the lazily created row with subscribed=false.
	CreateForCustomer(ctx context.Context, userID, customerID string) error
	// SetStatusByCustomer returns ErrNotFound when no row carries customerID.
	SetStatusByCustomer(ctx context.Context, customerID, subscriptionID string, subscribed bool) error
}
