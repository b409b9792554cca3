package memstorage

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/makkenzo/feedbackhub-api/internal/domain/subscription"
)

type SubscriptionRepository struct {
	mu     sync.RWMutex
	nextID int64
	byUser map[string]*subscription.Subscription
}

func NewSubscriptionRepository() *SubscriptionRepository {
	return &SubscriptionRepository{
		byUser: make(map[string]*subscription.Subscription),
	}
}

var _ subscription.Repository = (*SubscriptionRepository)(nil)

// Put stores s as-is, including an unset Subscribed flag.
func (r *SubscriptionRepository) Put(s subscription.Subscription) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	s.ID = r.nextID
	r.byUser[s.UserID] = &s
}

func (r *SubscriptionRepository) FindByUserID(ctx context.Context, userID string) (*subscription.Subscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.byUser[userID]
	if !ok {
		return nil, subscription.ErrNotFound
	}
	subCopy := *s
	return &subCopy, nil
}

func (r *SubscriptionRepository) CreateForCustomer(ctx context.Context, userID, customerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	if s, ok := r.byUser[userID]; ok {
		if !s.StripeCustomerID.Valid {
			s.StripeCustomerID = sql.NullString{String: customerID, Valid: true}
		}
		if !s.Subscribed.Valid {
			s.Subscribed = sql.NullBool{Valid: true}
		}
		s.UpdatedAt = now
		return nil
	}

	r.nextID++
	r.byUser[userID] = &subscription.Subscription{
		ID:               r.nextID,
		UserID:           userID,
		StripeCustomerID: sql.NullString{String: customerID, Valid: true},
		Subscribed:       sql.NullBool{Bool: false, Valid: true},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	return nil
}

func (r *SubscriptionRepository) SetStatusByCustomer(ctx context.Context, customerID, subscriptionID string, subscribed bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.byUser {
		if s.StripeCustomerID.Valid && s.StripeCustomerID.String == customerID {
			s.Subscribed = sql.NullBool{Bool: subscribed, Valid: true}
			if subscriptionID != "" {
				s.StripeSubscriptionID = sql.NullString{String: subscriptionID, Valid: true}
			}
			s.UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return subscription.ErrNotFound
}
