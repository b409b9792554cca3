package service

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/makkenzo/feedbackhub-api/internal/domain/billing"
	"github.com/makkenzo/feedbackhub-api/internal/domain/subscription"
	"github.com/makkenzo/feedbackhub-api/internal/handler/dto"
	"github.com/makkenzo/feedbackhub-api/internal/ierr"
	"go.uber.org/zap"
)

// SubscriptionEventQueue hands verified webhook events to the worker.
type SubscriptionEventQueue interface {
	EnqueueSubscriptionEvent(ctx context.Context, evt billing.Event) error
}

type BillingService struct {
	gateway       billing.Gateway
	subscriptions subscription.Repository
	status        SubscriptionChecker
	queue         SubscriptionEventQueue
	priceIDs      []string
	logger        *zap.Logger
}

func NewBillingService(
	gateway billing.Gateway,
	subscriptions subscription.Repository,
	status SubscriptionChecker,
	queue SubscriptionEventQueue,
	priceIDs []string,
	logger *zap.Logger,
) *BillingService {
	return &BillingService{
		gateway:       gateway,
		subscriptions: subscriptions,
		status:        status,
		queue:         queue,
		priceIDs:      priceIDs,
		logger:        logger.Named("BillingService"),
	}
}

func (s *BillingService) Status(ctx context.Context, userID string) (bool, error) {
	return s.status.IsSubscriptionActive(ctx, userID)
}

// Checkout opens a hosted checkout for one of the configured plan prices.
func (s *BillingService) Checkout(ctx context.Context, userID string, req *dto.CheckoutRequest) (*billing.CheckoutSession, error) {
	if !slices.Contains(s.priceIDs, req.Price) {
		return nil, fmt.Errorf("%w: unknown price %q", ierr.ErrValidation, req.Price)
	}
	quantity := req.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	customerID, err := s.customerFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, customerID, req.Price, quantity)
	if err != nil {
		s.logger.Error("Failed to create checkout session", zap.String("user_id", userID), zap.Error(err))
		return nil, ierr.Upstream("create checkout session", err)
	}

	s.logger.Info("Checkout session created", zap.String("user_id", userID), zap.String("session_id", session.ID))
	return session, nil
}

// Portal opens the hosted billing portal for the user's customer record.
func (s *BillingService) Portal(ctx context.Context, userID string) (string, error) {
	customerID, err := s.customerFor(ctx, userID)
	if err != nil {
		return "", err
	}

	url, err := s.gateway.CreatePortalSession(ctx, customerID)
	if err != nil {
		s.logger.Error("Failed to create portal session", zap.String("user_id", userID), zap.Error(err))
		return "", ierr.Upstream("create portal session", err)
	}
	return url, nil
}

// HandleWebhook verifies a provider callback and queues the events that
// change subscription state. Other event types are acknowledged and dropped.
func (s *BillingService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	if signature == "" {
		return fmt.Errorf("%w: missing webhook signature", ierr.ErrValidation)
	}

	evt, err := s.gateway.ParseWebhook(payload, signature)
	if err != nil {
		s.logger.Warn("Rejected webhook payload", zap.Error(err))
		return fmt.Errorf("%w: %v", ierr.ErrValidation, err)
	}

	if !evt.Type.Applies() {
		s.logger.Debug("Ignoring webhook event", zap.String("event_id", evt.ID), zap.String("type", string(evt.Type)))
		return nil
	}
	if evt.CustomerID == "" {
		return fmt.Errorf("%w: event %s has no customer", ierr.ErrValidation, evt.ID)
	}

	if err := s.queue.EnqueueSubscriptionEvent(ctx, *evt); err != nil {
		s.logger.Error("Failed to enqueue subscription event", zap.String("event_id", evt.ID), zap.Error(err))
		return ierr.Upstream("enqueue subscription event", err)
	}

	s.logger.Info("Subscription event queued", zap.String("event_id", evt.ID), zap.String("type", string(evt.Type)), zap.String("customer_id", evt.CustomerID))
	return nil
}

// ApplySubscriptionEvent writes the subscribed flag carried by evt.
func (s *BillingService) ApplySubscriptionEvent(ctx context.Context, evt billing.Event) error {
	var subscribed bool
	switch evt.Type {
	case billing.EventSubscriptionCreated:
		subscribed = true
	case billing.EventSubscriptionDeleted:
		subscribed = false
	default:
		s.logger.Debug("Event does not change subscription state", zap.String("type", string(evt.Type)))
		return nil
	}

	err := s.subscriptions.SetStatusByCustomer(ctx, evt.CustomerID, evt.SubscriptionID, subscribed)
	if err != nil {
		if errors.Is(err, subscription.ErrNotFound) {
			s.logger.Warn("No subscription row for customer", zap.String("customer_id", evt.CustomerID), zap.String("event_id", evt.ID))
			return fmt.Errorf("%w: customer %s", ierr.ErrNotFound, evt.CustomerID)
		}
		return ierr.Upstream("update subscription", err)
	}

	s.logger.Info("Subscription status updated",
		zap.String("customer_id", evt.CustomerID),
		zap.String("subscription_id", evt.SubscriptionID),
		zap.Bool("subscribed", subscribed),
	)
	return nil
}

// customerFor returns the user's payment customer, creating the customer
// and the subscription row on first use.
func (s *BillingService) customerFor(ctx context.Context, userID string) (string, error) {
	sub, err := s.subscriptions.FindByUserID(ctx, userID)
	switch {
	case err == nil && sub.StripeCustomerID.Valid:
		return sub.StripeCustomerID.String, nil
	case err != nil && !errors.Is(err, subscription.ErrNotFound):
		return "", ierr.Upstream("find subscription", err)
	}

	customerID, err := s.gateway.CreateCustomer(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to create payment customer", zap.String("user_id", userID), zap.Error(err))
		return "", ierr.Upstream("create customer", err)
	}

	if err := s.subscriptions.CreateForCustomer(ctx, userID, customerID); err != nil {
		return "", ierr.Upstream("create subscription row", err)
	}

	// A concurrent request may have stored a customer first.
	sub, err = s.subscriptions.FindByUserID(ctx, userID)
	if err != nil {
		return "", ierr.Upstream("find subscription", err)
	}
	s.logger.Info("Payment customer linked", zap.String("user_id", userID), zap.String("customer_id", sub.StripeCustomerID.String))
	return sub.StripeCustomerID.String, nil
}
