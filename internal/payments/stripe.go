// Package payments adapts Stripe to the billing.Gateway interface.
package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/makkenzo/feedbackhub-api/internal/config"
	"github.com/makkenzo/feedbackhub-api/internal/domain/billing"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"
)

type StripeGateway struct {
	api           *client.API
	webhookSecret string
	baseURL       string
	logger        *zap.Logger
}

var _ billing.Gateway = (*StripeGateway)(nil)

func NewStripeGateway(cfg *config.BillingConfig, logger *zap.Logger) *StripeGateway {
	return &StripeGateway{
		api:           client.New(cfg.StripeSecretKey, nil),
		webhookSecret: cfg.WebhookSecret,
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		logger:        logger.Named("StripeGateway"),
	}
}

func (g *StripeGateway) CreateCustomer(ctx context.Context, userID string) (string, error) {
	params := &stripe.CustomerParams{
		Params: stripe.Params{Context: ctx},
	}
	params.AddMetadata("user_id", userID)

	c, err := g.api.Customers.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe: create customer: %w", err)
	}
	g.logger.Debug("Stripe customer created", zap.String("customer_id", c.ID), zap.String("user_id", userID))
	return c.ID, nil
}

func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, customerID, priceID string, quantity int64) (*billing.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Params:   stripe.Params{Context: ctx},
		Customer: stripe.String(customerID),
		Mode:     stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(priceID), Quantity: stripe.Int64(quantity)},
		},
		SuccessURL: stripe.String(g.baseURL + "/dashboard?checkout=success"),
		CancelURL:  stripe.String(g.baseURL + "/dashboard?checkout=cancelled"),
	}

	s, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe: create checkout session: %w", err)
	}
	return &billing.CheckoutSession{ID: s.ID, URL: s.URL}, nil
}

func (g *StripeGateway) CreatePortalSession(ctx context.Context, customerID string) (string, error) {
	params := &stripe.BillingPortalSessionParams{
		Params:    stripe.Params{Context: ctx},
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(g.baseURL + "/dashboard"),
	}

	s, err := g.api.BillingPortalSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe: create portal session: %w", err)
	}
	return s.URL, nil
}

func (g *StripeGateway) ParseWebhook(payload []byte, signature string) (*billing.Event, error) {
	return ParseEvent(payload, signature, g.webhookSecret)
}

// ParseEvent verifies a Stripe webhook and extracts the customer and
// subscription ids the billing service needs.
func ParseEvent(payload []byte, signature, secret string) (*billing.Event, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("stripe: verify webhook: %w", err)
	}

	evt := &billing.Event{ID: event.ID, Type: billing.EventType(event.Type)}

	switch evt.Type {
	case billing.EventSubscriptionCreated, billing.EventSubscriptionDeleted:
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return nil, fmt.Errorf("stripe: decode subscription: %w", err)
		}
		evt.SubscriptionID = sub.ID
		if sub.Customer != nil {
			evt.CustomerID = sub.Customer.ID
		}
	case billing.EventCheckoutSessionCompleted:
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return nil, fmt.Errorf("stripe: decode checkout session: %w", err)
		}
		if session.Customer != nil {
			evt.CustomerID = session.Customer.ID
		}
		if session.Subscription != nil {
			evt.SubscriptionID = session.Subscription.ID
		}
	}

	return evt, nil
}
