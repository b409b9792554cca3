package billing

import "context"

type EventType string

const (
	EventCheckoutSessionCompleted EventType = "checkout.session.completed"
	EventSubscriptionCreated      EventType = "customer.subscription.created"
	EventSubscriptionDeleted      EventType = "customer.subscription.deleted"
)

// Applies reports whether the event changes a subscription row.
func (t EventType) Applies() bool {
	return t == EventSubscriptionCreated || t == EventSubscriptionDeleted
}

// Event is the provider-neutral part of a verified payment webhook.
type Event struct {
	ID             string    `json:"id"`
	Type           EventType `json:"type"`
	CustomerID     string    `json:"customer_id"`
	SubscriptionID string    `json:"subscription_id"`
}

type CheckoutSession struct {
	ID  string `json:"session_id"`
	URL string `json:"url"`
}

// Gateway is the hosted payments provider.
type Gateway interface {
	CreateCustomer(ctx context.Context, userID string) (string, error)
	CreateCheckoutSession(ctx context.Context, customerID, priceID string, quantity int64) (*CheckoutSession, error)
	CreatePortalSession(ctx context.Context, customerID string) (string, error)
	// ParseWebhook verifies the signature header and decodes the event.
	ParseWebhook(payload []byte, signature string) (*Event, error)
}
