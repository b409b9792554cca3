package payments

import (
	"testing"
	"time"

	"github.com/makkenzo/feedbackhub-api/internal/domain/billing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76/webhook"
)

const testWebhookSecret = "whsec_test"

func signed(t *testing.T, payload string) (body []byte, header string) {
	t.Helper()
	p := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   []byte(payload),
		Secret:    testWebhookSecret,
		Timestamp: time.Now(),
	})
	return p.Payload, p.Header
}

func TestParseEvent_SubscriptionCreated(t *testing.T) {
	body, header := signed(t, `{
		"id": "evt_1",
		"object": "event",
		"type": "customer.subscription.created",
		"data": {"object": {"id": "sub_1", "object": "subscription", "customer": "cus_1"}}
	}`)

	evt, err := ParseEvent(body, header, testWebhookSecret)
	require.NoError(t, err)
	assert.Equal(t, &billing.Event{
		ID:             "evt_1",
		Type:           billing.EventSubscriptionCreated,
		CustomerID:     "cus_1",
		SubscriptionID: "sub_1",
	}, evt)
}

func TestParseEvent_CheckoutCompleted(t *testing.T) {
	body, header := signed(t, `{
		"id": "evt_2",
		"object": "event",
		"type": "checkout.session.completed",
		"data": {"object": {"id": "cs_1", "object": "checkout.session", "customer": "cus_9", "subscription": "sub_9"}}
	}`)

	evt, err := ParseEvent(body, header, testWebhookSecret)
	require.NoError(t, err)
	assert.Equal(t, "cus_9", evt.CustomerID)
	assert.Equal(t, "sub_9", evt.SubscriptionID)
	assert.False(t, evt.Type.Applies())
}

func TestParseEvent_RejectsBadSignature(t *testing.T) {
	body, _ := signed(t, `{"id": "evt_3", "object": "event", "type": "customer.subscription.deleted", "data": {"object": {}}}`)

	_, err := ParseEvent(body, "t=1,v1=deadbeef", testWebhookSecret)
	assert.Error(t, err)

	_, header := signed(t, `{"id": "evt_4"}`)
	_, err = ParseEvent(body, header, testWebhookSecret)
	assert.Error(t, err)
}
