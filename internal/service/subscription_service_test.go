package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/makkenzo/feedbackhub-api/internal/domain/subscription"
	"github.com/makkenzo/feedbackhub-api/internal/ierr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSubscriptionService_IsSubscriptionActive(t *testing.T) {
	f := newFixture(t)
	f.subscribe("paid", true)
	f.subscribe("lapsed", false)
	f.subscriptions.Put(subscription.Subscription{UserID: "broken", Subscribed: sql.NullBool{}})

	ctx := context.Background()

	active, err := f.checker.IsSubscriptionActive(ctx, "paid")
	require.NoError(t, err)
	assert.True(t, active)

	active, err = f.checker.IsSubscriptionActive(ctx, "lapsed")
	require.NoError(t, err)
	assert.False(t, active)

	active, err = f.checker.IsSubscriptionActive(ctx, "never-paid")
	require.NoError(t, err)
	assert.False(t, active)

	_, err = f.checker.IsSubscriptionActive(ctx, "broken")
	assert.ErrorIs(t, err, ierr.ErrIntegrity)

	_, err = NewSubscriptionService(failingSubscriptions{}, zap.NewNop()).IsSubscriptionActive(ctx, "paid")
	assert.ErrorIs(t, err, ierr.ErrUpstream)
}
