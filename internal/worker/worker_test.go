package worker

import (
	"context"
	"database/sql"
	"testing"

	"github.com/makkenzo/feedbackhub-api/internal/domain/billing"
	"github.com/makkenzo/feedbackhub-api/internal/domain/subscription"
	"github.com/makkenzo/feedbackhub-api/internal/service"
	"github.com/makkenzo/feedbackhub-api/internal/storage/memstorage"
	"github.com/makkenzo/feedbackhub-api/internal/tasks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestServeMux_RoutesSubscriptionEvents(t *testing.T) {
	logger := zap.NewNop()
	subs := memstorage.NewSubscriptionRepository()
	subs.Put(subscription.Subscription{
		UserID:           "u1",
		StripeCustomerID: sql.NullString{String: "cus_1", Valid: true},
		Subscribed:       sql.NullBool{Valid: true},
	})
	checker := service.NewSubscriptionService(subs, logger)
	billingSvc := service.NewBillingService(nil, subs, checker, nil, nil, logger)

	mux := NewServeMux(Handlers{
		SubscriptionEvents: tasks.NewSubscriptionEventHandler(billingSvc, logger),
		FreeTier:           tasks.NewFreeTierEnforcer(memstorage.NewProjectRepository(nil), checker, 3, logger),
	})

	task, err := tasks.NewSubscriptionEventTask(billing.Event{ID: "evt_1", Type: billing.EventSubscriptionCreated, CustomerID: "cus_1"})
	require.NoError(t, err)
	require.NoError(t, mux.ProcessTask(context.Background(), task))

	active, err := checker.IsSubscriptionActive(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, active)

	freeTier, err := tasks.NewFreeTierEnforceTask()
	require.NoError(t, err)
	assert.NoError(t, mux.ProcessTask(context.Background(), freeTier))
}
