package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/makkenzo/feedbackhub-api/internal/domain/subscription"
	"github.com/makkenzo/feedbackhub-api/internal/ierr"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var subscriptionCols = []string{"id", "user_id", "stripe_customer_id", "stripe_subscription_id", "subscribed", "created_at", "updated_at"}

func TestSubscriptionRepository_FindByUserID(t *testing.T) {
	mock := newMock(t)
	repo := NewSubscriptionRepository(mock, zap.NewNop())
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM subscriptions\s+WHERE user_id = \$1`).
		WithArgs("user_1").
		WillReturnRows(pgxmock.NewRows(subscriptionCols).
			AddRow(int64(1), "user_1", "cus_1", "sub_1", true, now, now))

	s, err := repo.FindByUserID(context.Background(), "user_1")
	require.NoError(t, err)
	assert.Equal(t, "cus_1", s.StripeCustomerID.String)
	active, err := s.Active()
	require.NoError(t, err)
	assert.True(t, active)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubscriptionRepository_FindByUserID_UnsetFlag(t *testing.T) {
	mock := newMock(t)
	repo := NewSubscriptionRepository(mock, zap.NewNop())
	now := time.Now()

	mock.ExpectQuery(`FROM subscriptions`).
		WithArgs("user_1").
		WillReturnRows(pgxmock.NewRows(subscriptionCols).
			AddRow(int64(1), "user_1", nil, nil, nil, now, now))

	s, err := repo.FindByUserID(context.Background(), "user_1")
	require.NoError(t, err)
	_, err = s.Active()
	assert.ErrorIs(t, err, ierr.ErrIntegrity)
}

func TestSubscriptionRepository_FindByUserID_NotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewSubscriptionRepository(mock, zap.NewNop())

	mock.ExpectQuery(`FROM subscriptions`).WithArgs("ghost").WillReturnError(pgx.ErrNoRows)

	_, err := repo.FindByUserID(context.Background(), "ghost")
	assert.ErrorIs(t, err, subscription.ErrNotFound)
}

func TestSubscriptionRepository_CreateForCustomer(t *testing.T) {
	mock := newMock(t)
	repo := NewSubscriptionRepository(mock, zap.NewNop())

	mock.ExpectExec(`VALUES \(\$1, \$2, FALSE\)`).
		WithArgs("user_1", "cus_1").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.CreateForCustomer(context.Background(), "user_1", "cus_1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubscriptionRepository_SetStatusByCustomer(t *testing.T) {
	mock := newMock(t)
	repo := NewSubscriptionRepository(mock, zap.NewNop())

	mock.ExpectExec(`UPDATE subscriptions SET`).
		WithArgs(true, "sub_1", "cus_1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`UPDATE subscriptions SET`).
		WithArgs(false, "", "cus_missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	require.NoError(t, repo.SetStatusByCustomer(context.Background(), "cus_1", "sub_1", true))
	err := repo.SetStatusByCustomer(context.Background(), "cus_missing", "", false)
	assert.ErrorIs(t, err, subscription.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
