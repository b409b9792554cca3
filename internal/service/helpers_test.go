package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/makkenzo/feedbackhub-api/internal/domain/feedback"
	"github.com/makkenzo/feedbackhub-api/internal/domain/project"
	"github.com/makkenzo/feedbackhub-api/internal/domain/subscription"
	"github.com/makkenzo/feedbackhub-api/internal/storage/memstorage"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var errStoreDown = errors.New("connection refused")

type fixture struct {
	projects      *memstorage.ProjectRepository
	feedbacks     *memstorage.FeedbackRepository
	subscriptions *memstorage.SubscriptionRepository
	checker       *SubscriptionService
	guard         *AccessGuard
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	feedbacks := memstorage.NewFeedbackRepository()
	projects := memstorage.NewProjectRepository(feedbacks)
	subs := memstorage.NewSubscriptionRepository()
	checker := NewSubscriptionService(subs, zap.NewNop())
	return &fixture{
		projects:      projects,
		feedbacks:     feedbacks,
		subscriptions: subs,
		checker:       checker,
		guard:         NewAccessGuard(projects, checker, zap.NewNop()),
	}
}

func (f *fixture) subscribe(userID string, active bool) {
	f.subscriptions.Put(subscription.Subscription{
		UserID:           userID,
		StripeCustomerID: sql.NullString{String: "cus_" + userID, Valid: true},
		Subscribed:       sql.NullBool{Bool: active, Valid: true},
	})
}

func (f *fixture) addProject(t *testing.T, ownerID string, active bool) int64 {
	t.Helper()
	id, err := f.projects.Create(context.Background(), &project.Project{
		Name:     "Landing page",
		URL:      "https://example.com",
		OwnerID:  ownerID,
		IsActive: active,
	})
	require.NoError(t, err)
	return id
}

func (f *fixture) addFeedback(t *testing.T, projectID int64, rating int) {
	t.Helper()
	_, err := f.feedbacks.Create(context.Background(), &feedback.Feedback{
		ProjectID: projectID,
		UserName:  "Ada",
		UserEmail: "ada@example.com",
		Message:   "Nice widget",
		Rating:    rating,
	})
	require.NoError(t, err)
}

type failingSubscriptions struct {
	subscription.Repository
}

func (failingSubscriptions) FindByUserID(context.Context, string) (*subscription.Subscription, error) {
	return nil, errStoreDown
}

type failingProjects struct {
	project.Repository
}

func (failingProjects) FindByIDWithFeedbacks(context.Context, int64) (*project.Project, error) {
	return nil, errStoreDown
}

func (failingProjects) FindByID(context.Context, int64) (*project.Project, error) {
	return nil, errStoreDown
}
