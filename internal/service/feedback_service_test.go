package service

import (
	"context"
	"testing"

	"github.com/makkenzo/feedbackhub-api/internal/handler/dto"
	"github.com/makkenzo/feedbackhub-api/internal/ierr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func validFeedback() *dto.SubmitFeedbackRequest {
	return &dto.SubmitFeedbackRequest{
		UserName:  "Grace",
		UserEmail: "grace@example.com",
		Message:   "Found a typo on the pricing page",
		Rating:    4,
	}
}

func TestFeedbackService_Submit(t *testing.T) {
	f := newFixture(t)
	svc := NewFeedbackService(f.projects, f.feedbacks, zap.NewNop())
	id := f.addProject(t, "u1", true)

	fb, err := svc.Submit(context.Background(), id, validFeedback())
	require.NoError(t, err)
	assert.NotZero(t, fb.ID)
	assert.Equal(t, id, fb.ProjectID)

	stored, err := f.feedbacks.ListByProject(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "Grace", stored[0].UserName)
}

func TestFeedbackService_SubmitDenied(t *testing.T) {
	f := newFixture(t)
	svc := NewFeedbackService(f.projects, f.feedbacks, zap.NewNop())
	inactive := f.addProject(t, "u1", false)

	_, err := svc.Submit(context.Background(), inactive, validFeedback())
	reason, ok := ierr.ReasonOf(err)
	require.True(t, ok)
	assert.Equal(t, ierr.ReasonProjectInactive, reason)

	_, err = svc.Submit(context.Background(), 404, validFeedback())
	reason, ok = ierr.ReasonOf(err)
	require.True(t, ok)
	assert.Equal(t, ierr.ReasonProjectNotFound, reason)
}

func TestFeedbackService_SubmitRejectsRating(t *testing.T) {
	f := newFixture(t)
	svc := NewFeedbackService(f.projects, f.feedbacks, zap.NewNop())
	id := f.addProject(t, "u1", true)

	for _, rating := range []int{0, 6, -1} {
		req := validFeedback()
		req.Rating = rating
		_, err := svc.Submit(context.Background(), id, req)
		assert.ErrorIs(t, err, ierr.ErrValidation, "rating %d", rating)
	}
}

func TestFeedbackService_StoreFailure(t *testing.T) {
	f := newFixture(t)
	svc := NewFeedbackService(failingProjects{}, f.feedbacks, zap.NewNop())

	_, err := svc.Submit(context.Background(), 1, validFeedback())
	assert.ErrorIs(t, err, ierr.ErrUpstream)
}
