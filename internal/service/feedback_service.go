package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/makkenzo/feedbackhub-api/internal/domain/feedback"
	"github.com/makkenzo/feedbackhub-api/internal/domain/project"
	"github.com/makkenzo/feedbackhub-api/internal/handler/dto"
	"github.com/makkenzo/feedbackhub-api/internal/ierr"
	"github.com/makkenzo/feedbackhub-api/internal/metrics"
	"go.uber.org/zap"
)

type FeedbackService struct {
	projects  project.Repository
	feedbacks feedback.Repository
	logger    *zap.Logger
}

func NewFeedbackService(projects project.Repository, feedbacks feedback.Repository, logger *zap.Logger) *FeedbackService {
	return &FeedbackService{
		projects:  projects,
		feedbacks: feedbacks,
		logger:    logger.Named("FeedbackService"),
	}
}

// Submit records widget feedback for an existing, active project.
func (s *FeedbackService) Submit(ctx context.Context, projectID int64, req *dto.SubmitFeedbackRequest) (*feedback.Feedback, error) {
	if req.Rating < feedback.MinRating || req.Rating > feedback.MaxRating {
		metrics.FeedbackSubmissions.WithLabelValues("invalid").Inc()
		return nil, fmt.Errorf("%w: rating must be between %d and %d", ierr.ErrValidation, feedback.MinRating, feedback.MaxRating)
	}

	p, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, project.ErrNotFound) {
			metrics.FeedbackSubmissions.WithLabelValues("denied").Inc()
			return nil, ierr.Deny(ierr.ReasonProjectNotFound)
		}
		s.logger.Error("Failed to load project for feedback", zap.Int64("project_id", projectID), zap.Error(err))
		return nil, ierr.Upstream("find project", err)
	}
	if !p.IsActive {
		metrics.FeedbackSubmissions.WithLabelValues("denied").Inc()
		return nil, ierr.Deny(ierr.ReasonProjectInactive)
	}

	fb := &feedback.Feedback{
		ProjectID: projectID,
		UserName:  req.UserName,
		UserEmail: req.UserEmail,
		Message:   req.Message,
		Rating:    req.Rating,
	}

	id, err := s.feedbacks.Create(ctx, fb)
	if err != nil {
		if errors.Is(err, project.ErrNotFound) {
			metrics.FeedbackSubmissions.WithLabelValues("denied").Inc()
			return nil, ierr.Deny(ierr.ReasonProjectNotFound)
		}
		metrics.FeedbackSubmissions.WithLabelValues("error").Inc()
		s.logger.Error("Failed to store feedback", zap.Int64("project_id", projectID), zap.Error(err))
		return nil, ierr.Upstream("create feedback", err)
	}
	fb.ID = id

	metrics.FeedbackSubmissions.WithLabelValues("accepted").Inc()
	s.logger.Info("Feedback recorded", zap.Int64("project_id", projectID), zap.Int64("feedback_id", id), zap.Int("rating", fb.Rating))
	return fb, nil
}
