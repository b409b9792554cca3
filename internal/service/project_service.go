package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/makkenzo/feedbackhub-api/internal/domain/project"
	"github.com/makkenzo/feedbackhub-api/internal/handler/dto"
	"github.com/makkenzo/feedbackhub-api/internal/ierr"
	"go.uber.org/zap"
)

type ProjectService struct {
	repo            project.Repository
	subscriptions   SubscriptionChecker
	guard           *AccessGuard
	maxFreeProjects int
	logger          *zap.Logger
}

func NewProjectService(repo project.Repository, subscriptions SubscriptionChecker, guard *AccessGuard, maxFreeProjects int, logger *zap.Logger) *ProjectService {
	return &ProjectService{
		repo:            repo,
		subscriptions:   subscriptions,
		guard:           guard,
		maxFreeProjects: maxFreeProjects,
		logger:          logger.Named("ProjectService"),
	}
}

// CreateProject stores a new active project. Unsubscribed owners are
// capped at maxFreeProjects active projects.
func (s *ProjectService) CreateProject(ctx context.Context, ownerID string, req *dto.CreateProjectRequest) (*project.Project, error) {
	s.logger.Info("Attempting to create a new project", zap.String("owner_id", ownerID), zap.String("name", req.Name))

	subscribed, err := s.subscriptions.IsSubscriptionActive(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	newProject := &project.Project{
		Name:        req.Name,
		Description: req.Description,
		URL:         req.URL,
		OwnerID:     ownerID,
		IsActive:    true,
	}

	var insertedID int64
	if subscribed {
		insertedID, err = s.repo.Create(ctx, newProject)
	} else {
		insertedID, err = s.repo.CreateWithinLimit(ctx, newProject, s.maxFreeProjects)
	}
	if errors.Is(err, project.ErrLimitReached) {
		s.logger.Info("Free tier project limit reached", zap.String("owner_id", ownerID), zap.Int("limit", s.maxFreeProjects))
		return nil, ierr.Deny(ierr.ReasonProjectLimitReached)
	}
	if err != nil {
		s.logger.Error("Failed to create project via repository", zap.Error(err))
		return nil, fmt.Errorf("repository error during project creation: %w", err)
	}

	created, err := s.repo.FindByID(ctx, insertedID)
	if err != nil {
		s.logger.Error("Failed to find newly created project by ID", zap.Int64("id", insertedID), zap.Error(err))
		return nil, fmt.Errorf("failed to retrieve created project (id: %d): %w", insertedID, err)
	}

	s.logger.Info("Project created successfully", zap.Int64("id", created.ID))
	return created, nil
}

// ListProjects returns the owner's projects and whether the owner is
// subscribed.
func (s *ProjectService) ListProjects(ctx context.Context, ownerID string) ([]*project.Project, bool, error) {
	subscribed, err := s.subscriptions.IsSubscriptionActive(ctx, ownerID)
	if err != nil {
		return nil, false, err
	}

	projects, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		s.logger.Error("Failed to list projects", zap.String("owner_id", ownerID), zap.Error(err))
		return nil, false, ierr.Upstream("list projects", err)
	}
	return projects, subscribed, nil
}

// GetProject runs the access guard and returns the project with its
// feedback when access is granted. A denial comes back as a DenialError.
func (s *ProjectService) GetProject(ctx context.Context, projectID int64, userID string) (*project.Project, error) {
	result, err := s.guard.Evaluate(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}
	if !result.Granted() {
		return nil, ierr.Deny(result.Reason)
	}
	return result.Project, nil
}
