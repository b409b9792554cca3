package project

import (
	"context"
	"errors"
)

var (
	ErrNotFound     = errors.New("project not found")
	ErrLimitReached = errors.New("active project limit reached")
)

type Repository interface {
	Create(ctx context.Context, project *Project) (int64, error)
	// CreateWithinLimit inserts project only while its owner has fewer
	// than limit active projects, returning ErrLimitReached otherwise.
	// The count and the insert are atomic per owner.
	CreateWithinLimit(ctx context.Context, project *Project, limit int) (int64, error)
	// FindByIDWithFeedbacks loads the project and its feedback collection.
	FindByIDWithFeedbacks(ctx context.Context, id int64) (*Project, error)
	FindByID(ctx context.Context, id int64) (*Project, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*Project, error)
	// ListOwnersWithActiveOver returns owners holding more than limit
	// active projects.
	ListOwnersWithActiveOver(ctx context.Context, limit int) ([]string, error)
	SetActive(ctx context.Context, id int64, active bool) error
}
