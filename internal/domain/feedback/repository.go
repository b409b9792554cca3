package feedback

import "context"

type Repository interface {
	Create(ctx context.Context, fb *Feedback) (int64, error)
	ListByProject(ctx context.Context, projectID int64) ([]Feedback, error)
}
