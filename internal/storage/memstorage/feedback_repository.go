package memstorage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/makkenzo/feedbackhub-api/internal/domain/feedback"
)

type FeedbackRepository struct {
	mu        sync.RWMutex
	nextID    int64
	feedbacks []feedback.Feedback
}

func NewFeedbackRepository() *FeedbackRepository {
	return &FeedbackRepository{}
}

var _ feedback.Repository = (*FeedbackRepository)(nil)

func (r *FeedbackRepository) Create(ctx context.Context, fb *feedback.Feedback) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	fb.ID = r.nextID
	if fb.CreatedAt.IsZero() {
		fb.CreatedAt = time.Now().UTC()
	}
	r.feedbacks = append(r.feedbacks, *fb)
	return fb.ID, nil
}

// ListByProject returns newest first, matching the SQL repository.
func (r *FeedbackRepository) ListByProject(ctx context.Context, projectID int64) ([]feedback.Feedback, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]feedback.Feedback, 0)
	for _, fb := range r.feedbacks {
		if fb.ProjectID == projectID {
			out = append(out, fb)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}
