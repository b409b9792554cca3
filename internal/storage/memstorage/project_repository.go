// Package memstorage holds in-memory repositories with the same
// semantics as the Postgres ones, for service and handler tests.
package memstorage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/makkenzo/feedbackhub-api/internal/domain/project"
)

type ProjectRepository struct {
	mu        sync.RWMutex
	nextID    int64
	projects  map[int64]*project.Project
	feedbacks *FeedbackRepository
	now       func() time.Time
}

func NewProjectRepository(feedbacks *FeedbackRepository) *ProjectRepository {
	return &ProjectRepository{
		projects:  make(map[int64]*project.Project),
		feedbacks: feedbacks,
		now:       time.Now,
	}
}

var _ project.Repository = (*ProjectRepository)(nil)

func (r *ProjectRepository) Create(ctx context.Context, p *project.Project) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.insert(p), nil
}

func (r *ProjectRepository) insert(p *project.Project) int64 {
	r.nextID++
	stored := *p
	stored.ID = r.nextID
	stored.Feedbacks = nil
	if stored.CreatedAt.IsZero() {
		// Keep creation order strictly increasing for ordering by age.
		stored.CreatedAt = r.now().Add(time.Duration(r.nextID) * time.Microsecond)
	}
	r.projects[stored.ID] = &stored
	return stored.ID
}

func (r *ProjectRepository) CreateWithinLimit(ctx context.Context, p *project.Project, limit int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var active int
	for _, existing := range r.projects {
		if existing.OwnerID == p.OwnerID && existing.IsActive {
			active++
		}
	}
	if active >= limit {
		return 0, project.ErrLimitReached
	}
	return r.insert(p), nil
}

func (r *ProjectRepository) FindByID(ctx context.Context, id int64) (*project.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.projects[id]
	if !ok {
		return nil, project.ErrNotFound
	}
	projectCopy := *p
	return &projectCopy, nil
}

func (r *ProjectRepository) FindByIDWithFeedbacks(ctx context.Context, id int64) (*project.Project, error) {
	p, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.feedbacks != nil {
		p.Feedbacks, err = r.feedbacks.ListByProject(ctx, id)
		if err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (r *ProjectRepository) ListByOwner(ctx context.Context, ownerID string) ([]*project.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	projects := make([]*project.Project, 0)
	for _, p := range r.projects {
		if p.OwnerID == ownerID {
			projectCopy := *p
			projects = append(projects, &projectCopy)
		}
	}
	sort.Slice(projects, func(i, j int) bool {
		if projects[i].CreatedAt.Equal(projects[j].CreatedAt) {
			return projects[i].ID < projects[j].ID
		}
		return projects[i].CreatedAt.Before(projects[j].CreatedAt)
	})
	return projects, nil
}

func (r *ProjectRepository) CountActiveByOwner(ctx context.Context, ownerID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int64
	for _, p := range r.projects {
		if p.OwnerID == ownerID && p.IsActive {
			count++
		}
	}
	return count, nil
}

func (r *ProjectRepository) ListOwnersWithActiveOver(ctx context.Context, limit int) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[string]int)
	for _, p := range r.projects {
		if p.IsActive {
			counts[p.OwnerID]++
		}
	}
	owners := make([]string, 0)
	for owner, n := range counts {
		if n > limit {
			owners = append(owners, owner)
		}
	}
	sort.Strings(owners)
	return owners, nil
}

func (r *ProjectRepository) SetActive(ctx context.Context, id int64, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.projects[id]
	if !ok {
		return project.ErrNotFound
	}
	p.IsActive = active
	return nil
}
