package project

import (
	"time"

	"github.com/makkenzo/feedbackhub-api/internal/domain/feedback"
)

type Project struct {
	ID          int64               `db:"id" json:"id"`
	Name        string              `db:"name" json:"name"`
	Description string              `db:"description" json:"description"`
	URL         string              `db:"url" json:"url"`
	OwnerID     string              `db:"user_id" json:"user_id"`
	IsActive    bool                `db:"is_active" json:"is_active"`
	CreatedAt   time.Time           `db:"created_at" json:"created_at"`
	Feedbacks   []feedback.Feedback `db:"-" json:"feedbacks,omitempty"`
}

func (p *Project) OwnedBy(userID string) bool {
	return p.OwnerID == userID
}
