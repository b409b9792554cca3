package feedback

import "time"

const (
	MinRating = 1
	MaxRating = 5
)

// Feedback is one widget submission against a project.
type Feedback struct {
	ID        int64     `db:"id" json:"id"`
	ProjectID int64     `db:"project_id" json:"project_id"`
	UserName  string    `db:"user_name" json:"user_name"`
	UserEmail string    `db:"user_email" json:"user_email"`
	Message   string    `db:"message" json:"message"`
	Rating    int       `db:"rating" json:"rating"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
