package dto

import (
	"time"

	"github.com/makkenzo/feedbackhub-api/internal/domain/feedback"
	"github.com/makkenzo/feedbackhub-api/internal/domain/project"
)

type CreateProjectRequest struct {
	Name        string `json:"name" binding:"required,max=120"`
	Description string `json:"description" binding:"max=1000"`
	URL         string `json:"url" binding:"required,url"`
}

type ProjectResponse struct {
	ID          int64              `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	URL         string             `json:"url"`
	IsActive    bool               `json:"is_active"`
	CreatedAt   time.Time          `json:"created_at"`
	Feedbacks   []FeedbackResponse `json:"feedbacks,omitempty"`
}

func NewProjectResponse(p *project.Project) *ProjectResponse {
	resp := &ProjectResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		URL:         p.URL,
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt,
	}
	if p.Feedbacks != nil {
		resp.Feedbacks = make([]FeedbackResponse, 0, len(p.Feedbacks))
		for i := range p.Feedbacks {
			resp.Feedbacks = append(resp.Feedbacks, *NewFeedbackResponse(&p.Feedbacks[i]))
		}
	}
	return resp
}

type ProjectListResponse struct {
	Projects   []*ProjectResponse `json:"projects"`
	Subscribed bool               `json:"subscribed"`
}

type EmbedTokenResponse struct {
	Token     string    `json:"token"`
	ProjectID string    `json:"project_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

type FeedbackResponse struct {
	ID        int64     `json:"id"`
	UserName  string    `json:"user_name"`
	UserEmail string    `json:"user_email"`
	Message   string    `json:"message"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
}

func NewFeedbackResponse(fb *feedback.Feedback) *FeedbackResponse {
	return &FeedbackResponse{
		ID:        fb.ID,
		UserName:  fb.UserName,
		UserEmail: fb.UserEmail,
		Message:   fb.Message,
		Rating:    fb.Rating,
		CreatedAt: fb.CreatedAt,
	}
}
