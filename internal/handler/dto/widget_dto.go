package dto

type SubmitFeedbackRequest struct {
	UserName  string `json:"user_name" binding:"required,max=120"`
	UserEmail string `json:"user_email" binding:"required,email"`
	Message   string `json:"message" binding:"required,max=5000"`
	Rating    int    `json:"rating" binding:"required,min=1,max=5"`
}
