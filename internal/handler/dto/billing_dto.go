package dto

type SubscriptionStatusResponse struct {
	Subscribed bool `json:"subscribed"`
}

type CheckoutRequest struct {
	Price    string `json:"price" binding:"required"`
	Quantity int64  `json:"quantity" binding:"omitempty,min=1,max=100"`
}

type CheckoutResponse struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

type PortalResponse struct {
	URL string `json:"url"`
}
