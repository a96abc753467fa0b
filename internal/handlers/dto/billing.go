package dto

type URLResponse struct {
	URL string `json:"url"`
}

type VerifyPaymentRequest struct {
	SessionID string `json:"session_id" binding:"required"`
}
