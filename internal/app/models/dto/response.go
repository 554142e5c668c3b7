package dto

import "time"

// APIResponse is the envelope every endpoint responds with
type APIResponse struct {
	Success   bool         `json:"success"`
	Message   string       `json:"message,omitempty"`
	Data      interface{}  `json:"data,omitempty"`
	Error     *ErrorDetail `json:"error,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}

// NewSuccessResponse creates a successful API response
func NewSuccessResponse(data interface{}, message string) APIResponse {
	return APIResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	}
}

// NewFailureResponse creates an API response carrying an error
func NewFailureResponse(detail *ErrorDetail) APIResponse {
	return APIResponse{
		Success:   false,
		Error:     detail,
		Timestamp: time.Now(),
	}
}
