package models

import "time"

// ErrorResponse is the body of every non-2xx answer from the health stub API.
type ErrorResponse struct {
	Error     string    `json:"error"`          // always "error"
	Message   string    `json:"message"`        // human-readable description
	Code      string    `json:"code,omitempty"` // machine-readable code
	Timestamp time.Time `json:"timestamp"`
}

const (
	ErrorCodeNotFound       = "NOT_FOUND"        // 404
	ErrorCodeBadRequest     = "BAD_REQUEST"      // 400: body could not be decoded
	ErrorCodeInvalidRequest = "INVALID_REQUEST"  // 405 and friends
	ErrorCodeValidation     = "VALIDATION_ERROR" // 422
	ErrorCodeInternalError  = "INTERNAL_ERROR"   // 500
	ErrorCodeSimulated      = "SIMULATED_FAILURE"
)

func NewErrorResponse(message string, code string) *ErrorResponse {
	return &ErrorResponse{
		Error:     "error",
		Message:   message,
		Code:      code,
		Timestamp: time.Now(),
	}
}
