package dto

// Response represents a standard API response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
}

// ErrorInfo represents error details
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewSuccessResponse creates a success response
func NewSuccessResponse(data interface{}) Response {
	return Response{
		Success: true,
		Data:    data,
	}
}

// NewErrorResponse creates an error response
func NewErrorResponse(code, message string) Response {
	return Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
		},
	}
}

// Error codes returned by the webhook API
const (
	ErrCodeMalformedEvent   = "MALFORMED_EVENT"
	ErrCodeAuthFailed       = "AUTH_FAILED"
	ErrCodeCustomerNotFound = "CUSTOMER_NOT_FOUND"
	ErrCodeUpstreamFailed   = "UPSTREAM_FAILED"
	ErrCodeInternal         = "INTERNAL_ERROR"
)
