package models

// ErrorType categorizes API errors so clients can branch on failure class
// without string matching.
type ErrorType string

const (
	GeneralErrorType    ErrorType = "general"
	ValidationErrorType ErrorType = "validation"
	NotFoundErrorType   ErrorType = "not_found"
)

// APIResponse is the envelope returned by every JSON endpoint.
type APIResponse struct {
	Status string `json:"status"`
	Data   any    `json:"data,omitempty"`
}

// APIErrorResponse is the envelope returned on failure.
type APIErrorResponse struct {
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	ErrorType ErrorType `json:"error_type"`
}
