package dto

// Error codes carried in APIErrorResponse.Code.
const (
	CodeValidation      = "VALIDATION_ERROR"
	CodeUnauthenticated = "UNAUTHENTICATED"
	CodeForbidden       = "FORBIDDEN"
	CodeNotFound        = "NOT_FOUND"
	CodeConflict        = "CONFLICT"
	CodeInternal        = "INTERNAL_ERROR"
)

type APIErrorResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// InternalError is the body sent for any fault the caller cannot act on.
func InternalError() APIErrorResponse {
	return APIErrorResponse{Code: CodeInternal, Message: "An unexpected error occurred."}
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
