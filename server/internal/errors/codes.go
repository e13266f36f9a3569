// Package errors defines the stable error codes carried in API responses.
package errors

// Code is a machine-readable API error code.
type Code string

const (
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeRateLimited     Code = "RATE_LIMITED"
	CodeParseFailed     Code = "PARSE_FAILED"
	CodeRetrievalFailed Code = "RETRIEVAL_FAILED"
	CodeInternal        Code = "INTERNAL"
)

// APIError is the JSON error payload returned by every endpoint.
type APIError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

// New creates an APIError.
func New(code Code, message string) *APIError {
	return &APIError{Code: code, Message: message}
}

func (e *APIError) Error() string {
	return string(e.Code) + ": " + e.Message
}
