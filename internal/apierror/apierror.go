// Package apierror provides standardized error response structures for the API.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
package apierror

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
// Success is always false; it mirrors the success flag on 2xx envelopes so
// clients can branch on a single field.
type APIError struct {
	Success bool   `json:"success"`
	Detail  string `json:"error"`
}

func New(msg string) *APIError {
	return &APIError{Success: false, Detail: msg}
}

// Validation wraps multiple field errors.
type ValidationError struct {
	Success bool              `json:"success"`
	Detail  string            `json:"error"`
	Fields  map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Success: false, Detail: "validation failed", Fields: fields}
}
