package hmrc

import (
	"fmt"
	"strings"
)

// ErrorDetail is one field-level failure nested in an error response.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
	Path    string `json:"path,omitempty"`
}

// errorBody is the authority's error payload.
type errorBody struct {
	Code    string        `json:"code"`
	Message string        `json:"message"`
	Errors  []ErrorDetail `json:"errors,omitempty"`
}

// APIError means a response was received and it was not 2xx.
type APIError struct {
	StatusCode     int
	Code           string
	Message        string
	Errors         []ErrorDetail
	CorrelationID  string
	Classification Classification
	Category       Category
	UserMessage    string
}

func (e *APIError) Error() string {
	if len(e.Errors) == 0 {
		return fmt.Sprintf("hmrc: %d %s: %s", e.StatusCode, e.Code, e.Message)
	}
	codes := make([]string, 0, len(e.Errors))
	for _, d := range e.Errors {
		codes = append(codes, d.Code)
	}
	return fmt.Sprintf("hmrc: %d %s: %s [%s]", e.StatusCode, e.Code, e.Message, strings.Join(codes, ", "))
}

// Retryable reports whether the same request may be sent again.
func (e *APIError) Retryable() bool { return e.Classification == ClassRetryable }

// RequiresReauth reports whether the caller must obtain a fresh token first.
func (e *APIError) RequiresReauth() bool { return e.Classification == ClassReauth }

// TransportError means no response was received: dial, TLS, timeout or a broken connection.
// Whether the authority applied the request is unknown.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("hmrc: %s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// HeaderValidationError blocks a request whose fraud prevention headers are incomplete.
// It is raised before any network call.
type HeaderValidationError struct {
	Missing []string
}

func (e *HeaderValidationError) Error() string {
	return "hmrc: missing fraud prevention headers: " + strings.Join(e.Missing, ", ")
}
