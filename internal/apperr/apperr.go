// Package apperr defines the error taxonomy shared by the pipeline and the transport layer.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrMissingURL    = errors.New("article has no url")
	ErrInvalidURL    = errors.New("article url is not absolute http(s)")
	ErrNoArticles    = errors.New("no articles to analyze")
	ErrUnparsable    = errors.New("ai response is not valid analysis json")
	ErrQuotaExceeded = errors.New("request budget exhausted")
)

// ValidationError is a malformed client request.
type ValidationError struct {
	Message string
	Details map[string]any
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Message
}

func NewValidation(message string, details map[string]any) *ValidationError {
	return &ValidationError{Message: message, Details: details}
}

// ExternalServiceError is a failure of the search or the AI provider.
type ExternalServiceError struct {
	Service    string
	StatusCode int
	Message    string
	Err        error
}

func (e *ExternalServiceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: HTTP %d: %s", e.Service, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Service, e.Message)
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }

// Retryable reports whether another attempt can help. Quota exhaustion and
// client-side 4xx responses (other than 408/429) are final.
func (e *ExternalServiceError) Retryable() bool {
	if errors.Is(e.Err, ErrQuotaExceeded) {
		return false
	}
	if e.StatusCode >= 400 && e.StatusCode < 500 {
		return e.StatusCode == 408 || e.StatusCode == 429
	}
	return true
}

func NewExternal(service string, statusCode int, err error) *ExternalServiceError {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return &ExternalServiceError{Service: service, StatusCode: statusCode, Message: msg, Err: err}
}

// ContentProcessingError aborts a request: nothing usable survived collection or filtering.
type ContentProcessingError struct {
	Message string
	Details map[string]any
	Err     error
}

func (e *ContentProcessingError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *ContentProcessingError) Unwrap() error { return e.Err }

func NewContentProcessing(message string, details map[string]any, err error) *ContentProcessingError {
	return &ContentProcessingError{Message: message, Details: details, Err: err}
}

// AnalysisError is an enrichment failure. It never leaves the enricher.
type AnalysisError struct {
	Message string
	Err     error
}

func (e *AnalysisError) Error() string {
	if e.Err != nil {
		return "analysis error: " + e.Message + ": " + e.Err.Error()
	}
	return "analysis error: " + e.Message
}

func (e *AnalysisError) Unwrap() error { return e.Err }

// AsExternal returns the first ExternalServiceError in err's chain.
func AsExternal(err error) (*ExternalServiceError, bool) {
	var ext *ExternalServiceError
	if errors.As(err, &ext) {
		return ext, true
	}
	return nil, false
}

func IsExternal(err error) bool {
	_, ok := AsExternal(err)
	return ok
}

// IsRetryableExternal is the retry classifier for provider calls.
func IsRetryableExternal(err error) bool {
	ext, ok := AsExternal(err)
	return ok && ext.Retryable()
}
