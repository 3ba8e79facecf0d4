package domain

import (
	"errors"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
type HTTPError interface {
	error
	StatusCode() int
}

// Sentinel errors - use with errors.Is()
var (
	// ErrUnauthenticated means no usable bearer credential was supplied
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrInvalidCredential means the auth provider rejected the credential
	ErrInvalidCredential = errors.New("invalid credential")
	// ErrNotFound also covers resources the caller must not learn about
	ErrNotFound = errors.New("not found")
	// ErrForbidden is only produced by write paths (update, delete, generate)
	ErrForbidden           = errors.New("forbidden")
	ErrValidation          = errors.New("validation failed")
	ErrMalformedHistory    = errors.New("malformed history")
	ErrGenerationFailed    = errors.New("generation failed")
	ErrProviderUnavailable = errors.New("provider unavailable")
)

// GenerationError represents an upstream LLM failure.
// Details is the provider's own error text and is the only internal
// detail ever surfaced to clients.
type GenerationError struct {
	Provider string
	Details  string
}

// Error implements the error interface
func (e *GenerationError) Error() string {
	if e.Provider == "" {
		return "generation failed: " + e.Details
	}
	return e.Provider + " generation failed: " + e.Details
}

// StatusCode implements the HTTPError interface
func (e *GenerationError) StatusCode() int {
	return http.StatusInternalServerError
}

// Is allows errors.Is() to match against ErrGenerationFailed
func (e *GenerationError) Is(target error) bool {
	return target == ErrGenerationFailed
}

// NewGenerationError builds a GenerationError for the named provider
func NewGenerationError(provider, details string) *GenerationError {
	return &GenerationError{Provider: provider, Details: details}
}
