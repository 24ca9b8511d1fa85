package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// Error taxonomy shared by the generation, image and publish workflows.
// Handlers map each kind onto an HTTP status at the gin boundary; workflow
// code only ever deals in these types.

// ValidationError marks missing or invalid caller input. User-correctable.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ConfigurationError marks a missing API key or credential. Operator-facing.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string { return e.Message }

func NewConfigurationError(format string, args ...interface{}) *ConfigurationError {
	return &ConfigurationError{Message: fmt.Sprintf(format, args...)}
}

// UpstreamError carries a non-2xx status and body from a third-party API.
// Never retried automatically.
type UpstreamError struct {
	API        string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.API, e.StatusCode, e.Body)
}

// NotConnectedError means the user has no stored LinkedIn token.
type NotConnectedError struct{}

func (e *NotConnectedError) Error() string {
	return "no LinkedIn connection found, please connect your account"
}

// TokenExpiredError means LinkedIn rejected the stored token. The token row
// is deleted before this is returned, forcing a reconnect.
type TokenExpiredError struct{}

func (e *TokenExpiredError) Error() string {
	return "LinkedIn token expired, please reconnect your account"
}

// PersistenceError wraps a failed read/write against the store.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func NewPersistenceError(op string, err error) *PersistenceError {
	return &PersistenceError{Op: op, Err: err}
}

// HttpStatusFromError maps the taxonomy onto response codes. Wrapped errors
// are unwrapped first so workflow code is free to annotate with pkg/errors.
func HttpStatusFromError(err error) int {
	var (
		validation    *ValidationError
		notConnected  *NotConnectedError
		tokenExpired  *TokenExpiredError
		upstream      *UpstreamError
		configuration *ConfigurationError
		persistence   *PersistenceError
	)
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &notConnected), errors.As(err, &tokenExpired):
		return http.StatusUnauthorized
	case errors.As(err, &upstream):
		return http.StatusBadGateway
	case errors.As(err, &configuration), errors.As(err, &persistence):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
