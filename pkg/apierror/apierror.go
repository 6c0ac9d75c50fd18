// Package apierror defines the closed set of error kinds surfaced by the
// client: validation, authentication, network, and generic API errors.
//
// Validation errors are always raised locally, before any network call.
// The remaining kinds are produced by the transport layer when it
// classifies a response; the workflow engine passes them through
// untouched inside step-tagged error records.
package apierror

import (
	"errors"
	"fmt"
)

// ValidationError indicates a malformed or incomplete workflow
// construction: empty parts, a missing required image dimension, double
// execution, or an invalid file-input shape.
type ValidationError struct {
	Message string
	Details map[string]any
}

func NewValidationError(message string, details map[string]any) *ValidationError {
	return &ValidationError{Message: message, Details: details}
}

func (e *ValidationError) Error() string {
	return e.Message
}

// AuthenticationError indicates the remote service rejected the
// credential (401/403).
type AuthenticationError struct {
	Message    string
	StatusCode int
}

func (e *AuthenticationError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
	}
	return e.Message
}

// NetworkError indicates a transport-level failure (connection, DNS,
// timeout) with no interpretable response. The message never carries
// credential material.
type NetworkError struct {
	Message string
	Err     error
}

func (e *NetworkError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// APIError indicates a well-formed error response from the remote
// service for reasons other than authentication: quota, instructions
// rejected server-side, unsupported operations.
type APIError struct {
	Message      string
	StatusCode   int
	ResponseBody []byte
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
	}
	return e.Message
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsAuthentication reports whether err is (or wraps) an AuthenticationError.
func IsAuthentication(err error) bool {
	var target *AuthenticationError
	return errors.As(err, &target)
}

// IsNetwork reports whether err is (or wraps) a NetworkError.
func IsNetwork(err error) bool {
	var target *NetworkError
	return errors.As(err, &target)
}

// IsAPI reports whether err is (or wraps) an APIError.
func IsAPI(err error) bool {
	var target *APIError
	return errors.As(err, &target)
}
