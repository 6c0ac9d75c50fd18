package apierror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessages(t *testing.T) {
	assert.EqualError(t, NewValidationError("workflow has no parts to execute", nil),
		"workflow has no parts to execute")

	assert.EqualError(t, &AuthenticationError{Message: "authentication failed", StatusCode: 401},
		"authentication failed (status 401)")
	assert.EqualError(t, &AuthenticationError{Message: "authentication failed"},
		"authentication failed")

	assert.EqualError(t, &NetworkError{Message: "request failed", Err: errors.New("connection reset")},
		"request failed: connection reset")

	assert.EqualError(t, &APIError{Message: "quota exceeded", StatusCode: 402},
		"quota exceeded (status 402)")
}

func TestKindPredicates(t *testing.T) {
	validation := NewValidationError("bad input", nil)
	auth := &AuthenticationError{Message: "denied"}
	network := &NetworkError{Message: "down"}
	api := &APIError{Message: "rejected"}

	assert.True(t, IsValidation(validation))
	assert.True(t, IsAuthentication(auth))
	assert.True(t, IsNetwork(network))
	assert.True(t, IsAPI(api))

	// Each predicate matches only its own kind.
	assert.False(t, IsValidation(auth))
	assert.False(t, IsAuthentication(api))
	assert.False(t, IsNetwork(validation))
	assert.False(t, IsAPI(network))
}

func TestPredicates_SeeThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("materialize asset_0: %w", &NetworkError{Message: "down"})
	assert.True(t, IsNetwork(wrapped))
	assert.False(t, IsNetwork(errors.New("down")))
}

func TestNetworkError_Unwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := &NetworkError{Message: "request failed", Err: cause}
	assert.True(t, errors.Is(err, cause))
}
