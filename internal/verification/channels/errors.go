package channels

import (
	"errors"
	"fmt"
)

// ErrorCategory defines the normalized failure taxonomy for channel errors.
//
// All channel implementations classify failures into these categories so the
// session engine can make consistent decisions regardless of the underlying
// verification service or API shape.
type ErrorCategory string

const (
	// ErrorTimeout indicates the verification service took too long to respond.
	ErrorTimeout ErrorCategory = "timeout"

	// ErrorBadData indicates invalid input or malformed service data.
	ErrorBadData ErrorCategory = "bad_data"

	// ErrorAuthentication indicates credential or permission issues.
	ErrorAuthentication ErrorCategory = "authentication"

	// ErrorServiceOutage indicates the verification service is unavailable.
	ErrorServiceOutage ErrorCategory = "service_outage"

	// ErrorContractMismatch indicates the service response shape changed.
	ErrorContractMismatch ErrorCategory = "contract_mismatch"

	// ErrorNotFound indicates the identity record doesn't exist.
	ErrorNotFound ErrorCategory = "not_found"

	// ErrorRateLimited indicates too many requests.
	ErrorRateLimited ErrorCategory = "rate_limited"

	// ErrorPrecondition indicates a local precondition failed before any
	// network call was made (missing phone number, missing bank code,
	// malformed OTP code).
	ErrorPrecondition ErrorCategory = "precondition"

	// ErrorInternal indicates an unexpected internal error.
	ErrorInternal ErrorCategory = "internal"
)

// ChannelError wraps channel failures with normalized categorization.
//
// The structured type lets the session engine and handlers distinguish local
// validation failures from remote ones without inspecting error strings.
type ChannelError struct {
	Category   ErrorCategory
	Channel    Kind
	Message    string
	Underlying error
	Retryable  bool
}

// Error implements the error interface.
func (e *ChannelError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("channel %s [%s]: %s: %v", e.Channel, e.Category, e.Message, e.Underlying)
	}
	return fmt.Sprintf("channel %s [%s]: %s", e.Channel, e.Category, e.Message)
}

// Unwrap supports error unwrapping.
func (e *ChannelError) Unwrap() error {
	return e.Underlying
}

// NewError creates a normalized channel error with automatic retry classification.
//
// Transient failures (timeout, outage, rate-limited) are marked retryable;
// everything else requires a fresh, user-initiated action.
func NewError(category ErrorCategory, channel Kind, message string, underlying error) *ChannelError {
	retryable := category == ErrorTimeout ||
		category == ErrorServiceOutage ||
		category == ErrorRateLimited

	return &ChannelError{
		Category:   category,
		Channel:    channel,
		Message:    message,
		Underlying: underlying,
		Retryable:  retryable,
	}
}

// IsLocal reports whether an error was produced before any network call.
func IsLocal(err error) bool {
	return Category(err) == ErrorPrecondition
}

// Category extracts the error category from an error.
func Category(err error) ErrorCategory {
	var ce *ChannelError
	if errors.As(err, &ce) {
		return ce.Category
	}
	return ErrorInternal
}

// UserMessage extracts the user-facing failure description from an error.
func UserMessage(err error) string {
	var ce *ChannelError
	if errors.As(err, &ce) {
		return ce.Message
	}
	return "verification failed"
}
