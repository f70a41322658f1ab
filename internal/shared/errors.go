package shared

import (
	"errors"
	"fmt"
)

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Failure taxonomy surfaced by workflows
	ErrAuthRequired = fmt.Errorf("authentication required")
	ErrNotFound     = fmt.Errorf("not found")
	ErrValidation   = fmt.Errorf("validation failed")
	ErrNetwork      = fmt.Errorf("network failure")
	ErrUpstream     = fmt.Errorf("upstream failure")

	ErrTimeout            = fmt.Errorf("operation timed out")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")

	// Input validation errors
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)

// ValidationError is a local precondition failure. Its message is shown to the user verbatim.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Unwrap lets errors.Is(err, ErrValidation) match.
func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError builds a [ValidationError] for field.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// Classify returns the taxonomy sentinel wrapped by err, or nil when err is nil.
//
// Errors that match none of the sentinels are treated as [ErrUpstream].
func Classify(err error) error {
	if err == nil {
		return nil
	}
	for _, target := range []error{ErrValidation, ErrAuthRequired, ErrNotFound, ErrNetwork, ErrUpstream} {
		if errors.Is(err, target) {
			return target
		}
	}
	return ErrUpstream
}

// UserMessage maps err to the status line shown to the user.
func UserMessage(err error) string {
	var verr *ValidationError
	switch Classify(err) {
	case nil:
		return ""
	case ErrValidation:
		if errors.As(err, &verr) {
			return verr.Message
		}
		return err.Error()
	case ErrAuthRequired:
		return "Your session has expired. Please log in again."
	case ErrNotFound:
		return "That playlist no longer exists."
	case ErrNetwork:
		return "Could not reach the server. Please try again."
	default:
		return "An error occurred"
	}
}
