package providers

import (
	"errors"
	"fmt"
)

// ErrorKind is the stable failure classification surfaced to callers.
type ErrorKind string

const (
	// ErrorKindInvalidRequest covers unknown model ids and descriptor-limit
	// violations. Always the caller's fault; never retried.
	ErrorKindInvalidRequest ErrorKind = "invalid_request"
	// ErrorKindMissingCredential means no key is configured for the required
	// provider. User-actionable; never retried.
	ErrorKindMissingCredential ErrorKind = "missing_credential"
	// ErrorKindProvider covers non-success responses and explicit failure
	// statuses from the external API.
	ErrorKindProvider ErrorKind = "provider_error"
	// ErrorKindUnexpectedState marks a poll response that could not be
	// classified into ready, not-ready, or failed.
	ErrorKindUnexpectedState ErrorKind = "unexpected_provider_state"
	// ErrorKindTimedOut means the polling budget ran out while the provider
	// still reported processing.
	ErrorKindTimedOut ErrorKind = "timed_out"
	// ErrorKindCancelled means the caller abandoned the request before a
	// terminal outcome.
	ErrorKindCancelled ErrorKind = "cancelled"
)

// Error is the typed failure crossing the adapter boundary.
type Error struct {
	Kind     ErrorKind
	Provider Kind
	Message  string
}

func (e *Error) Error() string {
	if e.Provider != "" {
		return fmt.Sprintf("%s: %s: %s", e.Provider, e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// NewProviderError builds a provider_error for a remote failure, preserving
// the provider's message text when present.
func NewProviderError(kind Kind, message string) *Error {
	return &Error{Kind: ErrorKindProvider, Provider: kind, Message: message}
}

// NewHTTPError builds the generic "HTTP {status}" provider_error used when a
// non-2xx response carried no parseable message.
func NewHTTPError(kind Kind, status int) *Error {
	return &Error{Kind: ErrorKindProvider, Provider: kind, Message: fmt.Sprintf("HTTP %d", status)}
}

// KindOf extracts the ErrorKind from an error chain, defaulting to
// provider_error for untyped failures (transport errors and the like are only
// ever observed after a network round trip).
func KindOf(err error) ErrorKind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ErrorKindProvider
}
