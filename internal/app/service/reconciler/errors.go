package reconciler

import "errors"

var (
	// ErrMissingSignature and ErrInvalidSignature are terminal: the provider must not retry.
	ErrMissingSignature = errors.New("missing stripe signature")
	ErrInvalidSignature = errors.New("invalid stripe signature")
	// ErrInvalidPayload means the body was authentic but its object could not be decoded.
	ErrInvalidPayload = errors.New("invalid stripe event payload")
	// ErrHandlerFailure wraps store errors; the provider should redeliver.
	ErrHandlerFailure = errors.New("stripe event handler failed")
)
