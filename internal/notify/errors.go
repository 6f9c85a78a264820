package notify

import "errors"

var (
	// ErrUnavailable indicates the webhook endpoint could not be reached.
	ErrUnavailable = errors.New("notification endpoint unavailable")

	// ErrTimeout indicates delivery exceeded the configured timeout.
	ErrTimeout = errors.New("notification timed out")

	// ErrRetryExhausted indicates all retry attempts have been exhausted.
	ErrRetryExhausted = errors.New("notification retry attempts exhausted")
)
