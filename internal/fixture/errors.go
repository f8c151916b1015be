package fixture

import "errors"

var (
	// ErrNotReady is the outcome error when a readiness check returns false.
	ErrNotReady = errors.New("not ready")
	// ErrNoLoader is returned when a probe has no Load function.
	ErrNoLoader = errors.New("probe has no loader")
	// ErrClosed is the outcome error of a session closed before first use.
	ErrClosed = errors.New("session closed")
)
