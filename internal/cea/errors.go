package cea

import "errors"

var (
	ErrNotFound            = errors.New("module not found")
	ErrMissingSymbol       = errors.New("missing symbol")
	ErrIncompatibleVersion = errors.New("incompatible version")
	ErrUnsupportedPlatform = errors.New("native loading is not supported on this platform")
)
