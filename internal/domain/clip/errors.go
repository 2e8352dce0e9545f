package clip

import "errors"

var (
	// ErrClipNotFound indicates the clip doesn't exist.
	ErrClipNotFound = errors.New("clip not found")
	// ErrPayloadTooLarge indicates a payload over the per-clip ceiling.
	ErrPayloadTooLarge = errors.New("payload exceeds per-clip size ceiling")
	// ErrStoreUnavailable indicates the persistence layer could not be
	// opened or written. The underlying cause is logged, not surfaced.
	ErrStoreUnavailable = errors.New("clip store unavailable")
	// ErrInvalidInput indicates invalid input for clip operations.
	ErrInvalidInput = errors.New("invalid clip input")
)
