package monodraw

import "errors"

// Every operation reports failure through one of these sentinel values,
// possibly wrapped with context. Compare with errors.Is.
var (
	// ErrNotInitialized is returned when a Presenter whose construction
	// failed (or a zero Presenter) is used. The condition is permanent
	// for that instance.
	ErrNotInitialized = errors.New("monodraw: not initialized")

	// ErrInvalidArgument is returned for invalid caller input, such as a
	// zero-area present region or EndFrame without an open frame.
	ErrInvalidArgument = errors.New("monodraw: invalid argument")

	// ErrBadState is returned for protocol violations, such as a second
	// backend Init or a transfer-done signal with nothing outstanding.
	ErrBadState = errors.New("monodraw: invalid state")

	// ErrSize is returned when a frame or stride does not match the
	// configured display, or when caller storage cannot hold both
	// framebuffers.
	ErrSize = errors.New("monodraw: size mismatch")

	// ErrBusy is returned for a reentrant BeginFrame and for a submit
	// while an asynchronous transfer is still outstanding.
	ErrBusy = errors.New("monodraw: busy")

	// ErrNotSupported is returned when the backend lacks the capability
	// an operation requires.
	ErrNotSupported = errors.New("monodraw: not supported")
)
