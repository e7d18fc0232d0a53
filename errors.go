package maskedit

import "errors"

// Error kinds returned by the editing engine. Wrapped errors carry
// operation context; use errors.Is to classify.
var (
	// ErrInvalidArgument reports a malformed argument: an inverted ID
	// range, inconsistent brush mode/ID combination, or bad dimensions.
	ErrInvalidArgument = errors.New("maskedit: invalid argument")

	// ErrNotFound reports a referenced object ID that is absent from
	// both the mask and the operation's own arguments.
	ErrNotFound = errors.New("maskedit: id not found")

	// ErrInvalidState reports a StrokeEngine method called in the
	// wrong state, such as EndStroke with no stroke in progress.
	ErrInvalidState = errors.New("maskedit: invalid state")
)
