// Package fgerr holds the error taxonomy shared by the extraction pipeline.
//
// Components wrap these sentinels with fmt.Errorf("...: %w", ...) and callers
// classify with errors.Is. Only the front-ends turn them into numbers.
package fgerr

import "errors"

var (
	// ErrInvalidInput covers bad images, bad parameters and degenerate
	// rectangles. Always reported before the optimizer runs.
	ErrInvalidInput = errors.New("invalid input")

	// ErrLoad is returned when the input image cannot be read or decoded.
	ErrLoad error = &subError{msg: "image could not be loaded", parent: ErrInvalidInput}

	// ErrRectTooSmall is returned when an interactively drawn rectangle is
	// narrower or shorter than two pixels.
	ErrRectTooSmall error = &subError{msg: "rectangle too small", parent: ErrInvalidInput}

	// ErrSegmentation marks a fault raised by the optimizer.
	ErrSegmentation = errors.New("segmentation failed")

	// ErrIO marks a failed output write.
	ErrIO = errors.New("output write failed")

	// ErrUserCancelled is not a failure: the user aborted before confirming.
	ErrUserCancelled = errors.New("cancelled by user")
)

// subError is a sentinel that also matches its parent kind.
type subError struct {
	msg    string
	parent error
}

func (e *subError) Error() string { return e.msg }
func (e *subError) Unwrap() error { return e.parent }

// Invalid returns an error matching ErrInvalidInput with the given message.
func Invalid(msg string) error {
	return &subError{msg: "invalid input: " + msg, parent: ErrInvalidInput}
}
