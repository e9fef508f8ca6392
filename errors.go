package cvtcolor

import (
	"errors"
	"fmt"
)

// Status classifies the outcome of a conversion call.
type Status int

const (
	// StatusSuccess means every output byte of the logical image was written.
	StatusSuccess Status = iota

	// StatusInvalidValue means a precondition failed and nothing was written.
	StatusInvalidValue

	// StatusLaunchFailure means the execution grid could not be started.
	StatusLaunchFailure

	// StatusExecutionFailure means the grid started but did not complete.
	// Output contents are unspecified.
	StatusExecutionFailure
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusInvalidValue:
		return "invalid value"
	case StatusLaunchFailure:
		return "launch failure"
	case StatusExecutionFailure:
		return "execution failure"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Precondition errors. They are always wrapped in an *Error with
// StatusInvalidValue.
var (
	// ErrNilBuffer is returned when a plane slice is nil or empty.
	ErrNilBuffer = errors.New("cvtcolor: nil or empty buffer")

	// ErrInvalidDimensions is returned for non-positive or overflowing geometry.
	ErrInvalidDimensions = errors.New("cvtcolor: invalid frame dimensions")

	// ErrOddDimensions is returned when width or height is odd.
	ErrOddDimensions = errors.New("cvtcolor: width and height must be even")

	// ErrPitchTooSmall is returned when pitch < 3*width.
	ErrPitchTooSmall = errors.New("cvtcolor: pitch smaller than packed RGB row")

	// ErrBufferTooSmall is returned when a plane slice is shorter than the
	// geometry requires.
	ErrBufferTooSmall = errors.New("cvtcolor: buffer too small for frame geometry")

	// ErrUnsupportedColorSpec is returned for unknown Matrix or Range values.
	ErrUnsupportedColorSpec = errors.New("cvtcolor: unsupported color spec")

	// ErrClosed is returned by a Converter after Close.
	ErrClosed = errors.New("cvtcolor: converter is closed")
)

// Error is the error type returned by conversion calls.
//
// Err is the underlying cause: one of the precondition sentinels above, an
// accelerator error or a recovered CPU work item failure.
type Error struct {
	Op     string
	Status Status
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v (%s)", e.Op, e.Err, e.Status)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

// StatusOf maps an error returned by this package to its Status.
// nil maps to StatusSuccess. Errors that carry no status (for example a bare
// error from a third-party accelerator) map to StatusExecutionFailure.
func StatusOf(err error) Status {
	if err == nil {
		return StatusSuccess
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	if isPrecondition(err) {
		return StatusInvalidValue
	}
	return StatusExecutionFailure
}

func isPrecondition(err error) bool {
	for _, target := range []error{
		ErrNilBuffer, ErrInvalidDimensions, ErrOddDimensions,
		ErrPitchTooSmall, ErrBufferTooSmall, ErrUnsupportedColorSpec, ErrClosed,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func invalid(op string, err error) *Error {
	return &Error{Op: op, Status: StatusInvalidValue, Err: err}
}
