package domain

import (
	"errors"
	"fmt"
)

// ErrMissingArgument is returned when no DTMF sequence was given.
var ErrMissingArgument = errors.New("missing DTMF sequence")

// ErrInvalidSequence is returned in strict mode when the sequence contains a non-DTMF symbol.
var ErrInvalidSequence = errors.New("invalid DTMF sequence")

// ErrPathNotFound is returned when the control path does not exist.
var ErrPathNotFound = errors.New("control path does not exist")

// ErrPermissionDenied is returned when the control path cannot be opened due to permissions.
var ErrPermissionDenied = errors.New("permission denied")

// ErrOpenFailed is returned for every other failure to open the control path.
var ErrOpenFailed = errors.New("open failed")

// ErrWriteFailed is returned when writing the sequence to the control path fails.
var ErrWriteFailed = errors.New("write failed")

// SendError ties a failure kind to the control path and the underlying cause.
type SendError struct {
	Kind error
	Path string
	Err  error
}

// NewSendError wraps cause as a failure of the given kind on path.
func NewSendError(kind error, path string, cause error) *SendError {
	return &SendError{Kind: kind, Path: path, Err: cause}
}

func (e *SendError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Path, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Path, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *SendError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
