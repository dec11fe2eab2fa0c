package domain

import "errors"

// Process exit codes, one per failure kind.
const (
	ExitOK               = 0
	ExitUsage            = 1
	ExitPathNotFound     = 2
	ExitPermissionDenied = 3
	ExitOpenFailed       = 4
	ExitWriteFailed      = 5
)

// ExitCode maps err to the process exit code of its kind.
// Errors outside the taxonomy are treated as usage errors.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrPathNotFound):
		return ExitPathNotFound
	case errors.Is(err, ErrPermissionDenied):
		return ExitPermissionDenied
	case errors.Is(err, ErrOpenFailed):
		return ExitOpenFailed
	case errors.Is(err, ErrWriteFailed):
		return ExitWriteFailed
	default:
		return ExitUsage
	}
}
