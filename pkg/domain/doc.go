/*
Package domain contains the error taxonomy of the DTMF control-file writer.

Every failure the writer can report is one of a small set of sentinel kinds.
Callers classify an error with errors.Is and turn it into a process exit code
with ExitCode. The package has no I/O and no external dependencies.

# Kinds

  - ErrMissingArgument: no sequence was supplied.
  - ErrInvalidSequence: strict mode found a non-DTMF symbol.
  - ErrPathNotFound: the control path does not exist.
  - ErrPermissionDenied: the control path exists but cannot be opened for writing.
  - ErrOpenFailed: any other open failure, including the blocking fallback.
  - ErrWriteFailed: the write to the opened control path failed.
*/
package domain
