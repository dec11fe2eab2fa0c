package ctrlfile

import (
	"log/slog"
	"time"
)

// DefaultPath is the control file SvxLink creates for DTMF injection.
const DefaultPath = "/dev/shm/dtmf_ctrl"

// DefaultSettle is the pause between a successful write and the close.
const DefaultSettle = 50 * time.Millisecond

// Option defines a functional option for configuring the Writer.
type Option func(*Writer)

// WithSettle sets the pause after a successful write. Zero disables it.
func WithSettle(d time.Duration) Option {
	return func(w *Writer) {
		w.settle = d
	}
}

// WithOpenTimeout bounds the blocking open used when no reader is attached.
// Zero (the default) waits until a reader appears or the context is done.
func WithOpenTimeout(d time.Duration) Option {
	return func(w *Writer) {
		w.openTimeout = d
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Writer) {
		w.logger = logger
	}
}
