package ctrlfile

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/aretw0/senddtmf/internal/logging"
	"github.com/aretw0/senddtmf/pkg/domain"
	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// errNoReader marks a non-blocking open that failed only because the FIFO has no reader yet.
var errNoReader = errors.New("no reader attached")

// Writer sends DTMF sequences to a single control path.
type Writer struct {
	path        string
	settle      time.Duration
	openTimeout time.Duration
	logger      *slog.Logger
}

// Report describes a delivery attempt. It is filled as far as the attempt got.
type Report struct {
	// Blocked is true when the non-blocking open found no reader and the blocking fallback ran.
	Blocked bool
	// OpenWait is the time spent opening the control path, both attempts included.
	OpenWait time.Duration
	// Terminal is true when the opened control path is a terminal (PTY slave).
	Terminal bool
	// Drained is true when the terminal output queue was flushed to the reader before closing.
	Drained bool
	// Written is the number of bytes written.
	Written int
}

// New creates a Writer for path. An empty path selects DefaultPath.
func New(path string, opts ...Option) *Writer {
	if path == "" {
		path = DefaultPath
	}
	w := &Writer{
		path:   path,
		settle: DefaultSettle,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Path returns the control path the Writer delivers to.
func (w *Writer) Path() string {
	return w.path
}

// Send writes the bytes of seq to the control path.
// The returned error, if any, unwraps to one of the domain failure kinds.
func (w *Writer) Send(ctx context.Context, seq string) (Report, error) {
	var rep Report
	if seq == "" {
		return rep, domain.ErrMissingArgument
	}

	if _, err := os.Stat(w.path); err != nil {
		return rep, domain.NewSendError(domain.ErrPathNotFound, w.path, err)
	}

	start := time.Now()
	fd, err := w.openNonBlocking()
	if errors.Is(err, errNoReader) {
		w.logger.Debug("No reader attached, waiting", "path", w.path, "timeout", w.openTimeout)
		rep.Blocked = true
		fd, err = w.openBlocking(ctx)
	}
	rep.OpenWait = time.Since(start)
	if err != nil {
		return rep, err
	}
	defer func(fd int) {
		_ = unix.Close(fd)
	}(fd)

	rep.Terminal = term.IsTerminal(fd)
	w.logger.Debug("Control path opened", "path", w.path, "blocked", rep.Blocked, "terminal", rep.Terminal, "wait", rep.OpenWait)

	rep.Written, err = writeAll(fd, []byte(seq))
	if err != nil {
		return rep, domain.NewSendError(domain.ErrWriteFailed, w.path, err)
	}
	w.logger.Debug("Sequence written", "path", w.path, "bytes", rep.Written)

	if rep.Terminal {
		// tcdrain: wait until the PTY master has taken the bytes off the slave's output queue.
		if err := unix.IoctlSetInt(fd, unix.TCSBRK, 1); err != nil {
			w.logger.Debug("Terminal drain failed", "path", w.path, "error", err)
		} else {
			rep.Drained = true
		}
	}

	if w.settle > 0 {
		time.Sleep(w.settle)
	}
	return rep, nil
}

// openNonBlocking is the first open attempt. A FIFO without a reader yields
// ENXIO on Linux; EAGAIN is accepted as the same condition.
func (w *Writer) openNonBlocking() (int, error) {
	fd, err := openRetry(w.path, unix.O_WRONLY|unix.O_NONBLOCK|unix.O_NOCTTY|unix.O_CLOEXEC)
	switch {
	case err == nil:
		// The descriptor is only non-blocking for the open; writes should not see EAGAIN.
		if err := unix.SetNonblock(fd, false); err != nil {
			_ = unix.Close(fd)
			return -1, domain.NewSendError(domain.ErrOpenFailed, w.path, err)
		}
		return fd, nil
	case errors.Is(err, unix.EACCES), errors.Is(err, unix.EPERM):
		return -1, domain.NewSendError(domain.ErrPermissionDenied, w.path, err)
	case errors.Is(err, unix.ENXIO), errors.Is(err, unix.EAGAIN):
		return -1, errNoReader
	default:
		return -1, domain.NewSendError(domain.ErrOpenFailed, w.path, err)
	}
}

type openResult struct {
	fd  int
	err error
}

// openBlocking is the fallback open. It waits for a reader until ctx is done
// or the open timeout expires. Every failure here is an open failure.
func (w *Writer) openBlocking(ctx context.Context) (int, error) {
	if w.openTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.openTimeout)
		defer cancel()
	}

	done := make(chan openResult, 1)
	go func() {
		fd, err := openRetry(w.path, unix.O_WRONLY|unix.O_NOCTTY|unix.O_CLOEXEC)
		done <- openResult{fd: fd, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			return -1, domain.NewSendError(domain.ErrOpenFailed, w.path, res.err)
		}
		return res.fd, nil
	case <-ctx.Done():
		// The open cannot be interrupted; release the descriptor if a reader shows up later.
		go func() {
			if res := <-done; res.err == nil {
				_ = unix.Close(res.fd)
			}
		}()
		return -1, domain.NewSendError(domain.ErrOpenFailed, w.path, ctx.Err())
	}
}

func openRetry(path string, flags int) (int, error) {
	for {
		fd, err := unix.Open(path, flags, 0)
		if err == unix.EINTR {
			continue
		}
		return fd, err
	}
}

func writeAll(fd int, b []byte) (int, error) {
	written := 0
	for written < len(b) {
		n, err := unix.Write(fd, b[written:])
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return written, err
		}
		if n == 0 {
			return written, io.ErrShortWrite
		}
		written += n
	}
	return written, nil
}
