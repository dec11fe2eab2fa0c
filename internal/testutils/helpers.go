package testutils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

// MakeFIFO creates a named pipe called dtmf_ctrl in a temporary directory.
// It returns the absolute path and fails the test immediately on error.
func MakeFIFO(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "dtmf_ctrl")
	require.NoError(t, unix.Mkfifo(path, 0o600), "Failed to create FIFO")
	return path
}

// AttachReader opens the read end of the FIFO without waiting for a writer.
// The reader is closed when the test ends.
func AttachReader(t *testing.T, path string) *os.File {
	t.Helper()

	r, err := os.OpenFile(path, os.O_RDONLY|syscall.O_NONBLOCK, 0)
	require.NoError(t, err, "Failed to open FIFO for reading")
	t.Cleanup(func() { _ = r.Close() })
	return r
}

// ReadLater opens the FIFO for reading after delay and delivers everything read
// until the writer closes. A nil value means the open failed.
func ReadLater(path string, delay time.Duration) <-chan []byte {
	received := make(chan []byte, 1)
	go func() {
		time.Sleep(delay)
		f, err := os.OpenFile(path, os.O_RDONLY, 0)
		if err != nil {
			received <- nil
			return
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		received <- data
	}()
	return received
}

// Await waits for a ReadLater result, failing the test after five seconds.
func Await(t *testing.T, received <-chan []byte) []byte {
	t.Helper()

	select {
	case data := <-received:
		return data
	case <-time.After(5 * time.Second):
		t.Fatal("reader did not receive the sequence")
		return nil
	}
}

// ReleaseBlockedOpen briefly attaches a reader when the test ends, so a
// blocking open abandoned by the code under test can complete and close.
func ReleaseBlockedOpen(t *testing.T, path string) {
	t.Helper()

	t.Cleanup(func() {
		r, err := os.OpenFile(path, os.O_RDONLY|syscall.O_NONBLOCK, 0)
		if err == nil {
			time.Sleep(20 * time.Millisecond)
			_ = r.Close()
		}
	})
}

// OpenPTY allocates a pseudo-terminal pair and returns the master end and the
// slave path, as SvxLink does for its PTY control files. It skips the test
// when /dev/ptmx is unavailable.
func OpenPTY(t *testing.T) (*os.File, string) {
	t.Helper()

	fd, err := unix.Open("/dev/ptmx", unix.O_RDWR|unix.O_NOCTTY|unix.O_CLOEXEC, 0)
	if err != nil {
		t.Skipf("/dev/ptmx not available: %v", err)
	}
	master := os.NewFile(uintptr(fd), "/dev/ptmx")
	t.Cleanup(func() { _ = master.Close() })

	require.NoError(t, unix.IoctlSetPointerInt(fd, unix.TIOCSPTLCK, 0), "Failed to unlock PTY")
	n, err := unix.IoctlGetInt(fd, unix.TIOCGPTN)
	require.NoError(t, err, "Failed to get PTY number")

	// Hold a slave descriptor for the whole test, like the service does, and
	// switch it to raw mode so the bytes reach the master unchanged.
	slave, err := unix.Open(fmt.Sprintf("/dev/pts/%d", n), unix.O_RDWR|unix.O_NOCTTY|unix.O_CLOEXEC, 0)
	require.NoError(t, err, "Failed to open PTY slave")
	t.Cleanup(func() { _ = unix.Close(slave) })
	termios, err := unix.IoctlGetTermios(slave, unix.TCGETS)
	require.NoError(t, err)
	termios.Oflag &^= unix.OPOST
	termios.Lflag &^= unix.ECHO | unix.ICANON
	require.NoError(t, unix.IoctlSetTermios(slave, unix.TCSETS, termios))

	return master, fmt.Sprintf("/dev/pts/%d", n)
}

// AsUnprivileged runs fn with the effective uid of nobody when the test runs
// as root, so permission checks apply. For other users fn runs unchanged.
func AsUnprivileged(t *testing.T, fn func()) {
	t.Helper()

	if os.Geteuid() != 0 {
		fn()
		return
	}
	// Go applies set*id calls to every thread of the process.
	require.NoError(t, syscall.Seteuid(65534), "Failed to drop privileges")
	defer func() {
		require.NoError(t, syscall.Seteuid(0), "Failed to restore privileges")
	}()
	fn()
}

// PublicDir creates a temporary directory that other users can traverse.
func PublicDir(t *testing.T) string {
	t.Helper()

	dir, err := os.MkdirTemp("", "send-dtmf-")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(dir) })
	require.NoError(t, os.Chmod(dir, 0o755))
	return dir
}
