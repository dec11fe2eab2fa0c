package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aretw0/senddtmf/pkg/domain"
	"github.com/muesli/termenv"
)

// ServiceAccount is the account the radio-link service runs under.
const ServiceAccount = "svxlink"

// Reporter prints one human-readable line (or two) per outcome.
// Colors are only emitted when the destination is a color-capable terminal.
type Reporter struct {
	out *termenv.Output
}

// NewReporter creates a Reporter writing to w.
func NewReporter(w io.Writer) *Reporter {
	return &Reporter{out: termenv.NewOutput(w)}
}

func (r *Reporter) styled(hex, format string, args ...any) termenv.Style {
	return r.out.String(fmt.Sprintf(format, args...)).Foreground(r.out.Color(hex))
}

func (r *Reporter) println(s fmt.Stringer) {
	fmt.Fprintln(r.out, s.String())
}

func (r *Reporter) plain(format string, args ...any) {
	fmt.Fprintf(r.out, format+"\n", args...)
}

// Usage prints the invocation synopsis.
func (r *Reporter) Usage(prog string) {
	r.plain("Usage: %s [flags] [--] <DTMF-sequence>", prog)
	r.plain("Example: sudo -u %s %s \"*123#\"", ServiceAccount, prog)
}

// FlagError reports a command line that could not be parsed.
func (r *Reporter) FlagError(prog string, err error) {
	r.println(r.styled("#f87171", "Error: %v", err))
	r.plain("Sequences that look like flags go after --: %s -- <DTMF-sequence>", prog)
}

// Interrupted reports a blocking open abandoned because of sig.
func (r *Reporter) Interrupted(path string, sig os.Signal) {
	r.println(r.styled("#fbbf24", "Interrupted by %v while waiting for a reader on %s", sig, path))
}

// InvalidSequence reports a strict-mode rejection.
func (r *Reporter) InvalidSequence(err error) {
	r.println(r.styled("#f87171", "Error: %v", err))
}

// Sent confirms a delivered sequence.
func (r *Reporter) Sent(seq string) {
	r.println(r.styled("#34d399", "Sent DTMF sequence: %s", seq))
}

// Failure prints the diagnostic for a Send error. argv is echoed back in the
// privilege hint of a permission failure.
func (r *Reporter) Failure(err error, path string, argv []string) {
	cause := causeOf(err)
	switch domain.ExitCode(err) {
	case domain.ExitPathNotFound:
		r.println(r.styled("#f87171", "Error: %s does not exist. Is SvxLink running and configured to create the PTY/FIFO?", path))
	case domain.ExitPermissionDenied:
		r.println(r.styled("#f87171", "Permission denied opening %s: %v", path, cause))
		r.println(r.styled("#fbbf24", "Try: sudo -u %s %s", ServiceAccount, strings.Join(argv, " ")))
	case domain.ExitOpenFailed:
		r.println(r.styled("#f87171", "Failed to open %s: %v", path, cause))
	case domain.ExitWriteFailed:
		r.println(r.styled("#f87171", "Error writing to %s: %v", path, cause))
	default:
		r.println(r.styled("#f87171", "Error: %v", err))
	}
}

// causeOf returns the OS-level cause of a SendError, or err itself.
func causeOf(err error) error {
	var se *domain.SendError
	if errors.As(err, &se) && se.Err != nil {
		return se.Err
	}
	return err
}
