package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/senddtmf/internal/config"
	"github.com/aretw0/senddtmf/internal/logging"
	"github.com/aretw0/senddtmf/internal/metrics"
	"github.com/aretw0/senddtmf/internal/service"
	"github.com/aretw0/senddtmf/pkg/ctrlfile"
	"github.com/aretw0/senddtmf/pkg/domain"
)

// SendOptions carries everything a single invocation needs.
type SendOptions struct {
	Config config.Config
	// Argv is the full command line, used for the usage and privilege hints.
	Argv []string
	// Args are the positional arguments; the first one is the sequence.
	Args   []string
	Stdout io.Writer
	// Logger overrides the logger derived from Config (tests).
	Logger *slog.Logger
	// Signal reports the signal that cancelled the context, if any.
	Signal func() os.Signal
}

// RunSend delivers the sequence in opts.Args[0] and returns the process exit code.
// Every outcome prints a message to opts.Stdout.
func RunSend(ctx context.Context, opts SendOptions) int {
	cfg := opts.Config
	logger := opts.Logger
	if logger == nil {
		logger = createLogger(cfg.Debug, cfg.LogFormat)
	}
	reporter := NewReporter(opts.Stdout)

	prog := "send-dtmf"
	if len(opts.Argv) > 0 {
		prog = opts.Argv[0]
	}

	if len(opts.Args) == 0 || opts.Args[0] == "" {
		reporter.Usage(prog)
		return domain.ExitUsage
	}
	seq := opts.Args[0]

	var rec *metrics.Recorder
	if cfg.MetricsFile != "" {
		rec = metrics.New(cfg.ControlPath)
	}
	svc := newService(cfg, logger, rec)

	_, err := svc.Send(ctx, seq)
	sig := interruptedBy(err, opts.Signal)
	switch {
	case err == nil:
		reporter.Sent(seq)
	case errors.Is(err, domain.ErrInvalidSequence):
		reporter.InvalidSequence(err)
	case sig != nil:
		reporter.Interrupted(svc.Path(), sig)
	default:
		reporter.Failure(err, svc.Path(), opts.Argv)
	}

	if rec != nil {
		if werr := rec.WriteTextfile(cfg.MetricsFile); werr != nil {
			logger.Warn("Failed to write metrics textfile", "path", cfg.MetricsFile, "error", werr)
		}
	}

	return domain.ExitCode(err)
}

func newService(cfg config.Config, logger *slog.Logger, rec *metrics.Recorder) *service.Service {
	writer := ctrlfile.New(cfg.ControlPath, append(cfg.WriterOptions(), ctrlfile.WithLogger(logger))...)
	opts := []service.Option{
		service.WithStrict(cfg.Strict),
		service.WithLogger(logger),
	}
	if rec != nil {
		opts = append(opts, service.WithRecorder(rec))
	}
	return service.New(writer, opts...)
}

// interruptedBy returns the signal behind a cancelled blocking open, or nil.
func interruptedBy(err error, signal func() os.Signal) os.Signal {
	if signal == nil || !errors.Is(err, context.Canceled) {
		return nil
	}
	return signal()
}

// createLogger configures the application logger.
// In debug mode, it writes to Stderr (to separate from Stdout messages).
func createLogger(debug bool, format logging.Format) *slog.Logger {
	if debug {
		return logging.New(slog.LevelDebug, format)
	}
	return logging.NewNop()
}
