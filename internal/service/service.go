// Package service is the single entry point through which every front end
// (command line, HTTP, MCP) delivers DTMF sequences.
package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/senddtmf/internal/logging"
	"github.com/aretw0/senddtmf/internal/metrics"
	"github.com/aretw0/senddtmf/pkg/ctrlfile"
	"github.com/aretw0/senddtmf/pkg/domain"
	"github.com/aretw0/senddtmf/pkg/dtmf"
)

// Service validates (in strict mode), serializes and records deliveries to one control path.
type Service struct {
	writer   *ctrlfile.Writer
	strict   bool
	recorder *metrics.Recorder
	logger   *slog.Logger

	mu sync.Mutex // the control path is a single-writer channel
}

// Option configures the Service.
type Option func(*Service)

// WithStrict enables DTMF symbol validation.
func WithStrict(strict bool) Option {
	return func(s *Service) {
		s.strict = strict
	}
}

// WithRecorder records every attempt in r.
func WithRecorder(r *metrics.Recorder) Option {
	return func(s *Service) {
		s.recorder = r
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// New creates a Service around writer.
func New(writer *ctrlfile.Writer, opts ...Option) *Service {
	s := &Service{
		writer: writer,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the control path deliveries go to.
func (s *Service) Path() string {
	return s.writer.Path()
}

// Send delivers digits. Concurrent calls are written one after another, never interleaved.
func (s *Service) Send(ctx context.Context, digits string) (ctrlfile.Report, error) {
	started := time.Now()
	rep, err := s.send(ctx, digits)
	if s.recorder != nil {
		s.recorder.Observe(metrics.Outcome(err), rep.OpenWait, rep.Written, started)
	}
	if err != nil {
		s.logger.Debug("Send failed", "path", s.Path(), "outcome", metrics.Outcome(err), "error", err)
	} else {
		s.logger.Info("Sequence sent", "path", s.Path(), "bytes", rep.Written, "blocked", rep.Blocked)
	}
	return rep, err
}

func (s *Service) send(ctx context.Context, digits string) (ctrlfile.Report, error) {
	if digits == "" {
		return ctrlfile.Report{}, domain.ErrMissingArgument
	}
	if s.strict {
		if err := dtmf.Validate(digits); err != nil {
			return ctrlfile.Report{}, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return ctrlfile.Report{}, domain.NewSendError(domain.ErrOpenFailed, s.Path(), err)
	}
	return s.writer.Send(ctx, digits)
}
