package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	httpAdapter "github.com/aretw0/senddtmf/internal/adapters/http"
	"github.com/aretw0/senddtmf/internal/adapters/mcp"
	"github.com/aretw0/senddtmf/internal/config"
	"github.com/aretw0/senddtmf/internal/metrics"
	"github.com/aretw0/senddtmf/pkg/domain"
)

// DefaultServeOpenTimeout bounds the wait for a reader per request when the
// config leaves open_timeout at zero. A server must not hold requests forever.
const DefaultServeOpenTimeout = 10 * time.Second

const shutdownTimeout = 5 * time.Second

// ServeOptions carries the settings of the HTTP server.
type ServeOptions struct {
	Config config.Config
	Addr   string
	// Listener overrides Addr (tests).
	Listener net.Listener
	Stdout   io.Writer
	Logger   *slog.Logger
	// Signal reports the signal that cancelled the context, if any.
	Signal func() os.Signal
}

// RunServe serves the HTTP API until ctx is cancelled and returns the process exit code.
func RunServe(ctx context.Context, opts ServeOptions) int {
	cfg := serverConfig(opts.Config)
	logger := opts.Logger
	if logger == nil {
		logger = createLogger(cfg.Debug, cfg.LogFormat)
	}

	rec := metrics.New(cfg.ControlPath)
	svc := newService(cfg, logger, rec)

	handler, err := httpAdapter.NewHandler(svc, httpAdapter.WithMetrics(rec), httpAdapter.WithLogger(logger))
	if err != nil {
		fmt.Fprintf(opts.Stdout, "Error initializing HTTP API: %v\n", err)
		return domain.ExitUsage
	}

	ln := opts.Listener
	if ln == nil {
		ln, err = net.Listen("tcp", opts.Addr)
		if err != nil {
			fmt.Fprintf(opts.Stdout, "Error listening on %s: %v\n", opts.Addr, err)
			return domain.ExitUsage
		}
	}

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		fmt.Fprintf(opts.Stdout, "Starting send-dtmf server on %s\n", ln.Addr())
		fmt.Fprintf(opts.Stdout, "Writing DTMF sequences to: %s\n", cfg.ControlPath)
		serverErrors <- srv.Serve(ln)
	}()

	code := domain.ExitOK
	select {
	case err := <-serverErrors:
		fmt.Fprintf(opts.Stdout, "Server error: %v\n", err)
		code = domain.ExitUsage

	case <-ctx.Done():
		var sig os.Signal
		if opts.Signal != nil {
			sig = opts.Signal()
		}
		fmt.Fprintf(opts.Stdout, "\nStart shutdown... Signal: %v\n", sig)

		// Give outstanding requests a deadline for completion.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			fmt.Fprintf(opts.Stdout, "Graceful shutdown did not complete in %v: %v\n", shutdownTimeout, err)
			if err := srv.Close(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				fmt.Fprintf(opts.Stdout, "Error killing server: %v\n", err)
			}
		}
		fmt.Fprintln(opts.Stdout, "send-dtmf server stopped gracefully")
	}

	if cfg.MetricsFile != "" {
		if err := rec.WriteTextfile(cfg.MetricsFile); err != nil {
			logger.Warn("Failed to write metrics textfile", "path", cfg.MetricsFile, "error", err)
		}
	}
	return code
}

// MCPOptions carries the settings of the MCP server.
type MCPOptions struct {
	Config config.Config
	Stderr io.Writer
	Logger *slog.Logger
}

// RunMCP serves the send_dtmf tool over stdio and returns the process exit code.
// Stdout belongs to the JSON-RPC stream, so messages go to Stderr.
func RunMCP(opts MCPOptions) int {
	cfg := serverConfig(opts.Config)
	logger := opts.Logger
	if logger == nil {
		logger = createLogger(cfg.Debug, cfg.LogFormat)
	}

	srv := mcp.NewServer(newService(cfg, logger, nil))
	logger.Info("Starting send-dtmf MCP server (stdio)", "path", cfg.ControlPath)
	if err := srv.ServeStdio(); err != nil {
		fmt.Fprintf(opts.Stderr, "MCP server execution failed: %v\n", err)
		return domain.ExitUsage
	}
	return domain.ExitOK
}

// serverConfig applies the per-request open timeout servers always need.
func serverConfig(cfg config.Config) config.Config {
	if cfg.OpenTimeout == 0 {
		cfg.OpenTimeout = DefaultServeOpenTimeout
	}
	return cfg
}
