/*
Package senddtmf injects DTMF sequences into a radio-link control service.

SvxLink can expose a PTY or FIFO (by default /dev/shm/dtmf_ctrl) through which
other processes feed it DTMF digits to play. The send-dtmf command writes one
sequence into that control file and reports the outcome with a distinct exit
code, so it can be driven from shell scripts, cron jobs or a web backend.

# Layout

  - pkg/ctrlfile: the control-file writer (stat, two-step open, write, settle, close).
  - pkg/domain: failure kinds and their exit codes.
  - pkg/dtmf: the DTMF keypad alphabet, used by the opt-in strict mode.
  - internal/service: serializes deliveries from every front end.
  - internal/adapters/http, internal/adapters/mcp: the HTTP API and the MCP tool.
  - cmd/send-dtmf: the command-line entrypoint, with serve and mcp subcommands.

# Usage

	sudo -u svxlink send-dtmf "*123#"
	send-dtmf -- -1
	sudo -u svxlink send-dtmf serve --addr 127.0.0.1:8080

Library consumers can use the writer directly:

	w := ctrlfile.New(ctrlfile.DefaultPath)
	if _, err := w.Send(ctx, "*123#"); err != nil {
		os.Exit(domain.ExitCode(err))
	}
*/
package senddtmf
