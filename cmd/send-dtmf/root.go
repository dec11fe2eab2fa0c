package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aretw0/senddtmf/internal/cli"
	"github.com/aretw0/senddtmf/internal/config"
	"github.com/aretw0/senddtmf/internal/logging"
	"github.com/aretw0/senddtmf/pkg/ctrlfile"
	"github.com/aretw0/senddtmf/pkg/domain"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// flagError marks a command line cobra could not parse.
type flagError struct{ err error }

func (e *flagError) Error() string { return e.err.Error() }
func (e *flagError) Unwrap() error { return e.err }

// newRootCmd builds the command tree. The exit code of the command is stored in *code.
func newRootCmd(argv []string, code *int) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "send-dtmf [flags] [--] <dtmf-sequence>",
		Short: "Write a DTMF sequence to the SvxLink control file",
		Long: `send-dtmf writes the raw bytes of a DTMF sequence into the PTY or FIFO that
SvxLink exposes for DTMF injection, so the service plays the tones.

Subcommands are only recognized as the first argument. A sequence that starts
with "-" is sent as is unless it names a flag; use "--" to be explicit.

Exit codes: 0 sent, 1 usage, 2 control path missing, 3 permission denied,
4 open failed, 5 write failed.`,
		Example: `  sudo -u svxlink send-dtmf "*123#"
  send-dtmf --path /tmp/dtmf_ctrl -- -1`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}

			sigCtx := cli.NewSignalContext(cmd.Context())
			defer sigCtx.Cancel()

			*code = cli.RunSend(sigCtx, cli.SendOptions{
				Config: cfg,
				Argv:   argv,
				Args:   args,
				Stdout: cmd.OutOrStdout(),
				Signal: sigCtx.Signal,
			})
			return nil
		},
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &flagError{err: err}
	})

	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "YAML config file")
	flags.StringP("path", "p", ctrlfile.DefaultPath, "Control file (PTY or FIFO) created by SvxLink")
	flags.Duration("settle", ctrlfile.DefaultSettle, "Pause after writing before closing the control file")
	flags.Duration("open-timeout", 0, "Give up waiting for a reader after this long (0 waits forever; serve defaults to 10s)")
	flags.Bool("strict", false, "Reject sequences containing non-DTMF symbols")
	flags.String("metrics-file", "", "Write Prometheus metrics to this node_exporter textfile")
	flags.Bool("debug", false, "Enable debug logging on stderr")
	flags.String("log-format", string(logging.FormatText), "Debug log format (text or json)")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newServeCmd(code))
	rootCmd.AddCommand(newMCPCmd(code))
	return rootCmd
}

// sequenceArgs rewrites args so that positional arguments reach the root
// command as DTMF sequences. Flags keep their place; everything else goes
// after a "--" so cobra neither parses "-1" as a flag nor "help" as a command.
// A first argument naming a subcommand leaves args untouched.
func sequenceArgs(rootCmd *cobra.Command, args []string) []string {
	if len(args) == 0 {
		return args
	}
	if args[0] == "help" {
		return args
	}
	for _, sub := range rootCmd.Commands() {
		if sub.Name() == args[0] || sub.HasAlias(args[0]) {
			return args
		}
	}

	rootCmd.InitDefaultHelpFlag()
	lookup := func(name string) *pflag.Flag {
		if f := rootCmd.Flags().Lookup(name); f != nil {
			return f
		}
		return rootCmd.PersistentFlags().Lookup(name)
	}
	shorthand := func(name string) *pflag.Flag {
		if f := rootCmd.Flags().ShorthandLookup(name); f != nil {
			return f
		}
		return rootCmd.PersistentFlags().ShorthandLookup(name)
	}

	var flagArgs, positional []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--":
			positional = append(positional, args[i+1:]...)
			i = len(args)
		case strings.HasPrefix(arg, "--"):
			// Unknown long flags stay flags so cobra reports them.
			flagArgs = append(flagArgs, arg)
			name, _, hasValue := strings.Cut(arg[2:], "=")
			if f := lookup(name); f != nil && !hasValue && f.NoOptDefVal == "" && i+1 < len(args) {
				i++
				flagArgs = append(flagArgs, args[i])
			}
		case strings.HasPrefix(arg, "-") && len(arg) > 1 && shorthand(arg[1:2]) != nil:
			flagArgs = append(flagArgs, arg)
			if f := shorthand(arg[1:2]); len(arg) == 2 && f.NoOptDefVal == "" && i+1 < len(args) {
				i++
				flagArgs = append(flagArgs, args[i])
			}
		default:
			positional = append(positional, arg)
		}
	}

	if len(positional) == 0 {
		return flagArgs
	}
	return append(append(flagArgs, "--"), positional...)
}

// resolveConfig layers explicitly set flags over the config file and defaults.
func resolveConfig(cmd *cobra.Command) (config.Config, error) {
	flags := cmd.Flags()
	configPath, _ := flags.GetString("config")

	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, err
	}

	if flags.Changed("path") {
		cfg.ControlPath, _ = flags.GetString("path")
	}
	if flags.Changed("settle") {
		cfg.Settle, _ = flags.GetDuration("settle")
	}
	if flags.Changed("open-timeout") {
		cfg.OpenTimeout, _ = flags.GetDuration("open-timeout")
	}
	if flags.Changed("strict") {
		cfg.Strict, _ = flags.GetBool("strict")
	}
	if flags.Changed("metrics-file") {
		cfg.MetricsFile, _ = flags.GetString("metrics-file")
	}
	if flags.Changed("debug") {
		cfg.Debug, _ = flags.GetBool("debug")
	}
	if flags.Changed("log-format") {
		format, _ := flags.GetString("log-format")
		cfg.LogFormat = logging.Format(format)
	}

	return cfg, cfg.Validate()
}

// run executes the command line argv and returns the process exit code.
func run(ctx context.Context, argv []string, stdout io.Writer) int {
	code := domain.ExitOK
	rootCmd := newRootCmd(argv, &code)
	rootCmd.SetArgs(sequenceArgs(rootCmd, argv[1:]))
	rootCmd.SetOut(stdout)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		var fe *flagError
		if errors.As(err, &fe) {
			cli.NewReporter(stdout).FlagError(argv[0], fe.err)
		} else {
			fmt.Fprintf(stdout, "Error: %v\n", err)
		}
		return domain.ExitUsage
	}
	return code
}

// Execute runs the command with the process arguments and exits.
func Execute() {
	os.Exit(run(context.Background(), os.Args, os.Stdout))
}
