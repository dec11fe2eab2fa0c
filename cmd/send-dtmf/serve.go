package main

import (
	"os"

	"github.com/aretw0/senddtmf/internal/cli"
	"github.com/spf13/cobra"
)

func newServeCmd(code *int) *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Serves POST /api/dtmf, GET /api/version and /metrics, writing every accepted
sequence to the control file. Requests are written one at a time.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			addr, _ := cmd.Flags().GetString("addr")

			sigCtx := cli.NewSignalContext(cmd.Context())
			defer sigCtx.Cancel()

			*code = cli.RunServe(sigCtx, cli.ServeOptions{
				Config: cfg,
				Addr:   addr,
				Stdout: cmd.OutOrStdout(),
				Signal: sigCtx.Signal,
			})
			return nil
		},
	}
	serveCmd.Flags().String("addr", ":8080", "Address to listen on")
	return serveCmd
}

func newMCPCmd(code *int) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Run the Model Context Protocol (MCP) server on stdio",
		Long: `Exposes a send_dtmf tool to MCP clients over Standard Input/Output.
Logs go to stderr so they do not corrupt the JSON-RPC stream.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			*code = cli.RunMCP(cli.MCPOptions{Config: cfg, Stderr: os.Stderr})
			return nil
		},
	}
}
