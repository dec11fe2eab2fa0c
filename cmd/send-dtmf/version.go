package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/senddtmf"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of send-dtmf",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "send-dtmf version %s\n", strings.TrimSpace(senddtmf.Version))
		},
	}
}
