package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/salesml/core/model"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the salesml version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "salesml %s (weights format %s, %s)\n",
				version, model.WeightsVersion, runtime.Version())
		},
	}
}
