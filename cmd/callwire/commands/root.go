// Package commands implements the callwire CLI's subcommand tree.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/coreframe/callwire/pkg/logger"
)

// Flags stores global flag values accessible by subcommands.
var Flags = &GlobalFlags{}

// GlobalFlags holds flag values shared across all subcommands.
type GlobalFlags struct {
	LogLevel string
	LogJSON  bool
}

// Root builds the callwire root command and its full subcommand tree.
func Root() *cobra.Command {
	root := &cobra.Command{
		Use:   "callwire",
		Short: "Inspect and build CallRequest/CallResponse wire frames",
		Long: `callwire is a developer tool for the call-frame wire codec.

It can decode raw frame bytes into a human-readable inspection report,
encode a frame from a JSON description, and run a small in-process demo
server that exercises the dispatch worker pool and rate limiter.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			format := "text"
			if Flags.LogJSON {
				format = "json"
			}
			return logger.Init(logger.Config{Level: Flags.LogLevel, Format: format, Output: "stderr"})
		},
	}

	root.PersistentFlags().StringVar(&Flags.LogLevel, "log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().BoolVar(&Flags.LogJSON, "log-json", false, "emit logs as JSON")

	root.AddCommand(inspectCmd)
	root.AddCommand(encodeCmd)
	root.AddCommand(decodeCmd)
	root.AddCommand(serveDemoCmd)
	root.AddCommand(completionCmd)

	return root
}
