package cli

import (
	"github.com/spf13/cobra"
)

var version = "0.1.0"

// NewRootCmd builds the hc command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "hc",
		Short:   "A minimal HTTP/1.1 client",
		Version: version,
		Long: `hc speaks plain HTTP/1.1 over a TCP socket: it builds the request
bytes itself, reads the response head and decodes fixed-length or chunked
bodies, and reports status, headers, body and per-phase timing.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// If no subcommand is provided, print help
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output and debug logging")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored output")

	rootCmd.AddCommand(newFetchCmd())
	return rootCmd
}

// Execute runs the root command with the process arguments. It is called
// once by main.main().
func Execute() error {
	return NewRootCmd().Execute()
}
