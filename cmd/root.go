package cmd

import (
	"github.com/spf13/cobra"
)

// NewRootCmd assembles the vidaview command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "vidaview",
		Short:         "Rental booking and payment engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		ServeCmd(),
		WorkerCmd(),
		MigrateCmd(),
		SweepCmd(),
	)
	return rootCmd
}
