package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/luma/m2handler/cmd/gen"
	"github.com/luma/m2handler/internal/meta"
)

var RootCmd = &cobra.Command{
	Use:   "m2handler",
	Short: "A Mongrel2 handler",
	Long: `A Mongrel2 handler

Pulls requests from a Mongrel2 style front end over ZeroMQ and publishes
replies back to it.
`,
	SilenceUsage: true,
}

var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the build information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), meta.GetInfo().String())
	},
}

func init() {
	RootCmd.AddCommand(ServeCmd)
	RootCmd.AddCommand(VersionCmd)
	RootCmd.AddCommand(gen.RootCmd)
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
