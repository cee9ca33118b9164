package gen

import (
	"github.com/spf13/cobra"
)

var RootCmd = &cobra.Command{
	Use:   "gen",
	Short: "Generate documentation for m2handler",
	Long: `Generate documentation for m2handler

Usage
	m2handler gen man --dir man/
`,
}

func init() {
	RootCmd.AddCommand(ManPagesCmd)
}
