package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docoutline/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "docoutline %s\n", version.Version)
		fmt.Fprintf(out, "  Go:     %s\n", version.GoVersion())
		fmt.Fprintf(out, "  Commit: %s\n", version.Commit)
		fmt.Fprintf(out, "  Date:   %s\n", version.Date)
	},
}
