package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// buildVersion/buildCommit/buildDate are overridden via -ldflags at release
// build time; "dev" is what a local `go build` reports.
var (
	buildVersion = "dev"
	buildCommit  = "unknown"
	buildDate    = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of summarizerd",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("version: %s\n", buildVersion)
		fmt.Printf("commit: %s\n", buildCommit)
		fmt.Printf("built at: %s\n", buildDate)
	},
}
