package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is stamped at build time via -ldflags.
var version = "dev"

var versionCommand = &cobra.Command{
	Use:   "version",
	Short: "Print the radar_agent version",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("radar_agent %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCommand)
}
