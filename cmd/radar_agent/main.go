// Package main provides the entry point for the job radar CLI.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jonathan/job-radar/internal/ingest"
	"github.com/jonathan/job-radar/internal/scoring"
)

var rootCmd = &cobra.Command{
	Use:           "radar_agent",
	Short:         "Deterministic job posting scoring and diff pipeline",
	Long:          "radar_agent ingests job posting snapshots, scores them against a profile, diffs the result against the previous run and writes a replayable provenance report.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps failures onto the orchestrator contract: 2 for validation
// and missing-input problems the operator must fix, 3 for runtime failures.
func exitCode(err error) int {
	if errors.Is(err, ingest.ErrInvalidInput) || errors.Is(err, scoring.ErrInvalidProfile) {
		return 2
	}
	return 3
}
