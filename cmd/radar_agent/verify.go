package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-radar/internal/report"
)

var verifyCommand = &cobra.Command{
	Use:   "verify <run_report.json>",
	Short: "Replay a run report and verify its referenced artifacts",
	Long: `Re-hashes every input and output artifact referenced by a run report and
compares against the recorded hashes. No scores are recomputed and nothing is
repaired. With --strict, a missing referenced artifact fails verification;
without it, missing files are skipped (they may have been pruned).`,
	Args: cobra.ExactArgs(1),
	RunE: verifyCmd,
}

var verifyStrict bool

func init() {
	verifyCommand.Flags().BoolVar(&verifyStrict, "strict", false, "Treat missing referenced artifacts as failures")

	rootCmd.AddCommand(verifyCommand)
}

func verifyCmd(_ *cobra.Command, args []string) error {
	res, err := report.Verify(args[0], verifyStrict)
	if err != nil {
		return fmt.Errorf("verifying run report: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return err
	}

	if !res.OK {
		return fmt.Errorf("verification failed: %d mismatched artifact(s)", len(res.Mismatches))
	}
	return nil
}
