package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/job-radar/internal/config"
	"github.com/jonathan/job-radar/internal/ingest"
	"github.com/jonathan/job-radar/internal/logger"
	"github.com/jonathan/job-radar/internal/pipeline"
	"github.com/jonathan/job-radar/internal/remote"
	"github.com/jonathan/job-radar/internal/types"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Run the full scoring pipeline end-to-end",
	Long: `Runs one pipeline invocation: load -> score -> semantic -> diff -> report.

Configuration is read from a YAML file via --config; command-line flags
override config file values. Exit codes: 0 success (including short-circuit),
2 validation or missing input, 3 runtime failure.`,
	RunE: runPipelineCmd,
}

var (
	runConfigPath       string
	runInput            string
	runStateRoot        string
	runProfile          string
	runCandidateProfile string
	runTitleOnly        bool
	runDebug            bool
	runJSONLogs         bool
)

func init() {
	runCommand.Flags().StringVar(&runConfigPath, "config", "", "Path to radar.yaml config file (values can be overridden by other flags)")
	runCommand.Flags().StringVarP(&runInput, "input", "i", "", "Path to postings JSON snapshot")
	runCommand.Flags().StringVar(&runStateRoot, "state-root", "", "Directory holding run history and the embedding cache")
	runCommand.Flags().StringVarP(&runProfile, "profile", "p", "", "Path to scoring profile JSON (optional)")
	runCommand.Flags().StringVar(&runCandidateProfile, "candidate-profile", "", "Path to free-text candidate profile for the semantic stage")
	runCommand.Flags().BoolVar(&runTitleOnly, "title-only", false, "Score titles only, ignoring description text")
	runCommand.Flags().BoolVarP(&runDebug, "debug", "d", false, "Verbose/debug logging")
	runCommand.Flags().BoolVarP(&runJSONLogs, "json", "j", false, "JSON log encoding")

	rootCmd.AddCommand(runCommand)
}

func runPipelineCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := config.Load(runConfigPath)
	if err != nil {
		return fmt.Errorf("%w: %v", ingest.ErrInvalidInput, err)
	}

	// Flags take priority over config file values when explicitly set.
	rationale := "input selected from config file"
	if cmd.Flags().Changed("input") {
		cfg.Input = runInput
		rationale = "input selected via --input flag"
	}
	if cmd.Flags().Changed("state-root") {
		cfg.StateRoot = runStateRoot
	}
	if cmd.Flags().Changed("profile") {
		cfg.ProfilePath = runProfile
	}
	if cmd.Flags().Changed("candidate-profile") {
		cfg.CandidateProfilePath = runCandidateProfile
	}
	if cmd.Flags().Changed("title-only") {
		cfg.TitleOnly = runTitleOnly
	}
	if cmd.Flags().Changed("debug") {
		cfg.Debug = runDebug
	}
	if cmd.Flags().Changed("json") {
		cfg.JSONLogs = runJSONLogs
	}

	if cfg.Input == "" {
		return fmt.Errorf("%w: no postings input (set --input or config 'input')", ingest.ErrInvalidInput)
	}

	log, err := logger.New(cfg.JSONLogs, cfg.Debug)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck // stdout sync failure is uninteresting

	runner := pipeline.New(cfg, log)
	runner.SetInputRationale(rationale)

	if cfg.Remote != nil {
		store, err := remote.NewStore(ctx, *cfg.Remote)
		if err != nil {
			// Remote history is a fallback, not a dependency.
			log.Warn("remote history unavailable", zap.Error(err))
		} else {
			runner.SetRemote(store)
		}
	}

	res, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	if res.Status == types.StatusShortCircuit {
		log.Info("run short-circuited", zap.String("run", res.RunName), zap.String("reason", res.Report.ShortCircuit))
	}
	return nil
}
