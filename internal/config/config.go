// Package config provides configuration loading and validation for the CLI.
// Settings come from a YAML file, RADAR_* environment variables and bound
// flags, in increasing precedence. The scoring profile is deliberately not
// part of this config: it is a separate JSON input whose hash is pinned in
// the run report.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/jonathan/job-radar/internal/remote"
	"github.com/jonathan/job-radar/internal/types"
)

const envPrefix = "RADAR"

// Config is the application configuration for a pipeline run.
type Config struct {
	// Input is the path to the postings JSON file.
	Input string `mapstructure:"input"`

	// StateRoot is the directory holding run history, pointers and the
	// embedding cache.
	StateRoot string `mapstructure:"state_root" validate:"required"`

	// ProfilePath points at the scoring profile JSON. Empty means built-in
	// defaults with no profile deltas.
	ProfilePath string `mapstructure:"profile_path"`

	// CandidateProfilePath points at the free-text candidate profile used by
	// the semantic stage. Empty skips the stage with a recorded reason.
	CandidateProfilePath string `mapstructure:"candidate_profile"`

	// TitleOnly forces title-only scoring for every posting, regardless of
	// enrichment status.
	TitleOnly bool `mapstructure:"title_only"`

	// Retention is how many run directories to keep. Zero disables pruning.
	Retention int `mapstructure:"retention" validate:"gte=0"`

	Semantic types.SemanticPolicy `mapstructure:"semantic"`

	// Remote, when set, enables the read-only remote history fallback.
	Remote *remote.Config `mapstructure:"remote"`

	Debug    bool `mapstructure:"debug"`
	JSONLogs bool `mapstructure:"json"`
}

// Load reads configuration from path (optional), the environment and any
// viper-bound flags, then validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("state_root", ".radar")
	v.SetDefault("retention", 20)
	v.SetDefault("semantic.mode", string(types.ModeSidecar))
	v.SetDefault("semantic.model-id", "hash-v1")
	v.SetDefault("semantic.max-jobs", 50)
	v.SetDefault("semantic.top-k", 25)
	v.SetDefault("semantic.max-boost", 10)
	v.SetDefault("semantic.min-similarity", 0.3)
}

// Validate checks structural constraints. Flag-level requirements (the input
// path) are enforced by the CLI after merging.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	switch c.Semantic.Mode {
	case types.ModeSidecar, types.ModeBoost:
	default:
		return fmt.Errorf("config validation: unknown semantic mode %q", c.Semantic.Mode)
	}
	return nil
}
