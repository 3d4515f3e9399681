package scoring

import (
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/job-radar/internal/schemas"
	"github.com/jonathan/job-radar/internal/types"
)

//go:embed profile_schema.json
var profileSchema string

// ErrInvalidProfile is returned for malformed or schema-invalid profile
// configs. Callers treat it as a validation failure (fail closed).
var ErrInvalidProfile = fmt.Errorf("invalid profile config")

// PenaltyRule is a profile-supplied additive penalty (or boost) triggered by
// a lowercase substring match.
type PenaltyRule struct {
	Pattern string `json:"pattern" validate:"required"`
	Weight  int    `json:"weight" validate:"required"`
	Reason  string `json:"reason,omitempty"`
}

// ProfileConfig parameterizes the scoring engine for one run. It is an
// immutable value passed explicitly into Score; nothing in the scoring path
// reads shared mutable profile state.
type ProfileConfig struct {
	Name            string                     `json:"name" validate:"required"`
	BandMultipliers map[types.RoleBand]float64 `json:"band_multipliers" validate:"required,dive,gte=0"`
	BandWeights     map[types.RoleBand]int     `json:"band_weights,omitempty"`
	Penalties       []PenaltyRule              `json:"penalties,omitempty" validate:"dive"`

	sha256 string
}

// LoadProfile reads, schema-validates and parses a profile config file. Any
// failure wraps ErrInvalidProfile so the caller can fail closed with the
// validation exit code.
func LoadProfile(path string) (*ProfileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", ErrInvalidProfile, path, err)
	}
	return ParseProfile(data)
}

// ParseProfile validates and parses raw profile config JSON.
func ParseProfile(data []byte) (*ProfileConfig, error) {
	if err := schemas.ValidateJSONString(profileSchema, string(data)); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidProfile, err)
	}

	var cfg ProfileConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: parsing JSON: %w", ErrInvalidProfile, err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidProfile, err)
	}

	sum := sha256.Sum256(data)
	cfg.sha256 = hex.EncodeToString(sum[:])
	return &cfg, nil
}

// defaultProfileJSON is the neutral profile used when no config file is
// supplied. It goes through ParseProfile so its hash is recorded the same
// way as a file-backed profile.
const defaultProfileJSON = `{
  "name": "default",
  "band_multipliers": {
    "CORE": 1.0,
    "ADJACENT": 1.0,
    "ADJACENT-SOLUTIONS": 1.0,
    "OTHER": 1.0
  }
}`

// DefaultProfile returns the neutral built-in profile: multiplier 1.0 for
// every band, no additive weights, no penalties.
func DefaultProfile() *ProfileConfig {
	cfg, err := ParseProfile([]byte(defaultProfileJSON))
	if err != nil {
		panic(fmt.Sprintf("built-in default profile is invalid: %v", err))
	}
	return cfg
}

// ConfigSHA256 returns the hash of the raw config bytes, recorded in the run
// report's scoring_model block.
func (c *ProfileConfig) ConfigSHA256() string {
	return c.sha256
}

// Multiplier returns the band multiplier, defaulting to 1.0 for bands the
// profile does not mention.
func (c *ProfileConfig) Multiplier(band types.RoleBand) float64 {
	if m, ok := c.BandMultipliers[band]; ok {
		return m
	}
	return 1.0
}

// BandWeight returns the additive weight for a band, defaulting to 0.
func (c *ProfileConfig) BandWeight(band types.RoleBand) int {
	return c.BandWeights[band]
}
