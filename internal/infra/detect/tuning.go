package detect

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// defaultTuning is the tuning the engine ships with. It is parsed at startup
// so operators can override individual knobs from their own TOML without
// restating the rest.
const defaultTuning = `
[entropy]
base64_limit = 4.5
hex_limit = 3.0

[gibberish]
enabled = false
model_path = ""
limit = 3.7

[plugins]
disabled = []
`

// Tuning holds the runtime knobs of the detection engine: entropy thresholds,
// the gibberish model, and plugin enablement.
type Tuning struct {
	Entropy   EntropyTuning   `mapstructure:"entropy"`
	Gibberish GibberishTuning `mapstructure:"gibberish"`
	Plugins   PluginTuning    `mapstructure:"plugins"`
}

// EntropyTuning sets the Shannon entropy thresholds, in bits per character,
// above which base64 and hex strings are reported.
type EntropyTuning struct {
	Base64Limit float64 `mapstructure:"base64_limit"`
	HexLimit    float64 `mapstructure:"hex_limit"`
}

// GibberishTuning configures the trained bigram model used to drop
// candidates that read like natural language. The filter only joins the
// chain when Enabled is set and ModelPath points at a model artifact.
type GibberishTuning struct {
	Enabled   bool    `mapstructure:"enabled"`
	ModelPath string  `mapstructure:"model_path"`
	Limit     float64 `mapstructure:"limit"`
}

// PluginTuning disables individual detectors by secret type, for example
// "Public IP (ipv4)" or "Hex High Entropy String".
type PluginTuning struct {
	Disabled []string `mapstructure:"disabled"`
}

// DefaultTuning parses the embedded default tuning.
func DefaultTuning() (Tuning, error) { return ParseTuning("") }

// ParseTuning decodes a TOML tuning document layered over the embedded
// defaults, so a document may restate only the knobs it changes.
func ParseTuning(raw string) (Tuning, error) {
	v := viper.New()
	v.SetConfigType("toml")
	if err := v.ReadConfig(bytes.NewBufferString(defaultTuning)); err != nil {
		return Tuning{}, fmt.Errorf("failed to read detector tuning defaults: %w", err)
	}
	if raw != "" {
		if err := v.MergeConfig(bytes.NewBufferString(raw)); err != nil {
			return Tuning{}, fmt.Errorf("failed to read detector tuning: %w", err)
		}
	}

	var tuning Tuning
	if err := v.Unmarshal(&tuning); err != nil {
		return Tuning{}, fmt.Errorf("failed to parse detector tuning: %w", err)
	}
	return tuning, nil
}

// LoadTuning reads a TOML tuning file and applies it over the defaults. An
// empty path means no overrides.
func LoadTuning(path string) (Tuning, error) {
	if path == "" {
		return DefaultTuning()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Tuning{}, fmt.Errorf("failed to read detector tuning file: %w", err)
	}
	return ParseTuning(string(data))
}
