// Package config defines the runtime configuration for the shellguard
// process: shell session settings, guard policy, classifier rate limits,
// detector tuning, and telemetry. A configuration file only needs to state
// what it changes; everything else comes from Default.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config is the top-level configuration.
type Config struct {
	Log       LogConfig       `yaml:"log"`
	Shell     ShellConfig     `yaml:"shell"`
	Guard     GuardConfig     `yaml:"guard"`
	Classify  ClassifyConfig  `yaml:"classify"`
	Detector  DetectorConfig  `yaml:"detector"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	// Level is the minimum level emitted.
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
}

// ShellConfig holds the per-session process and read-loop settings.
type ShellConfig struct {
	// Shell is the shell binary each session spawns.
	Shell string `yaml:"shell" validate:"required"`

	// Login spawns login shells so the operator's profile is loaded.
	Login bool `yaml:"login"`

	// Columns is the pseudo terminal width.
	Columns int `yaml:"columns" validate:"min=20,max=4096"`

	// InitTimeout bounds the wait for the shell prompt after spawn.
	InitTimeout time.Duration `yaml:"init_timeout" validate:"gt=0"`

	// ReadTimeout is the per-read idle interval of the read loop.
	ReadTimeout time.Duration `yaml:"read_timeout" validate:"gt=0"`

	// ReadBufferSize is the capacity of a single read.
	ReadBufferSize int `yaml:"read_buffer_size" validate:"min=512"`

	// TranscriptPath appends a redacted transcript of every session to the
	// given file. Empty disables transcription.
	TranscriptPath string `yaml:"transcript_path"`
}

// GuardConfig holds the command security guard's policy inputs.
type GuardConfig struct {
	// ProjectRoot anchors relative paths during review. Defaults to the
	// working directory.
	ProjectRoot string `yaml:"project_root"`

	// ForbiddenPatterns overrides the built-in forbidden glob patterns.
	ForbiddenPatterns []string `yaml:"forbidden_patterns"`
}

// ClassifyConfig rate limits interaction classification.
type ClassifyConfig struct {
	// RateLimitPerSec caps classification calls per second across all
	// sessions.
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec" validate:"gt=0"`

	// RateLimitBurst is the burst allowance of the limiter.
	RateLimitBurst int `yaml:"rate_limit_burst" validate:"min=1"`
}

// DetectorConfig holds the secret detection settings.
type DetectorConfig struct {
	// TuningPath points at a TOML file overriding the embedded detector
	// tuning. Empty means defaults only.
	TuningPath string `yaml:"tuning_path"`

	// MaskToken replaces detected secrets in redacted text.
	MaskToken string `yaml:"mask_token" validate:"required"`
}

// TelemetryConfig controls the OTLP exporters.
type TelemetryConfig struct {
	// Enabled turns tracing and metrics export on.
	Enabled bool `yaml:"enabled"`

	// ServiceName identifies this process in traces and metrics.
	ServiceName string `yaml:"service_name" validate:"required"`

	// ExporterEndpoint is the OTLP gRPC endpoint, host:port.
	ExporterEndpoint string `yaml:"exporter_endpoint" validate:"required_if=Enabled true,omitempty,hostname_port"`

	// SampleRate is the trace sampling probability.
	SampleRate float64 `yaml:"sample_rate" validate:"gte=0,lte=1"`

	// ExcludedSpans names spans dropped before sampling. The default drops
	// the detection engine's per-chunk scan spans, which fire on every
	// transcript write.
	ExcludedSpans []string `yaml:"excluded_spans"`

	// Insecure disables TLS on the exporter connection. Collectors on
	// localhost typically speak plaintext.
	Insecure bool `yaml:"insecure"`
}

// Default returns the configuration used when no file is given. It is valid
// by construction.
func Default() Config {
	return Config{
		Log: LogConfig{Level: "info"},
		Shell: ShellConfig{
			Shell:          "/bin/zsh",
			Login:          true,
			Columns:        1000,
			InitTimeout:    10 * time.Second,
			ReadTimeout:    2 * time.Second,
			ReadBufferSize: 64 * 1024,
		},
		Classify: ClassifyConfig{
			RateLimitPerSec: 2,
			RateLimitBurst:  4,
		},
		Detector: DetectorConfig{MaskToken: "[REDACTED]"},
		Telemetry: TelemetryConfig{
			Enabled:       false,
			ServiceName:   "shellguard",
			SampleRate:    1,
			ExcludedSpans: []string{"detection_engine.scan"},
			Insecure:      true,
		},
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the configuration against its struct constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
