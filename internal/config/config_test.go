package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "/bin/zsh", cfg.Shell.Shell)
	assert.True(t, cfg.Shell.Login)
	assert.Equal(t, 2*time.Second, cfg.Shell.ReadTimeout)
	assert.Equal(t, "[REDACTED]", cfg.Detector.MaskToken)
	assert.False(t, cfg.Telemetry.Enabled)
	assert.Contains(t, cfg.Telemetry.ExcludedSpans, "detection_engine.scan")
}

func TestValidateRejectsBadValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{
			name:   "unknown log level",
			mutate: func(c *Config) { c.Log.Level = "verbose" },
		},
		{
			name:   "missing shell",
			mutate: func(c *Config) { c.Shell.Shell = "" },
		},
		{
			name:   "terminal too narrow",
			mutate: func(c *Config) { c.Shell.Columns = 5 },
		},
		{
			name:   "zero read timeout",
			mutate: func(c *Config) { c.Shell.ReadTimeout = 0 },
		},
		{
			name:   "tiny read buffer",
			mutate: func(c *Config) { c.Shell.ReadBufferSize = 16 },
		},
		{
			name:   "zero classifier rate",
			mutate: func(c *Config) { c.Classify.RateLimitPerSec = 0 },
		},
		{
			name:   "empty mask token",
			mutate: func(c *Config) { c.Detector.MaskToken = "" },
		},
		{
			name: "telemetry enabled without endpoint",
			mutate: func(c *Config) {
				c.Telemetry.Enabled = true
				c.Telemetry.ExporterEndpoint = ""
			},
		},
		{
			name: "malformed exporter endpoint",
			mutate: func(c *Config) {
				c.Telemetry.Enabled = true
				c.Telemetry.ExporterEndpoint = "not a hostport"
			},
		},
		{
			name:   "sample rate above one",
			mutate: func(c *Config) { c.Telemetry.SampleRate = 1.5 },
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidateAcceptsTelemetryTarget(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Telemetry.Enabled = true
	cfg.Telemetry.ExporterEndpoint = "localhost:4317"
	require.NoError(t, cfg.Validate())
}
