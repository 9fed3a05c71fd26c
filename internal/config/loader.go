package config

import "context"

// Loader retrieves the runtime configuration. Implementations decide the
// source: a file on disk, the environment, or anything else that can
// produce a complete Config.
type Loader interface {
	// Load retrieves and parses the configuration, returning it with
	// defaults applied and validated.
	Load(ctx context.Context) (*Config, error)
}
