package secrets

import "context"

// Plugin is a single detector over a known credential family. Plugins are
// stateless beyond their precompiled patterns and are safe to share
// read-only across concurrent scans.
type Plugin interface {
	// SecretType identifies the credential family this plugin detects.
	// The value is stable and user-facing; findings carry it verbatim.
	SecretType() string

	// Analyze extracts every candidate secret from the given text. The text
	// is treated as one logical unit (ad-hoc string semantics), not split
	// into lines by the plugin.
	Analyze(text string) []PotentialSecret

	// Result converts a surviving candidate into the finding reported to
	// the caller, applying any per-plugin judgement (e.g. entropy
	// thresholds).
	Result(candidate PotentialSecret) Finding
}

// Filter vetoes candidate values that are likely false positives. A single
// veto from any filter in the chain removes the candidate.
type Filter interface {
	// ShouldExclude reports whether the value should be dropped.
	// The secret type of the producing plugin is provided so filters can
	// exempt families they are known to misjudge.
	ShouldExclude(value, secretType string) bool
}

// Scanner runs every registered plugin over a piece of text and returns the
// deduplicated findings that survive the filter chain.
type Scanner interface {
	Scan(ctx context.Context, text string) ([]Finding, error)
}
