package plugins

import regexp "github.com/wasilibs/go-re2"

// NewSlackDetector creates the detector for Slack tokens and incoming
// webhook URLs.
func NewSlackDetector() *RegexDetector {
	return NewRegexDetector(
		"Slack Token",
		regexp.MustCompile(`(?i)xox(?:a|b|p|o|s|r)-(?:\d+-)+[a-z0-9]+`),
		regexp.MustCompile(`(?i)https://hooks\.slack\.com/services/T[a-zA-Z0-9_]+/B[a-zA-Z0-9_]+/[a-zA-Z0-9_]+`),
	)
}
