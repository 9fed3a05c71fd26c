package plugins

import regexp "github.com/wasilibs/go-re2"

// NewGitHubTokenDetector creates the detector for GitHub personal access,
// OAuth, app and refresh tokens.
func NewGitHubTokenDetector() *RegexDetector {
	return NewRegexDetector(
		"GitHub Token",
		regexp.MustCompile(`(?:ghp|gho|ghu|ghs|ghr)_[A-Za-z0-9_]{36}`),
	)
}
