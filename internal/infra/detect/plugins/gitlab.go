package plugins

import regexp "github.com/wasilibs/go-re2"

// NewGitLabTokenDetector creates the detector for GitLab tokens across the
// documented prefixes (personal, deploy, runner, CI job and agent tokens).
func NewGitLabTokenDetector() *RegexDetector {
	return NewRegexDetector(
		"GitLab Token",
		regexp.MustCompile(`(?:glpat|gldt|glrt|glct|glimt|glptt|glagent|glsoat)-[A-Za-z0-9_\-]{20,50}`),
	)
}
