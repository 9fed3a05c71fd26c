package plugins

import regexp "github.com/wasilibs/go-re2"

// NewNpmDetector creates the detector for npm registry auth tokens in
// .npmrc-style lines, both modern npm_ tokens and legacy UUID tokens.
func NewNpmDetector() *RegexDetector {
	return NewRegexDetector(
		"NPM tokens",
		regexp.MustCompile(`//.+/:_authToken=\s*((npm_.+)|([A-Fa-f0-9-]{36})).*`),
	)
}
