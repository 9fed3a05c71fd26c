package plugins

import regexp "github.com/wasilibs/go-re2"

// NewSquareOAuthDetector creates the detector for Square OAuth client
// secrets.
func NewSquareOAuthDetector() *RegexDetector {
	return NewRegexDetector(
		"Square OAuth Secret",
		regexp.MustCompile(`sq0csp-[0-9A-Za-z\\\-_]{43}`),
	)
}
