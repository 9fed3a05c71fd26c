package plugins

import regexp "github.com/wasilibs/go-re2"

// NewSendGridDetector creates the detector for SendGrid API keys.
func NewSendGridDetector() *RegexDetector {
	return NewRegexDetector(
		"SendGrid API Key",
		regexp.MustCompile(`SG\.[a-zA-Z0-9_-]{22}\.[a-zA-Z0-9_-]{43}`),
	)
}
