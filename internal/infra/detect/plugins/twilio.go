package plugins

import regexp "github.com/wasilibs/go-re2"

// NewTwilioKeyDetector creates the detector for Twilio account SIDs and API
// keys.
func NewTwilioKeyDetector() *RegexDetector {
	return NewRegexDetector(
		"Twilio API Key",
		regexp.MustCompile(`AC[a-z0-9]{32}`),
		regexp.MustCompile(`SK[a-z0-9]{32}`),
	)
}
