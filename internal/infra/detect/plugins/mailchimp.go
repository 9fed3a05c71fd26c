package plugins

import regexp "github.com/wasilibs/go-re2"

// NewMailchimpDetector creates the detector for Mailchimp API keys, which
// end in their datacenter suffix.
func NewMailchimpDetector() *RegexDetector {
	return NewRegexDetector(
		"Mailchimp Access Key",
		regexp.MustCompile(`[0-9a-z]{32}-us[0-9]{1,2}`),
	)
}
