package plugins

import regexp "github.com/wasilibs/go-re2"

// NewStripeDetector creates the detector for Stripe live secret and
// restricted keys. Test keys are not matched.
func NewStripeDetector() *RegexDetector {
	return NewRegexDetector(
		"Stripe Access Key",
		regexp.MustCompile(`(?:r|s)k_live_[0-9a-zA-Z]{24}`),
	)
}
