package plugins

import regexp "github.com/wasilibs/go-re2"

// NewSoftlayerDetector creates the detector for SoftLayer API keys, either
// assigned to variables or embedded in SOAP endpoint URLs.
func NewSoftlayerDetector() *RegexDetector {
	const (
		prefix  = `(?:softlayer|sl)(?:_|-|)(?:api|)`
		keyword = `(?:key|pwd|password|pass|token)`
		secret  = `([a-z0-9]{64})`
	)
	return NewRegexDetector(
		"SoftLayer Credentials",
		buildAssignmentPattern(prefix, keyword, secret),
		regexp.MustCompile(`(?i)(?:http|https)://api.softlayer.com/soap/(?:v3|v3.1)/([a-z0-9]{64})`),
	)
}
