package plugins

import regexp "github.com/wasilibs/go-re2"

// NewCloudantDetector creates the detector for Cloudant credentials, both as
// variable assignments and embedded in service URLs.
func NewCloudantDetector() *RegexDetector {
	const (
		account = `[\w\-]+`
		prefix  = `(?:cloudant|cl|clou)`
		keyword = `(?:api|)(?:key|pwd|pw|password|pass|token)`
		pw      = `([0-9a-f]{64})`
		apiKey  = `([a-z]{24})`
	)
	return NewRegexDetector(
		"Cloudant Credentials",
		buildAssignmentPattern(prefix, keyword, pw),
		buildAssignmentPattern(prefix, keyword, apiKey),
		regexp.MustCompile(`(?i)(?:https?://)`+account+`:`+pw+`@`+account+`\.cloudant\.com`),
		regexp.MustCompile(`(?i)(?:https?://)`+account+`:`+apiKey+`@`+account+`\.cloudant\.com`),
	)
}
