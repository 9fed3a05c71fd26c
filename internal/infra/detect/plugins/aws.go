package plugins

import regexp "github.com/wasilibs/go-re2"

// NewAWSKeyDetector creates the detector for AWS credentials. Access key IDs
// are matched first so they win deduplication over the secret token pattern.
func NewAWSKeyDetector() *RegexDetector {
	return NewRegexDetector(
		"AWS Access Key",
		regexp.MustCompile(`(?:A3T[A-Z0-9]|ABIA|ACCA|AKIA|ASIA)[0-9A-Z]{16}`),
		regexp.MustCompile(`(?i)aws.{0,20}?(?:key|pwd|pw|password|pass|token).{0,20}?['"]([0-9a-zA-Z/+]{40})['"]`),
	)
}
