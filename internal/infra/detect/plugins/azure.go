package plugins

import regexp "github.com/wasilibs/go-re2"

// NewAzureStorageKeyDetector creates the detector for Azure Storage Account
// access keys in connection strings.
func NewAzureStorageKeyDetector() *RegexDetector {
	return NewRegexDetector(
		"Azure Storage Account access key",
		regexp.MustCompile(`AccountKey=[a-zA-Z0-9+/=]{88}`),
	)
}
