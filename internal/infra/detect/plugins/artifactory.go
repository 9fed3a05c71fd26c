package plugins

import regexp "github.com/wasilibs/go-re2"

// NewArtifactoryDetector creates the detector for Artifactory credentials:
// API tokens (AKC...) and passwords (AP...). The patterns carry no capture
// group, so the surrounding boundary character is part of the reported
// value.
func NewArtifactoryDetector() *RegexDetector {
	return NewRegexDetector(
		"Artifactory Credentials",
		regexp.MustCompile(`(?:\s|=|:|"|^)AKC[a-zA-Z0-9]{10,}(?:\s|"|$)`),
		regexp.MustCompile(`(?:\s|=|:|"|^)AP[\dABCDEF][a-zA-Z0-9]{8,}(?:\s|"|$)`),
	)
}
