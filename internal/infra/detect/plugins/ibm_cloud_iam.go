package plugins

// NewIBMCloudIAMDetector creates the detector for IBM Cloud IAM API keys
// assigned to variables. The key body is 44 characters; the pattern consumes
// the following boundary character so a longer run is not truncated into a
// false hit.
func NewIBMCloudIAMDetector() *RegexDetector {
	const (
		prefix  = `(?:ibm(?:_|-|)cloud(?:_|-|)iam|cloud(?:_|-|)iam|ibm(?:_|-|)cloud|ibm(?:_|-|)iam|ibm|iam|cloud|)(?:_|-|)(?:api|)`
		keyword = `(?:key|pwd|password|pass|token)`
		secret  = `([a-zA-Z0-9_\-]{44})(?:[^a-zA-Z0-9_\-]|$)`
	)
	return NewRegexDetector(
		"IBM Cloud IAM Key",
		buildAssignmentPattern(prefix, keyword, secret),
	)
}
