package plugins

// NewIBMCosHmacDetector creates the detector for IBM Cloud Object Storage
// HMAC secret access keys assigned to variables.
func NewIBMCosHmacDetector() *RegexDetector {
	const (
		prefix  = `(?:(?:ibm)?[-_]?cos[-_]?(?:hmac)?|)`
		keyword = `(?:secret[-_]?(?:access)?[-_]?key)`
		secret  = `([a-f0-9]{48})(?:[^a-f0-9]|$)`
	)
	return NewRegexDetector(
		"IBM COS HMAC Credentials",
		buildAssignmentPattern(prefix, keyword, secret),
	)
}
