package plugins

import regexp "github.com/wasilibs/go-re2"

// NewOpenAIDetector creates the detector for OpenAI API keys, identified by
// the T3BlbkFJ infix (base64 for OpenAI).
func NewOpenAIDetector() *RegexDetector {
	return NewRegexDetector(
		"OpenAI Token",
		regexp.MustCompile(`sk-[A-Za-z0-9-_]*[A-Za-z0-9]{20}T3BlbkFJ[A-Za-z0-9]{20}`),
	)
}
