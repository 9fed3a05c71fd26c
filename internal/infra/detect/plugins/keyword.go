package plugins

import regexp "github.com/wasilibs/go-re2"

// secretKeywordStems are the variable-name fragments that suggest an
// assigned value is sensitive.
const secretKeywordStems = `api_?key|auth_?token|access_?key|app_?key|authorization|client_?secret|credentials?|db_?pass|passwd|password|priv_?key|private_?key|secret_?key|secrete?|session_?key|signing_?key|token`

// NewKeywordDetector creates the detector for values assigned to
// secret-sounding variable names, e.g. password = "hunter2". Unlike the
// provider detectors this one keys off the variable name, so bare-space
// assignment is not accepted here; it would flag ordinary prose.
func NewKeywordDetector() *RegexDetector {
	return NewRegexDetector(
		"Secret Keyword",
		regexp.MustCompile(
			`(?i)`+wordBoundaryStart+optQuote+`\w*(?:`+secretKeywordStems+`)\w*`+optQuote+
				optSpace+`(?:=|:|:=|=>|::)`+optSpace+
				`(?:"([^"\s]+)"|'([^'\s]+)'|([^\s"']+))`,
		),
	)
}
