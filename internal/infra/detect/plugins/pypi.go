package plugins

import regexp "github.com/wasilibs/go-re2"

// NewPypiTokenDetector creates the detector for PyPI upload tokens, for both
// the production and test registries.
func NewPypiTokenDetector() *RegexDetector {
	return NewRegexDetector(
		"PyPI Token",
		regexp.MustCompile(`pypi-AgEIcHlwaS5vcmc[A-Za-z0-9-_]{70,}`),
		regexp.MustCompile(`pypi-AgENdGVzdC5weXBpLm9yZw[A-Za-z0-9-_]{70,}`),
	)
}
