package filters

import (
	"strings"

	"github.com/ahrav/shellguard/internal/domain/secrets"
	"github.com/ahrav/shellguard/internal/infra/detect/gibberish"
	"github.com/ahrav/shellguard/internal/infra/detect/plugins"
)

const hexOrDash = "0123456789abcdefABCDEF-"

var _ secrets.Filter = (*GibberishFilter)(nil)

// GibberishFilter vetoes values that read like English words: real secrets
// are random, so a pronounceable value is almost always a false positive.
//
// Private key findings are exempt because PEM armor is literal English.
// Values made only of hex digits and dashes are also exempt; the bigram
// model cannot score them meaningfully.
type GibberishFilter struct {
	detector *gibberish.Detector
}

// NewGibberishFilter creates a gibberish filter around the given detector.
func NewGibberishFilter(detector *gibberish.Detector) *GibberishFilter {
	return &GibberishFilter{detector: detector}
}

// ShouldExclude reports whether the value reads like natural language.
func (f *GibberishFilter) ShouldExclude(value, secretType string) bool {
	if secretType == plugins.TypePrivateKey {
		return false
	}
	if isHexOrDash(value) {
		return false
	}
	return !f.detector.IsGibberish(strings.ToLower(value))
}

func isHexOrDash(value string) bool {
	for _, r := range value {
		if !strings.ContainsRune(hexOrDash, r) {
			return false
		}
	}
	return true
}
