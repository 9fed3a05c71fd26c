// Package plugins provides the individual secret detectors used by the
// detection engine. Each detector reports a secret type and extracts
// candidate values from text; most detectors match a denylist of patterns,
// while the entropy detectors score charset runs.
//
// All patterns are compiled with RE2, which has no lookaround or
// backreferences. Boundary conditions that would otherwise need a
// lookaround are written as consumed character classes, with the candidate
// value extracted from a capture group.
package plugins

import (
	regexp "github.com/wasilibs/go-re2"

	"github.com/ahrav/shellguard/internal/domain/secrets"
)

var _ secrets.Plugin = (*RegexDetector)(nil)

// RegexDetector matches text against a denylist of patterns. Patterns with
// capture groups yield each non-empty group as a candidate; patterns
// without groups yield the whole match.
type RegexDetector struct {
	secretType string
	denylist   []*regexp.Regexp
}

// NewRegexDetector creates a detector for the given secret type and
// denylist patterns.
func NewRegexDetector(secretType string, denylist ...*regexp.Regexp) *RegexDetector {
	return &RegexDetector{secretType: secretType, denylist: denylist}
}

// SecretType returns the user facing description for findings of this
// detector.
func (d *RegexDetector) SecretType() string { return d.secretType }

// Analyze extracts all candidate secret values from text.
func (d *RegexDetector) Analyze(text string) []secrets.PotentialSecret {
	var out []secrets.PotentialSecret
	for _, re := range d.denylist {
		for _, match := range re.FindAllStringSubmatch(text, -1) {
			if len(match) == 1 {
				out = append(out, secrets.NewPotentialSecret(d.secretType, match[0]))
				continue
			}
			for _, group := range match[1:] {
				if group != "" {
					out = append(out, secrets.NewPotentialSecret(d.secretType, group))
				}
			}
		}
	}
	return out
}

// Result reports a candidate as a confirmed finding carrying its literal
// value.
func (d *RegexDetector) Result(candidate secrets.PotentialSecret) secrets.Finding {
	return secrets.Finding{
		SecretType:  candidate.Type(),
		SecretValue: candidate.Value(),
		IsSecret:    true,
	}
}

const (
	// wordBoundaryStart anchors a pattern to the start of the text or a
	// non-word character. The boundary character is consumed, so it must
	// stay outside any capture group.
	wordBoundaryStart = `(?:^|\W)`

	optQuote          = `(?:"|'|)`
	optOpenBracket    = `(?:\[|)`
	optCloseBracket   = `(?:\]|)`
	optDashUnderscore = `(?:_|-|)`
	optSpace          = `(?: *)`
	assignment        = `(?:=|:|:=|=>| +|::)`
)

// buildAssignmentPattern compiles a case insensitive pattern matching
// secrets in assignment form:
//
//	<prefix>[-_]<keyword> <assignment> <secret>
//
// The key name tolerates optional quotes and square brackets, the value
// optional quotes, and assignment covers =, :, :=, =>, :: and bare spaces.
// The secret expression must contain the capture group.
func buildAssignmentPattern(prefix, keyword, secret string) *regexp.Regexp {
	return regexp.MustCompile(
		`(?i)` + wordBoundaryStart + optOpenBracket + optQuote + prefix + optDashUnderscore +
			keyword + optQuote + optCloseBracket + optSpace +
			assignment + optSpace + optQuote + secret + optQuote,
	)
}
