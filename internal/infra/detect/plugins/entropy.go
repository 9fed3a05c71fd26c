package plugins

import (
	"fmt"
	"math"
	"strings"

	regexp "github.com/wasilibs/go-re2"

	"github.com/ahrav/shellguard/internal/domain/secrets"
)

// Secret types reported by the entropy detectors.
const (
	TypeBase64HighEntropy = "Base64 High Entropy String"
	TypeHexHighEntropy    = "Hex High Entropy String"
)

// Default entropy limits, in bits, above which a charset run is judged a
// secret.
const (
	DefaultBase64Limit = 4.5
	DefaultHexLimit    = 3.0
)

const (
	base64Charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789+/\\-_="
	hexCharset    = "0123456789abcdefABCDEF"
)

var _ secrets.Plugin = (*HighEntropyPlugin)(nil)

// HighEntropyPlugin detects secrets as runs of charset characters with high
// Shannon entropy. Quoted runs are screened against the entropy limit during
// analysis; when a text contains no quoted runs at all, bare runs are
// extracted instead and judged only when the finding is prepared.
type HighEntropyPlugin struct {
	secretType string
	charset    string
	limit      float64

	// digitPenalty discounts all-digit values, which score artificially
	// high against a hex charset.
	digitPenalty bool

	quoted   *regexp.Regexp
	embedded *regexp.Regexp
}

// NewBase64HighEntropy creates the base64 entropy detector. The charset
// covers standard and URL-safe base64 plus padding.
func NewBase64HighEntropy(limit float64) (*HighEntropyPlugin, error) {
	return newHighEntropy(TypeBase64HighEntropy, base64Charset, limit, false)
}

// NewHexHighEntropy creates the hex entropy detector.
func NewHexHighEntropy(limit float64) (*HighEntropyPlugin, error) {
	return newHighEntropy(TypeHexHighEntropy, hexCharset, limit, true)
}

func newHighEntropy(secretType, charset string, limit float64, digitPenalty bool) (*HighEntropyPlugin, error) {
	if limit < 0 || limit > 8 {
		return nil, fmt.Errorf("entropy limit must be between 0.0 and 8.0, got %v", limit)
	}
	class := charClass(charset)
	return &HighEntropyPlugin{
		secretType:   secretType,
		charset:      charset,
		limit:        limit,
		digitPenalty: digitPenalty,
		quoted:       regexp.MustCompile(`'([` + class + `]+)'|"([` + class + `]+)"`),
		embedded:     regexp.MustCompile(`[` + class + `]+`),
	}, nil
}

// charClass escapes s for use inside a regexp character class.
func charClass(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '\\', ']', '^', '-':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// SecretType returns the user facing description for findings of this
// detector.
func (p *HighEntropyPlugin) SecretType() string { return p.secretType }

// Analyze extracts candidate charset runs from text. Quoted runs below the
// entropy limit are dropped here; bare runs are kept unconditionally and
// judged in Result.
func (p *HighEntropyPlugin) Analyze(text string) []secrets.PotentialSecret {
	var out []secrets.PotentialSecret
	if quoted := p.quoted.FindAllStringSubmatch(text, -1); len(quoted) > 0 {
		for _, match := range quoted {
			for _, group := range match[1:] {
				if group != "" && p.Entropy(group) > p.limit {
					out = append(out, secrets.NewPotentialSecret(p.secretType, group))
				}
			}
		}
		return out
	}
	for _, match := range p.embedded.FindAllString(text, -1) {
		out = append(out, secrets.NewPotentialSecret(p.secretType, match))
	}
	return out
}

// Entropy computes the Shannon entropy of value over the plugin charset,
// in bits. All-digit values longer than one character are discounted when
// the digit penalty is enabled.
func (p *HighEntropyPlugin) Entropy(value string) float64 {
	if value == "" {
		return 0
	}
	var entropy float64
	for _, ch := range p.charset {
		px := float64(strings.Count(value, string(ch))) / float64(len(value))
		if px > 0 {
			entropy -= px * math.Log2(px)
		}
	}
	if p.digitPenalty && len(value) > 1 && allDigits(value) {
		entropy -= 1.2 / math.Log2(float64(len(value)))
	}
	return entropy
}

// Result judges the candidate against the entropy limit. The finding always
// carries the value and its rounded entropy so callers can log near misses.
func (p *HighEntropyPlugin) Result(candidate secrets.PotentialSecret) secrets.Finding {
	entropy := math.Round(p.Entropy(candidate.Value())*1000) / 1000
	return secrets.Finding{
		SecretType:  candidate.Type(),
		SecretValue: candidate.Value(),
		IsSecret:    entropy > p.limit,
		Entropy:     &entropy,
	}
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
