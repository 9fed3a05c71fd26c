package plugins

import (
	"encoding/base64"
	"encoding/json"
	"strings"

	regexp "github.com/wasilibs/go-re2"

	"github.com/ahrav/shellguard/internal/domain/secrets"
)

var _ secrets.Plugin = (*JWTDetector)(nil)

// JWTDetector detects JSON Web Tokens. Candidates are found by prefix (eyJ
// is base64 for `{"`) and then structurally validated: the header and
// payload must decode to valid JSON.
type JWTDetector struct {
	RegexDetector
}

// NewJWTDetector creates the JWT detector.
func NewJWTDetector() *JWTDetector {
	return &JWTDetector{RegexDetector{
		secretType: "JSON Web Token",
		denylist: []*regexp.Regexp{
			regexp.MustCompile(`eyJ[A-Za-z0-9-_=]+\.[A-Za-z0-9-_=]+\.?[A-Za-z0-9-_.+/=]*?`),
		},
	}}
}

// Analyze extracts candidates that pass structural validation.
func (d *JWTDetector) Analyze(text string) []secrets.PotentialSecret {
	var out []secrets.PotentialSecret
	for _, candidate := range d.RegexDetector.Analyze(text) {
		if isFormallyValidJWT(candidate.Value()) {
			out = append(out, candidate)
		}
	}
	return out
}

// isFormallyValidJWT reports whether token decodes as a JWT: dot-separated
// base64url parts, the first two of which hold JSON.
func isFormallyValidJWT(token string) bool {
	for idx, part := range strings.Split(token, ".") {
		decoded, ok := decodeJWTPart(part)
		if !ok {
			return false
		}
		if idx < 2 && !json.Valid(decoded) {
			return false
		}
	}
	return true
}

var jwtURLSafe = strings.NewReplacer("-", "+", "_", "/")

// decodeJWTPart decodes one base64url token segment, restoring stripped
// padding. A segment whose length is 1 mod 4 cannot be padded into valid
// base64.
func decodeJWTPart(part string) ([]byte, bool) {
	switch len(part) % 4 {
	case 1:
		return nil, false
	case 2:
		part += "=="
	case 3:
		part += "="
	}
	decoded, err := base64.StdEncoding.DecodeString(jwtURLSafe.Replace(part))
	if err != nil {
		return nil, false
	}
	return decoded, true
}
