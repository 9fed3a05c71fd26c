package plugins

import (
	"net/netip"
	"strings"
	"unicode"
	"unicode/utf8"

	regexp "github.com/wasilibs/go-re2"

	"github.com/ahrav/shellguard/internal/domain/secrets"
)

var _ secrets.Plugin = (*PublicIPDetector)(nil)

const ipv4Octet = `(?:25[0-5]|2[0-4][0-9]|1[0-9][0-9]|[1-9][0-9]|[0-9])`

// ipv4Pattern matches a dotted quad with no leading zeros, optionally
// followed by a port.
var ipv4Pattern = regexp.MustCompile(`(?:` + ipv4Octet + `\.){3}` + ipv4Octet + `(?::\d{1,5})?`)

// PublicIPDetector detects public IPv4 addresses. Loopback (127.0.0.0/8),
// private (10.0.0.0/8, 172.16.0.0/12, 192.168.0.0/16) and link-local
// (169.254.0.0/16) addresses are not reported.
type PublicIPDetector struct {
	RegexDetector
}

// NewPublicIPDetector creates the public IPv4 detector.
func NewPublicIPDetector() *PublicIPDetector {
	return &PublicIPDetector{RegexDetector{secretType: "Public IP (ipv4)"}}
}

// Analyze extracts public IPv4 addresses from text. A matched address must
// not touch a word character or dot on either side; when the trailing
// boundary fails only because of an overlong port, the address alone is
// reconsidered. Reported values keep their port.
func (d *PublicIPDetector) Analyze(text string) []secrets.PotentialSecret {
	var out []secrets.PotentialSecret
	for _, span := range ipv4Pattern.FindAllStringIndex(text, -1) {
		start, end := span[0], span[1]
		match := text[start:end]
		if !ipBoundaryOK(text, start, end) {
			host, _, found := strings.Cut(match, ":")
			if !found || !ipBoundaryOK(text, start, start+len(host)) {
				continue
			}
			match = host
		}
		addr := match
		if host, _, found := strings.Cut(match, ":"); found {
			addr = host
		}
		ip, err := netip.ParseAddr(addr)
		if err != nil || ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() {
			continue
		}
		out = append(out, secrets.NewPotentialSecret(d.secretType, match))
	}
	return out
}

// ipBoundaryOK reports whether the span [start, end) is delimited by
// characters that cannot extend an address, i.e. anything but a word
// character or dot.
func ipBoundaryOK(text string, start, end int) bool {
	if start > 0 {
		if r, _ := utf8.DecodeLastRuneInString(text[:start]); isWordOrDot(r) {
			return false
		}
	}
	if end < len(text) {
		if r, _ := utf8.DecodeRuneInString(text[end:]); isWordOrDot(r) {
			return false
		}
	}
	return true
}

func isWordOrDot(r rune) bool {
	return r == '.' || r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
