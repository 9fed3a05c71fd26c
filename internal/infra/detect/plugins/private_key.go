package plugins

import regexp "github.com/wasilibs/go-re2"

// TypePrivateKey is the secret type reported for private key material. The
// gibberish filter exempts it: PEM armor is English, not noise.
const TypePrivateKey = "Private Key"

// NewPrivateKeyDetector creates the detector for private key file headers.
// The header line alone is reported, which is enough to flag and redact the
// occurrence.
func NewPrivateKeyDetector() *RegexDetector {
	return NewRegexDetector(
		TypePrivateKey,
		regexp.MustCompile(`BEGIN DSA PRIVATE KEY`),
		regexp.MustCompile(`BEGIN EC PRIVATE KEY`),
		regexp.MustCompile(`BEGIN OPENSSH PRIVATE KEY`),
		regexp.MustCompile(`BEGIN PGP PRIVATE KEY BLOCK`),
		regexp.MustCompile(`BEGIN PRIVATE KEY`),
		regexp.MustCompile(`BEGIN RSA PRIVATE KEY`),
		regexp.MustCompile(`BEGIN SSH2 ENCRYPTED PRIVATE KEY`),
		regexp.MustCompile(`PuTTY-User-Key-File-2`),
	)
}
