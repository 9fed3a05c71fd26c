// Package secrets defines the domain model for secret detection: candidate
// secrets produced by detector plugins, the findings reported to callers,
// and the ports implemented by the detection infrastructure.
package secrets

import (
	"crypto/md5"
	"encoding/hex"
)

// PotentialSecret is a candidate secret produced by a plugin during a scan.
// It is immutable after creation and lives only for the duration of one
// scan call. Identity is defined over (type, value) alone; positional
// information is excluded because it is unstable across scans.
type PotentialSecret struct {
	secretType  string
	secretValue string
	isVerified  bool
}

// NewPotentialSecret creates an unverified candidate secret.
func NewPotentialSecret(secretType, secretValue string) PotentialSecret {
	return PotentialSecret{secretType: secretType, secretValue: secretValue}
}

// NewVerifiedSecret creates a candidate secret whose value has been verified
// against the issuing provider.
func NewVerifiedSecret(secretType, secretValue string) PotentialSecret {
	return PotentialSecret{secretType: secretType, secretValue: secretValue, isVerified: true}
}

// Type returns the user-facing description of the secret family,
// e.g. "AWS Access Key".
func (s PotentialSecret) Type() string { return s.secretType }

// Value returns the raw matched value.
func (s PotentialSecret) Value() string { return s.secretValue }

// IsVerified reports whether the value was verified against its provider.
func (s PotentialSecret) IsVerified() bool { return s.isVerified }

// Equal reports whether two candidates identify the same secret. Equality
// follows the identity contract: (type, value) only.
func (s PotentialSecret) Equal(other PotentialSecret) bool {
	return s.secretType == other.secretType && s.secretValue == other.secretValue
}

// Fingerprint generates a deterministic MD5 hash of the candidate identity,
// used for deduplication and for referencing a finding in logs without
// exposing its value.
func (s PotentialSecret) Fingerprint() string {
	h := md5.New()
	h.Write([]byte(s.secretType))
	h.Write([]byte{0})
	h.Write([]byte(s.secretValue))
	return hex.EncodeToString(h.Sum(nil))
}

// Finding is the per-candidate scan result reported to callers. Unlike
// PotentialSecret it always exposes the literal value so that redaction can
// locate every occurrence in the scanned text.
type Finding struct {
	SecretType  string
	SecretValue string

	// IsSecret is the plugin's judgement: regex detectors always judge
	// true, entropy detectors judge by threshold.
	IsSecret bool

	// Entropy carries the rounded Shannon entropy for findings produced by
	// entropy detectors, nil otherwise.
	Entropy *float64
}
