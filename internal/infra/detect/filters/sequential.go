// Package filters provides the false positive vetoes applied to candidate
// secrets after detection. A single veto from any filter removes the
// candidate before it becomes a finding.
package filters

import (
	"strings"

	"github.com/ahrav/shellguard/internal/domain/secrets"
)

const (
	asciiUppercase = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digits         = "0123456789"
	hexUppercase   = "0123456789ABCDEFABCDEF"
)

// sequences are the reference strings a sequential value is searched in.
var sequences = [...]string{
	// Base64 letters first.
	asciiUppercase + asciiUppercase + digits + "+/",
	// Base64 numbers first.
	digits + asciiUppercase + asciiUppercase + "+/",
	// Alphanumeric sequences.
	digits + asciiUppercase + digits + asciiUppercase,
	// Number sequences.
	digits + digits,
	// Hex sequences.
	hexUppercase + hexUppercase,
	// Other common patterns.
	asciiUppercase + "=/",
}

var _ secrets.Filter = SequentialFilter{}

// SequentialFilter vetoes values that are runs of a known sequence, like
// "abcdef" or "12345".
type SequentialFilter struct{}

// NewSequentialFilter creates the sequential string filter.
func NewSequentialFilter() SequentialFilter { return SequentialFilter{} }

// ShouldExclude reports whether the uppercased value appears verbatim in
// one of the reference sequences.
func (SequentialFilter) ShouldExclude(value, _ string) bool {
	upper := strings.ToUpper(value)
	for _, sequence := range sequences {
		if strings.Contains(sequence, upper) {
			return true
		}
	}
	return false
}
