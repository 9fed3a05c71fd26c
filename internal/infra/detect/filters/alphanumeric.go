package filters

import (
	"strings"

	"github.com/ahrav/shellguard/internal/domain/secrets"
)

var _ secrets.Filter = NotAlphanumericFilter{}

// NotAlphanumericFilter vetoes values without a single ASCII letter, such
// as purely numeric strings or runs of asterisks.
type NotAlphanumericFilter struct{}

// NewNotAlphanumericFilter creates the letterless value filter.
func NewNotAlphanumericFilter() NotAlphanumericFilter { return NotAlphanumericFilter{} }

// ShouldExclude reports whether the value contains no ASCII letter.
func (NotAlphanumericFilter) ShouldExclude(value, _ string) bool {
	return !strings.ContainsFunc(value, func(r rune) bool {
		return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
	})
}
