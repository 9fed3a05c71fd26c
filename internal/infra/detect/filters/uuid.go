package filters

import (
	regexp "github.com/wasilibs/go-re2"

	"github.com/ahrav/shellguard/internal/domain/secrets"
)

var uuidPattern = regexp.MustCompile(`(?i)[a-f0-9]{8}\-[a-f0-9]{4}\-[a-f0-9]{4}\-[a-f0-9]{4}\-[a-f0-9]{12}`)

var _ secrets.Filter = UUIDFilter{}

// UUIDFilter vetoes values containing a UUID. Identifiers are ubiquitous in
// tool output and are not secrets.
type UUIDFilter struct{}

// NewUUIDFilter creates the UUID filter.
func NewUUIDFilter() UUIDFilter { return UUIDFilter{} }

// ShouldExclude reports whether the value contains a UUID anywhere.
func (UUIDFilter) ShouldExclude(value, _ string) bool {
	return uuidPattern.MatchString(value)
}
