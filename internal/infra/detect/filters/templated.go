package filters

import (
	"strings"

	"github.com/ahrav/shellguard/internal/domain/secrets"
)

var _ secrets.Filter = TemplatedFilter{}

// TemplatedFilter vetoes placeholder values like ${PASSWORD} or <SECRET>,
// and single characters, which carry no secret material.
type TemplatedFilter struct{}

// NewTemplatedFilter creates the templated value filter.
func NewTemplatedFilter() TemplatedFilter { return TemplatedFilter{} }

// ShouldExclude reports whether the value is a template placeholder.
func (TemplatedFilter) ShouldExclude(value, _ string) bool {
	if len(value) < 2 {
		return true
	}
	return (strings.HasPrefix(value, "{") && strings.HasSuffix(value, "}")) ||
		(strings.HasPrefix(value, "<") && strings.HasSuffix(value, ">")) ||
		(strings.HasPrefix(value, "${") && strings.HasSuffix(value, "}"))
}
