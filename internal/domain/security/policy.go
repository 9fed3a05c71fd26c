package security

// DefaultForbiddenPatterns are the glob patterns that flag a command for
// security review. Matching is case insensitive and a pattern may match
// anywhere inside a command token, so the directory patterns hit regardless
// of where the home directory lives.
var DefaultForbiddenPatterns = []string{
	"*.ssh/*",
	"*.gnupg/*",
	"*.aws/*",
	"*.config/*",
	"*.env",
	".*env*",
	"*secret*",
	"*password*",
	"*token*",
	"*credential*",
}
