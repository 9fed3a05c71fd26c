// Package guard reviews shell commands before they reach a session. A
// command touching a sensitive path is cleared automatically only when the
// path was previously whitelisted or a safety review vouches for it;
// everything else escalates to an interactive operator decision.
package guard

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/shlex"
	regexp "github.com/wasilibs/go-re2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ahrav/shellguard/internal/domain/interaction"
	"github.com/ahrav/shellguard/internal/domain/security"
	"github.com/ahrav/shellguard/pkg/common/logger"
)

// Alert carries everything the operator needs to decide about a flagged
// command: the command itself, the pattern it tripped, and the path that
// would be whitelisted if they choose to approve it for the session. File is
// empty when no token resolved to a concrete path.
type Alert struct {
	Command string
	Pattern string
	File    string
}

// Prompter collects operator decisions at the security boundary.
// Implementations run outside the guard's locking and may block for as long
// as the operator takes.
type Prompter interface {
	// Choose presents the remediation menu for a flagged command.
	Choose(ctx context.Context, alert Alert) (security.Choice, error)

	// CollectManualOutput walks the operator through running the command in
	// a separate terminal and gathers whatever output they captured.
	CollectManualOutput(ctx context.Context, command string) (string, error)
}

// Config holds the guard's matching environment.
type Config struct {
	// ProjectRoot anchors relative tokens during path resolution.
	ProjectRoot string

	// Home is the directory "~" expands to. Defaults to the current user's
	// home directory.
	Home string

	// Patterns overrides the forbidden glob patterns. Defaults to
	// security.DefaultForbiddenPatterns.
	Patterns []string
}

// compiledPattern pairs a forbidden glob with its compiled contains-match
// form.
type compiledPattern struct {
	glob string
	re   *regexp.Regexp
}

// Guard reviews commands against the forbidden-pattern policy. It is safe
// for concurrent use: its own fields are immutable after construction and
// session state lives in the shared security context.
type Guard struct {
	state    *security.Context
	safety   interaction.SafetyClassifier
	prompter Prompter

	patterns []compiledPattern
	root     string
	home     string

	logger *logger.Logger
	tracer trace.Tracer
}

// New builds a guard. Pattern compilation failures are construction errors;
// a guard with a partial policy must never run.
func New(
	state *security.Context,
	safety interaction.SafetyClassifier,
	prompter Prompter,
	cfg Config,
	log *logger.Logger,
	tracer trace.Tracer,
) (*Guard, error) {
	globs := cfg.Patterns
	if len(globs) == 0 {
		globs = security.DefaultForbiddenPatterns
	}

	patterns := make([]compiledPattern, 0, len(globs))
	for _, glob := range globs {
		re, err := compileContainsGlob(glob)
		if err != nil {
			return nil, fmt.Errorf("compiling forbidden pattern %q: %w", glob, err)
		}
		patterns = append(patterns, compiledPattern{glob: glob, re: re})
	}

	home := cfg.Home
	if home == "" {
		if h, err := os.UserHomeDir(); err == nil {
			home = h
		}
	}

	root := cfg.ProjectRoot
	if root == "" {
		if wd, err := os.Getwd(); err == nil {
			root = wd
		}
	}

	return &Guard{
		state:    state,
		safety:   safety,
		prompter: prompter,
		patterns: patterns,
		root:     root,
		home:     home,
		logger:   log.With("component", "security_guard"),
		tracer:   tracer,
	}, nil
}

// Review decides how a command may be executed. The error return is reserved
// for the interactive boundary (prompter failure, cancellation); policy
// outcomes, including blocks, are verdicts, not errors.
func (g *Guard) Review(ctx context.Context, command string) (security.Verdict, error) {
	ctx, span := g.tracer.Start(ctx, "security_guard.review")
	defer span.End()

	match, found := g.findForbidden(ctx, command)
	if !found {
		return security.Proceed("No forbidden pattern found in the command"), nil
	}
	span.SetAttributes(attribute.String("matched_pattern", match.pattern))
	g.logger.Info(ctx, "command matched forbidden pattern", "pattern", match.pattern)

	if g.allWhitelisted(match.tokens) {
		return security.Proceed(fmt.Sprintf(
			"Pattern '%s' matched, but every referenced path is whitelisted for this session", match.pattern,
		)), nil
	}

	assessment, err := g.safety.Assess(ctx, command, g.state.WhitelistString())
	switch {
	case err != nil:
		// Fail closed: an unanswerable safety question goes to the operator.
		g.logger.Error(ctx, "command safety review failed; escalating to operator", "error", err)
	case assessment.Safe:
		return security.Proceed(fmt.Sprintf(
			"Pattern '%s' matched, but the safety review allowed it. Reason: %s",
			match.pattern, assessment.Reason,
		)), nil
	}

	return g.intervene(ctx, command, match)
}

// forbiddenMatch is the outcome of scanning a command's tokens: the first
// pattern that fired and every token (or flag value) that tripped any
// pattern, in command order.
type forbiddenMatch struct {
	pattern string
	tokens  []string
}

// findForbidden tokenizes the command and matches each token, and the value
// part of assignment-style tokens, against the forbidden patterns. Malformed
// quoting means the command cannot be evaluated; that is treated as no match
// and logged, an accepted gap rather than a block.
func (g *Guard) findForbidden(ctx context.Context, command string) (forbiddenMatch, bool) {
	tokens, err := shlex.Split(command)
	if err != nil {
		g.logger.Warn(ctx, "command could not be tokenized; skipping security match", "error", err)
		return forbiddenMatch{}, false
	}

	var match forbiddenMatch
	for _, token := range tokens {
		for _, candidate := range matchCandidates(token) {
			pattern, ok := g.matchPattern(candidate)
			if !ok {
				continue
			}
			if match.pattern == "" {
				match.pattern = pattern
			}
			match.tokens = append(match.tokens, candidate)
			break
		}
	}
	return match, match.pattern != ""
}

// matchCandidates returns the strings to match for one token. Assignment
// style tokens (--opt=value, VAR=value) contribute their value first, since
// the value is the part that names a path.
func matchCandidates(token string) []string {
	if idx := strings.IndexByte(token, '='); idx >= 0 && idx < len(token)-1 {
		return []string{token[idx+1:], token}
	}
	return []string{token}
}

// matchPattern reports the first forbidden pattern the candidate trips.
// Matching happens on the home-expanded form so "~/.ssh/x" and its absolute
// spelling trip the same patterns.
func (g *Guard) matchPattern(candidate string) (string, bool) {
	expanded := g.expandHome(candidate)
	for _, p := range g.patterns {
		if p.re.MatchString(expanded) {
			return p.glob, true
		}
	}
	return "", false
}

// allWhitelisted reports whether every flagged token resolves to a
// whitelisted path. Requiring all of them keeps a command touching one
// approved and one unapproved path under review.
func (g *Guard) allWhitelisted(tokens []string) bool {
	if len(tokens) == 0 {
		return false
	}
	for _, token := range tokens {
		if !g.state.IsWhitelisted(g.resolvePath(token)) {
			return false
		}
	}
	return true
}

// intervene walks the operator through the four-outcome remediation menu.
func (g *Guard) intervene(ctx context.Context, command string, match forbiddenMatch) (security.Verdict, error) {
	file := g.whitelistTarget(match.tokens)

	choice, err := g.prompter.Choose(ctx, Alert{Command: command, Pattern: match.pattern, File: file})
	if err != nil {
		return security.Verdict{}, fmt.Errorf("collecting security decision: %w", err)
	}
	g.logger.Info(ctx, "operator decided on flagged command", "choice", choice.String())

	switch choice {
	case security.ChoiceSkip:
		return security.Skipped(fmt.Sprintf("Blocked by user: %s", match.pattern)), nil

	case security.ChoiceExecuteManually:
		output, err := g.prompter.CollectManualOutput(ctx, command)
		if err != nil {
			return security.Verdict{}, fmt.Errorf("collecting manual execution output: %w", err)
		}
		return security.CompletedManually("User executed the command manually", output+"\n"), nil

	case security.ChoiceAllowAndWhitelist:
		if file != "" {
			g.state.AddToWhitelist(file)
			g.logger.Info(ctx, "path whitelisted for the session", "path", file)
		}
	}

	return security.Proceed("User allowed to proceed with the command execution."), nil
}

// whitelistTarget picks the path a whitelist approval would record: the
// first flagged token naming an existing file, else the first flagged token
// shaped like a path, meaning it contains a separator or a dot past the
// first character; blind writes target files that do not exist yet. A bare
// keyword hit like "secret" yields no target; the menu is still shown but
// approval then whitelists nothing.
func (g *Guard) whitelistTarget(tokens []string) string {
	for _, token := range tokens {
		resolved := g.resolvePath(token)
		if _, err := os.Stat(resolved); err == nil {
			return resolved
		}
	}
	for _, token := range tokens {
		if isPathShaped(token) {
			return g.resolvePath(token)
		}
	}
	return ""
}

// resolvePath normalizes a token to an absolute path: "~" expands to the
// home directory and relative tokens are anchored at the project root.
func (g *Guard) resolvePath(token string) string {
	expanded := g.expandHome(token)
	if !filepath.IsAbs(expanded) {
		expanded = filepath.Join(g.root, expanded)
	}
	return filepath.Clean(expanded)
}

func (g *Guard) expandHome(token string) string {
	switch {
	case token == "~":
		return g.home
	case strings.HasPrefix(token, "~/"):
		return filepath.Join(g.home, token[2:])
	}
	return token
}

func isPathShaped(token string) bool {
	return strings.ContainsRune(token, '/') || strings.IndexByte(token, '.') > 0
}

// compileContainsGlob translates a forbidden glob into a case-insensitive
// regular expression with contains semantics: "*" crosses path separators
// and the pattern may fire anywhere inside the candidate.
func compileContainsGlob(glob string) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteString("(?i)")
	for _, r := range glob {
		switch r {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteByte('.')
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	return regexp.Compile(b.String())
}
