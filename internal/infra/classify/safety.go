package classify

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/google/shlex"

	"github.com/ahrav/shellguard/internal/domain/interaction"
)

// blindWriters are programs that create or update files without ever
// reading or printing their contents. They are the one command family a
// rule can clear without understanding intent.
var blindWriters = map[string]struct{}{
	"touch":    {},
	"mkdir":    {},
	"truncate": {},
}

// BlindWriteSafetyClassifier is the conservative rule-based safety
// classifier: it clears pure blind writes and denies everything else,
// leaving the decision to the operator. The whitelist argument is unused by
// the rules; whitelisted paths are already cleared by the guard before the
// classifier runs.
type BlindWriteSafetyClassifier struct{}

// NewBlindWriteSafetyClassifier returns the rule-based safety classifier.
func NewBlindWriteSafetyClassifier() *BlindWriteSafetyClassifier {
	return &BlindWriteSafetyClassifier{}
}

var _ interaction.SafetyClassifier = (*BlindWriteSafetyClassifier)(nil)

// Assess clears a command only when its program cannot expose file
// contents. Unparseable commands are unsafe here, not skipped: the guard
// asked about this specific command, so an unanswerable question must
// escalate.
func (c *BlindWriteSafetyClassifier) Assess(_ context.Context, command, _ string) (interaction.SafetyAssessment, error) {
	tokens, err := shlex.Split(command)
	if err != nil || len(tokens) == 0 {
		return interaction.SafetyAssessment{
			Safe:   false,
			Reason: "command could not be parsed for a safety judgement",
		}, nil
	}

	program := filepath.Base(tokens[0])
	if _, ok := blindWriters[program]; ok {
		return interaction.SafetyAssessment{
			Description: fmt.Sprintf("%s only creates files or updates metadata", program),
			Safe:        true,
			Reason:      "pure blind write; the command cannot read or print file contents",
		}, nil
	}

	return interaction.SafetyAssessment{
		Description: fmt.Sprintf("%s may read or expose file contents", program),
		Safe:        false,
		Reason:      "command is not a known blind write; operator review required",
	}, nil
}
