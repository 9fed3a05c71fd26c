// Package classify provides working implementations of the interaction
// classifier ports: rule-based heuristics that recognize common prompt
// shapes, plus retry and rate-limit decorators for wrapping slower or
// metered implementations (such as model-backed classifiers).
package classify

import (
	"context"
	"fmt"
	"strings"

	regexp "github.com/wasilibs/go-re2"

	"github.com/ahrav/shellguard/internal/domain/interaction"
)

// promptRule pairs a prompt-shape pattern with the reason reported when it
// fires. Rules are evaluated against the last non-empty line of output,
// where interactive prompts live.
type promptRule struct {
	re     *regexp.Regexp
	reason string
}

var promptRules = []promptRule{
	{
		re:     regexp.MustCompile(`(?i)[\[(]\s*y(es)?\s*/\s*n(o)?\s*[\])]`),
		reason: "A yes/no confirmation prompt is waiting for an answer",
	},
	{
		re:     regexp.MustCompile(`(?i)(password|passphrase)( for [^:]+)?\s*:\s*$`),
		reason: "A password prompt is waiting for input",
	},
	{
		re:     regexp.MustCompile(`(?i)(username|login|email)\s*:\s*$`),
		reason: "A login prompt is waiting for input",
	},
	{
		re:     regexp.MustCompile(`(?i)press\s+(enter|return|any key)`),
		reason: "The process is waiting for a keypress to continue",
	},
	{
		re:     regexp.MustCompile(`(?i)^(--more--|\(end\))`),
		reason: "A pager is holding the output; advance or quit it",
	},
	{
		re:     regexp.MustCompile(`\?\s*$`),
		reason: "The process asked a question and is waiting for a reply",
	},
}

// HeuristicClassifier decides whether idle output is a stalled interactive
// prompt by matching the last non-empty line against known prompt shapes.
// It is deliberately cheap and deterministic; wrap a model-backed classifier
// around it when richer judgement is needed.
type HeuristicClassifier struct{}

// NewHeuristicClassifier returns the rule-based interaction classifier.
func NewHeuristicClassifier() *HeuristicClassifier { return &HeuristicClassifier{} }

var _ interaction.Classifier = (*HeuristicClassifier)(nil)

// Classify inspects the final non-empty line of the accumulated output. It
// is side-effect free and idempotent for identical input.
func (c *HeuristicClassifier) Classify(_ context.Context, output string) (interaction.Review, error) {
	line := lastNonEmptyLine(output)
	if line == "" {
		return interaction.Review{}, nil
	}

	for _, rule := range promptRules {
		if rule.re.MatchString(line) {
			return interaction.Review{
				NeedsAction: true,
				Reason:      fmt.Sprintf("%s: %q", rule.reason, line),
			}, nil
		}
	}
	return interaction.Review{}, nil
}

func lastNonEmptyLine(output string) string {
	lines := strings.Split(output, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
