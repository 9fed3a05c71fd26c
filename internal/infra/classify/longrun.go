package classify

import (
	"context"
	"fmt"
	"strings"

	regexp "github.com/wasilibs/go-re2"

	"github.com/ahrav/shellguard/internal/domain/interaction"
)

var (
	// failurePattern recognizes output lines that mean a detached process
	// died or cannot do its job.
	failurePattern = regexp.MustCompile(
		`(?i)(panic:|fatal|traceback \(most recent call last\)|segmentation fault|` +
			`address already in use|eaddrinuse|permission denied|command not found|` +
			`error[:\s]|exception[:\s]|exited with code [1-9])`,
	)

	// steadyPattern recognizes output lines that mean a detached process
	// reached its working state and no further output is expected.
	steadyPattern = regexp.MustCompile(
		`(?i)(listening on|server (is )?running|running (at|on)|ready in|started|` +
			`compiled successfully|watching for (file )?changes|serving|accepting connections)`,
	)
)

// HeuristicProcessReviewer judges the health of a long-running process from
// its output so far: failure evidence wins over steady-state evidence, and
// with neither the process is still considered to be starting up.
type HeuristicProcessReviewer struct{}

// NewHeuristicProcessReviewer returns the rule-based long-run reviewer.
func NewHeuristicProcessReviewer() *HeuristicProcessReviewer { return &HeuristicProcessReviewer{} }

var _ interaction.LongRunClassifier = (*HeuristicProcessReviewer)(nil)

// Review scans the output lines newest-first so the verdict reflects the
// latest evidence: a crash after a successful startup line is a crash.
func (r *HeuristicProcessReviewer) Review(_ context.Context, output string) (interaction.ProcessReview, error) {
	lines := strings.Split(output, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		if failurePattern.MatchString(line) {
			return interaction.ProcessReview{
				State:  interaction.ProcessErrored,
				Reason: fmt.Sprintf("Process output reports a failure: %q", line),
			}, nil
		}
		if steadyPattern.MatchString(line) {
			return interaction.ProcessReview{
				State:  interaction.ProcessRunning,
				Reason: fmt.Sprintf("Process reached a steady state: %q", line),
			}, nil
		}
	}
	return interaction.ProcessReview{State: interaction.ProcessInitializing}, nil
}
