// Package interaction defines the classifier boundary used by the shell
// session driver and the command security guard. Implementations may be
// model-backed, rule-backed, or test stubs; the session driver only depends
// on the narrow synchronous contracts defined here.
package interaction

import "context"

// Review is the verdict on a stretch of idle shell output.
type Review struct {
	// NeedsAction reports that the shell is waiting for user input and the
	// running command cannot make progress without it.
	NeedsAction bool

	// Reason is a human-readable explanation of the verdict. Always set
	// when NeedsAction is true.
	Reason string
}

// Classifier decides whether idle shell output means the session is stalled
// waiting for input. Implementations must be idempotent for identical input
// and side-effect free.
type Classifier interface {
	Classify(ctx context.Context, output string) (Review, error)
}

// SafetyAssessment is the verdict on a command's intent with respect to a
// sensitive path it touches.
type SafetyAssessment struct {
	// Description summarizes what the command appears to do.
	Description string

	// Safe reports that the command can run without operator review.
	Safe bool

	// Reason explains the judgement.
	Reason string
}

// SafetyClassifier judges whether a command that matched a forbidden path
// pattern is nonetheless safe to run. The current whitelist is provided as
// context so prior operator decisions inform the judgement.
type SafetyClassifier interface {
	Assess(ctx context.Context, command, whitelist string) (SafetyAssessment, error)
}

// ProcessState describes a detached long-running process as observed
// through its output so far.
type ProcessState string

const (
	// ProcessInitializing means the process is still starting up and its
	// health cannot be judged yet.
	ProcessInitializing ProcessState = "initializing"

	// ProcessRunning means the process reached a steady healthy state
	// (e.g. a dev server listening); no further output is expected.
	ProcessRunning ProcessState = "running"

	// ProcessErrored means the output indicates the process failed.
	ProcessErrored ProcessState = "error"
)

// ProcessReview is the verdict on a long-running command's health.
type ProcessReview struct {
	State  ProcessState
	Reason string
}

// LongRunClassifier judges the health of commands expected to run
// indefinitely (servers, watchers) on sessions dedicated to them.
type LongRunClassifier interface {
	Review(ctx context.Context, output string) (ProcessReview, error)
}
