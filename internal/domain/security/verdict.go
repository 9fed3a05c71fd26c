package security

// VerdictAction represents the final decision of a command security review.
type VerdictAction string

const (
	// ActionProceed indicates the command is cleared to run automatically.
	ActionProceed VerdictAction = "PROCEED"

	// ActionCompletedManually indicates the user executed the command
	// themselves and supplied the resulting output.
	ActionCompletedManually VerdictAction = "COMPLETED_MANUALLY"

	// ActionSkipped indicates the command was blocked or rejected.
	ActionSkipped VerdictAction = "SKIPPED"
)

func (a VerdictAction) String() string { return string(a) }

// Verdict is the structured result of a command security review. It couples
// the decision with its justification and, for manually executed commands,
// the output the user captured.
type Verdict struct {
	action VerdictAction
	reason string
	output string
}

// Proceed creates a verdict clearing the command to run automatically.
func Proceed(reason string) Verdict {
	return Verdict{action: ActionProceed, reason: reason}
}

// CompletedManually creates a verdict recording that the user executed the
// command in a separate terminal and pasted the output back.
func CompletedManually(reason, output string) Verdict {
	return Verdict{action: ActionCompletedManually, reason: reason, output: output}
}

// Skipped creates a verdict recording that the command was blocked.
func Skipped(reason string) Verdict {
	return Verdict{action: ActionSkipped, reason: reason}
}

// Action returns the decision on how to handle the command.
func (v Verdict) Action() VerdictAction { return v.action }

// Reason returns the justification for the action, such as the forbidden
// pattern that triggered the review or the choice the user made.
func (v Verdict) Reason() string { return v.reason }

// Output returns the shell output captured during manual execution.
// It is empty unless the action is ActionCompletedManually.
func (v Verdict) Output() string { return v.output }
