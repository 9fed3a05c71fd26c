// Package console implements the operator-facing interactive surfaces: the
// security remediation menu, manual-execution output collection, and
// no-echo secret entry.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"golang.org/x/term"

	"github.com/ahrav/shellguard/internal/app/guard"
	"github.com/ahrav/shellguard/internal/domain/security"
)

// ErrNotInteractive reports that a prompt was required but the process has
// no terminal to ask on. Callers treat it as an unanswered question, which
// for the security guard means the command is not cleared.
var ErrNotInteractive = errors.New("no interactive terminal available")

// Console drives prompts on the operator's terminal. It is safe to share:
// prompts are already serialized by the callers (one review or one secret
// entry at a time).
type Console struct {
	out         io.Writer
	interactive bool

	// askOne is survey.AskOne, swappable in tests.
	askOne func(p survey.Prompt, response any, opts ...survey.AskOpt) error
}

// New builds a console writing its banners to out (the prompts themselves
// render on the process terminal). Interactivity is probed once, on stdin.
func New(out io.Writer) *Console {
	if out == nil {
		out = os.Stdout
	}
	return &Console{
		out:         out,
		interactive: term.IsTerminal(int(os.Stdin.Fd())),
		askOne:      survey.AskOne,
	}
}

var _ guard.Prompter = (*Console)(nil)

// Choose presents the four remediation options for a flagged command and
// returns the operator's pick.
func (c *Console) Choose(ctx context.Context, alert guard.Alert) (security.Choice, error) {
	fmt.Fprintf(c.out, "\nSecurity Alert: Command matches forbidden pattern '%s'\n", alert.Pattern)
	fmt.Fprintf(c.out, "   Command: %s\n", alert.Command)

	choices := security.MenuChoices()
	options := make([]string, len(choices))
	for i, choice := range choices {
		options[i] = choice.Display(alert.File)
	}

	var answer string
	prompt := &survey.Select{
		Message: "Choose an action:",
		Options: options,
		Default: options[0],
	}
	if err := c.ask(ctx, prompt, &answer); err != nil {
		return "", err
	}

	for i, option := range options {
		if option == answer {
			return choices[i], nil
		}
	}
	return "", fmt.Errorf("unrecognized menu answer %q", answer)
}

// CollectManualOutput prints out-of-band execution instructions and gathers
// the output the operator pasted back. An empty paste is a valid answer.
func (c *Console) CollectManualOutput(ctx context.Context, command string) (string, error) {
	divider := strings.Repeat("-", 40)
	fmt.Fprintf(c.out, "\n%s\n", divider)
	fmt.Fprintln(c.out, "MANUAL EXECUTION INSTRUCTIONS")
	fmt.Fprintln(c.out, "1. Open a new terminal window.")
	fmt.Fprintf(c.out, "2. Run this command:\n\n   %s\n\n", command)
	fmt.Fprintln(c.out, "3. Once done, copy the output (if any) and paste it below.")
	fmt.Fprintf(c.out, "%s\n", divider)

	var output string
	prompt := &survey.Multiline{
		Message: "Paste command output here (press Enter if no output):",
	}
	if err := c.ask(ctx, prompt, &output); err != nil {
		return "", err
	}
	return output, nil
}

// AskSecret prompts for a secret value without echoing it back.
func (c *Console) AskSecret(ctx context.Context, message string) (string, error) {
	var secret string
	if err := c.ask(ctx, &survey.Password{Message: message}, &secret); err != nil {
		return "", err
	}
	return secret, nil
}

// ask guards a survey prompt with the context and interactivity checks.
// survey itself cannot be cancelled mid-prompt; the context is honored at
// the boundary.
func (c *Console) ask(ctx context.Context, prompt survey.Prompt, response any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !c.interactive {
		return ErrNotInteractive
	}
	if err := c.askOne(prompt, response); err != nil {
		return fmt.Errorf("reading operator input: %w", err)
	}
	return nil
}
