package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ahrav/shellguard/internal/app/guard"
	"github.com/ahrav/shellguard/internal/app/redaction"
	"github.com/ahrav/shellguard/internal/domain/security"
	"github.com/ahrav/shellguard/internal/infra/console"
	"github.com/ahrav/shellguard/internal/infra/shell"
	"github.com/ahrav/shellguard/pkg/common/logger"
)

// errQuit reports an operator-requested exit.
var errQuit = errors.New("quit requested")

// repl is the operator loop. Plain lines are security-reviewed and run on
// the active session. Meta commands (":"-prefixed) manage sessions and the
// step buffer. While the active session is stalled on an interactive prompt,
// plain lines are fed to the waiting program verbatim instead of being
// treated as new commands.
type repl struct {
	registry *shell.Registry
	guard    *guard.Guard
	redactor *redaction.Redactor
	console  *console.Console
	logger   *logger.Logger

	in  io.Reader
	out io.Writer

	activeID string
	awaiting bool
}

// run reads operator lines until EOF, :quit, or context cancellation.
func (r *repl) run(ctx context.Context) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r.in)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		fmt.Fprint(r.out, "shellguard> ")
		select {
		case <-ctx.Done():
			fmt.Fprintln(r.out)
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			if err := r.handleLine(ctx, line); err != nil {
				if errors.Is(err, errQuit) {
					return
				}
				r.logger.Error(ctx, "command failed", "error", err)
			}
		}
	}
}

func (r *repl) handleLine(ctx context.Context, line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	if strings.HasPrefix(line, ":") {
		return r.handleMeta(ctx, line)
	}

	if r.awaiting {
		res, err := r.session().SendLine(ctx, line)
		if err != nil {
			return fmt.Errorf("sending input to session: %w", err)
		}
		return r.printResult(ctx, res)
	}

	return r.reviewAndRun(ctx, line)
}

// reviewAndRun takes a command through the security guard and, when cleared,
// runs it on the active session.
func (r *repl) reviewAndRun(ctx context.Context, command string) error {
	verdict, err := r.guard.Review(ctx, command)
	if err != nil {
		return fmt.Errorf("reviewing command: %w", err)
	}

	switch verdict.Action() {
	case security.ActionSkipped:
		fmt.Fprintf(r.out, "skipped: %s\n", verdict.Reason())
		return nil
	case security.ActionCompletedManually:
		masked, err := r.redactor.Mask(ctx, verdict.Output())
		if err != nil {
			return fmt.Errorf("masking manual output: %w", err)
		}
		fmt.Fprint(r.out, masked)
		return nil
	}

	res, err := r.session().RunCommand(ctx, command)
	if err != nil {
		if res.Output == "" {
			return fmt.Errorf("running command: %w", err)
		}
		// Partial output is still worth showing.
		r.logger.Warn(ctx, "command ended early", "error", err)
	}
	return r.printResult(ctx, res)
}

// printResult prints a stream result with secrets masked and records whether
// the session is now waiting on operator input.
func (r *repl) printResult(ctx context.Context, res shell.StreamResult) error {
	masked, err := r.redactor.Mask(ctx, res.Output)
	if err != nil {
		return fmt.Errorf("masking output: %w", err)
	}
	fmt.Fprint(r.out, masked)
	if masked != "" && !strings.HasSuffix(masked, "\n") {
		fmt.Fprintln(r.out)
	}

	r.awaiting = res.NeedsAction
	switch {
	case res.NeedsAction:
		fmt.Fprintf(r.out, "[input required] %s\n", res.Reason)
		fmt.Fprintln(r.out, "(the next plain line is sent to the waiting program; use :sudo for hidden input)")
	case res.Reason != "":
		fmt.Fprintf(r.out, "[note] %s\n", res.Reason)
	}
	return nil
}

func (r *repl) handleMeta(ctx context.Context, line string) error {
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case ":quit":
		return errQuit

	case ":register":
		id, err := r.registry.Register(ctx)
		if err != nil {
			return fmt.Errorf("registering session: %w", err)
		}
		fmt.Fprintf(r.out, "session %s registered\n", id)
		return nil

	case ":use":
		r.activeID = arg
		r.awaiting = false
		fmt.Fprintf(r.out, "using session %s\n", r.session().ID())
		return nil

	case ":step":
		fmt.Fprintln(r.out, r.session().StepBuffer())
		return nil

	case ":reset":
		r.session().ResetStepBuffer()
		fmt.Fprintln(r.out, "step buffer cleared")
		return nil

	case ":sudo":
		secret, err := r.console.AskSecret(ctx, "Secret input:")
		if err != nil {
			return fmt.Errorf("collecting secret: %w", err)
		}
		res, err := r.session().SendSecret(ctx, secret)
		if err != nil {
			return fmt.Errorf("sending secret to session: %w", err)
		}
		return r.printResult(ctx, res)

	default:
		fmt.Fprintf(r.out, "unknown meta command %q\n", cmd)
		return nil
	}
}

// session resolves the active session. Unknown ids fall back to the main
// session, same as Registry.Get.
func (r *repl) session() *shell.Session {
	return r.registry.Get(r.activeID)
}
