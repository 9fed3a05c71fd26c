package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/creack/pty"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sys/unix"

	"github.com/ahrav/shellguard/internal/domain/interaction"
	"github.com/ahrav/shellguard/pkg/common/logger"
)

// MainSessionID identifies the default session every caller falls back to
// when no session id is supplied.
const MainSessionID = "MAIN"

// promptMarker is the trailing character of the deterministic prompt the
// session forces onto its shell. A sanitized chunk whose trailing non
// whitespace ends with it means the previous command finished.
const promptMarker = "$"

// promptSetup is the line sent right after spawn to replace the shell's own
// prompt with the deterministic one.
const promptSetup = `PS1="$ "`

// hiddenInputMask replaces secret input everywhere it could surface: command
// logs, session buffers, and the transcript sink.
const hiddenInputMask = "********"

// ErrPromptTimeout reports that a freshly spawned shell never printed the
// deterministic prompt. The session is unusable and its process was killed.
var ErrPromptTimeout = errors.New("shell prompt not observed")

// SessionConfig holds the per-session process and read-loop settings.
type SessionConfig struct {
	// Shell is the path of the shell binary to spawn.
	Shell string

	// Login makes the shell a login shell so the operator's profile, and
	// with it PATH and tool initialization, is loaded.
	Login bool

	// Columns is the pseudo terminal width. Sessions run wide so tools do
	// not wrap or truncate their output.
	Columns uint16

	// InitTimeout bounds the wait for the deterministic prompt after spawn.
	InitTimeout time.Duration

	// ReadTimeout bounds one read attempt. A read that returns no data
	// within it means output has gone idle.
	ReadTimeout time.Duration

	// ReadBufferSize is the capacity of a single read.
	ReadBufferSize int
}

// DefaultSessionConfig returns the settings used when the operator
// configures nothing.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		Shell:          "/bin/zsh",
		Login:          true,
		Columns:        1000,
		InitTimeout:    10 * time.Second,
		ReadTimeout:    2 * time.Second,
		ReadBufferSize: 64 * 1024,
	}
}

// normalized fills zero fields with their defaults. Login is left alone;
// false is a meaningful value for it.
func (c SessionConfig) normalized() SessionConfig {
	def := DefaultSessionConfig()
	if c.Shell == "" {
		c.Shell = def.Shell
	}
	if c.Columns == 0 {
		c.Columns = def.Columns
	}
	if c.InitTimeout <= 0 {
		c.InitTimeout = def.InitTimeout
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = def.ReadTimeout
	}
	if c.ReadBufferSize <= 0 {
		c.ReadBufferSize = def.ReadBufferSize
	}
	return c
}

// StreamResult is the outcome of one interaction with a session: either the
// command ran to completion (NeedsAction false) or it is stalled waiting for
// user input (NeedsAction true, with the classifier's reason). Output holds
// everything captured so far in both cases; on a stall the process keeps
// running and the caller decides how to respond.
type StreamResult struct {
	NeedsAction bool
	Reason      string
	Output      string
}

// conn is the session's view of the pseudo terminal master. *os.File
// satisfies it; tests substitute a scripted implementation.
type conn interface {
	io.ReadWriteCloser
	SetReadDeadline(t time.Time) error
}

// Session owns exactly one login-shell OS process for its entire lifetime.
// All commands issued under this session's id reuse that process, so state
// like working directory, environment, and virtualenv activation persists
// across commands. A session is not safe for concurrent use; callers
// serialize access per session id.
type Session struct {
	id  string
	cfg SessionConfig

	proc *exec.Cmd
	tty  conn

	classifier interaction.Classifier
	longRun    interaction.LongRunClassifier

	// transcript receives every sanitized chunk that is not progress noise.
	// Callers that need masking wrap it in a redacting writer; the session
	// itself only masks its own secret input.
	transcript io.Writer

	logger  *logger.Logger
	tracer  trace.Tracer
	metrics SessionMetrics

	buffer     strings.Builder
	stepBuffer strings.Builder

	closeOnce sync.Once
	closeErr  error
}

// StartSession spawns a login shell on a fresh pseudo terminal, forces the
// deterministic prompt, and waits for it. Failure to observe the prompt
// within cfg.InitTimeout is fatal for the session: the process is killed and
// ErrPromptTimeout is wrapped in the returned error.
//
// longRun and transcript may be nil. The long-running reviewer is only ever
// consulted for non-main sessions, which are the ones dedicated to detached
// processes like dev servers.
func StartSession(
	ctx context.Context,
	id string,
	cfg SessionConfig,
	classifier interaction.Classifier,
	longRun interaction.LongRunClassifier,
	transcript io.Writer,
	log *logger.Logger,
	tracer trace.Tracer,
	metrics SessionMetrics,
) (*Session, error) {
	cfg = cfg.normalized()

	var args []string
	if cfg.Login {
		args = append(args, "-l")
	}
	cmd := exec.Command(cfg.Shell, args...)
	cmd.Env = append(os.Environ(),
		"TERM=dumb",
		"NO_COLOR=1",
		"CLICOLOR=0",
		fmt.Sprintf("COLUMNS=%d", cfg.Columns),
	)

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: 24, Cols: cfg.Columns})
	if err != nil {
		return nil, fmt.Errorf("spawning shell %s: %w", cfg.Shell, err)
	}

	// Without this, every byte sent to the shell comes back interleaved
	// with command output and defeats prompt detection.
	if err := disableEcho(ptmx); err != nil {
		_ = ptmx.Close()
		_ = cmd.Process.Kill()
		return nil, fmt.Errorf("disabling terminal echo: %w", err)
	}

	s := newSession(id, cfg, ptmx, cmd, classifier, longRun, transcript, log, tracer, metrics)

	s.logger.Info(ctx, "starting shell session", "shell", cfg.Shell)
	if err := s.awaitPrompt(ctx); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("session %s: %w", s.id, err)
	}
	s.logger.Info(ctx, "shell session ready")

	return s, nil
}

// newSession wires a session around an already-open terminal. StartSession
// is the production path; tests construct sessions here directly.
func newSession(
	id string,
	cfg SessionConfig,
	tty conn,
	proc *exec.Cmd,
	classifier interaction.Classifier,
	longRun interaction.LongRunClassifier,
	transcript io.Writer,
	log *logger.Logger,
	tracer trace.Tracer,
	metrics SessionMetrics,
) *Session {
	if id == "" {
		id = MainSessionID
	}
	return &Session{
		id:         id,
		cfg:        cfg.normalized(),
		proc:       proc,
		tty:        tty,
		classifier: classifier,
		longRun:    longRun,
		transcript: transcript,
		logger:     log.With("component", "shell_session", "session_id", id),
		tracer:     tracer,
		metrics:    metrics,
	}
}

// ID returns the session identifier, MainSessionID for the default session.
func (s *Session) ID() string { return s.id }

// awaitPrompt installs the deterministic prompt and reads until it shows up.
func (s *Session) awaitPrompt(ctx context.Context) error {
	if _, err := io.WriteString(s.tty, promptSetup+"\n"); err != nil {
		return fmt.Errorf("installing prompt: %w", err)
	}

	deadline := time.Now().Add(s.cfg.InitTimeout)
	buf := make([]byte, s.cfg.ReadBufferSize)
	var seen strings.Builder

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !time.Now().Before(deadline) {
			return fmt.Errorf("%w within %s", ErrPromptTimeout, s.cfg.InitTimeout)
		}

		_ = s.tty.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
		n, err := s.tty.Read(buf)
		if n > 0 {
			seen.WriteString(Sanitize(string(buf[:n])))
			if endsWithPrompt(seen.String()) {
				return nil
			}
		}
		if err != nil && !errors.Is(err, os.ErrDeadlineExceeded) {
			return fmt.Errorf("reading during init: %w", err)
		}
	}
}

// Send writes text to the shell as-is and streams the response.
func (s *Session) Send(ctx context.Context, text string) (StreamResult, error) {
	if _, err := io.WriteString(s.tty, text); err != nil {
		return s.result(false, ""), fmt.Errorf("writing to shell: %w", err)
	}
	return s.stream(ctx, text, "")
}

// SendLine writes text followed by a newline and streams the response.
func (s *Session) SendLine(ctx context.Context, text string) (StreamResult, error) {
	if _, err := io.WriteString(s.tty, text+"\n"); err != nil {
		return s.result(false, ""), fmt.Errorf("writing to shell: %w", err)
	}
	return s.stream(ctx, text, "")
}

// SendControl delivers a control character (for example 'c' for SIGINT) to
// the foreground process and streams the response. This is the sanctioned
// way to break a long-running command: the read loop itself cannot be
// interrupted mid-iteration.
func (s *Session) SendControl(ctx context.Context, c rune) (StreamResult, error) {
	b, err := controlByte(c)
	if err != nil {
		return s.result(false, ""), err
	}
	if _, err := s.tty.Write([]byte{b}); err != nil {
		return s.result(false, ""), fmt.Errorf("writing control character: %w", err)
	}
	return s.stream(ctx, "^"+strings.ToUpper(string(c)), "")
}

// RunCommand runs a command line in the shell: SendLine plus the read loop.
func (s *Session) RunCommand(ctx context.Context, command string) (StreamResult, error) {
	return s.SendLine(ctx, command)
}

// SendSecret writes a secret (sudo password, API token) followed by a
// newline. The secret never surfaces: logs show a fixed placeholder and any
// occurrence in the output stream is masked before it reaches the buffers
// or the transcript sink.
func (s *Session) SendSecret(ctx context.Context, secret string) (StreamResult, error) {
	if _, err := io.WriteString(s.tty, secret+"\n"); err != nil {
		return s.result(false, ""), fmt.Errorf("writing to shell: %w", err)
	}
	return s.stream(ctx, hiddenInputMask, secret)
}

// stream drives the read loop for a command already written to the shell.
// display is the representation safe to log; hide, when non-empty, is a
// literal that must be masked out of every captured chunk.
//
// The loop ends in one of four ways: the prompt marker arrives (command
// complete), the interaction classifier reports a stall (command still
// running, caller must act), the stream dies (best-effort partial result),
// or ctx is cancelled (partial result plus ctx.Err()).
func (s *Session) stream(ctx context.Context, display, hide string) (StreamResult, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "shell_session.stream_command",
		trace.WithAttributes(attribute.String("session_id", s.id)),
	)
	defer span.End()

	s.metrics.IncCommandsStarted(ctx)
	s.logger.Info(ctx, "running command", "command", display)

	s.buffer.Reset()
	buf := make([]byte, s.cfg.ReadBufferSize)

	// classified tracks whether the current idle stretch was already sent
	// to the classifier. It resets whenever new data arrives, so each idle
	// stretch costs exactly one classification no matter how many read
	// timeouts it spans.
	classified := false

loop:
	for {
		if err := ctx.Err(); err != nil {
			span.SetAttributes(attribute.Bool("cancelled", true))
			return s.result(false, ""), err
		}

		_ = s.tty.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
		n, err := s.tty.Read(buf)
		if n > 0 {
			chunk := Sanitize(string(buf[:n]))
			if hide != "" {
				chunk = strings.ReplaceAll(chunk, hide, hiddenInputMask)
			}
			s.buffer.WriteString(chunk)
			s.stepBuffer.WriteString(chunk)
			s.mirror(ctx, chunk)
			classified = false

			if endsWithPrompt(chunk) {
				s.logger.Debug(ctx, "shell prompt detected; command finished")
				break loop
			}
			continue
		}
		if err == nil {
			continue
		}

		switch {
		case errors.Is(err, os.ErrDeadlineExceeded):
			if classified {
				continue
			}
			classified = true
			if res, decided := s.reviewStall(ctx); decided {
				s.metrics.ObserveCommandDuration(ctx, time.Since(start))
				span.SetAttributes(attribute.Bool("needs_action", res.NeedsAction))
				return res, nil
			}

		case errors.Is(err, io.EOF):
			s.logger.Error(ctx, "shell stream closed", "error", err)
			break loop

		default:
			s.logger.Error(ctx, "unexpected read failure on shell stream", "error", err)
			break loop
		}
	}

	s.mirror(ctx, "\n")
	s.metrics.ObserveCommandDuration(ctx, time.Since(start))
	s.logger.Info(ctx, "command finished")

	return s.result(false, ""), nil
}

// reviewStall consults the injected classifiers about an idle output
// stretch. The second return reports whether the verdict ends the read loop.
// Classifier errors never do: the loop keeps waiting, because giving up on
// an output-quiet command would abandon work that may simply be slow.
func (s *Session) reviewStall(ctx context.Context) (StreamResult, bool) {
	trimmed := strings.TrimSpace(s.buffer.String())
	if trimmed == "" {
		return StreamResult{}, false
	}

	s.metrics.IncStallsClassified(ctx)
	s.logger.Debug(ctx, "output idle; consulting interaction classifier")

	review, err := s.classifier.Classify(ctx, trimmed)
	if err != nil {
		s.metrics.IncClassifierFailures(ctx)
		s.logger.Error(ctx, "interaction classifier failed; continuing read loop", "error", err)
		return StreamResult{}, false
	}
	if review.NeedsAction {
		s.logger.Info(ctx, "shell is waiting for user input", "reason", review.Reason)
		s.mirror(ctx, "\n")
		return s.result(true, review.Reason), true
	}

	// Main-session commands are interactive work the operator is following;
	// only sessions dedicated to detached processes get the health review.
	if s.longRun == nil || s.id == MainSessionID {
		return StreamResult{}, false
	}

	procReview, err := s.longRun.Review(ctx, trimmed)
	if err != nil {
		s.metrics.IncClassifierFailures(ctx)
		s.logger.Error(ctx, "long-running process review failed; continuing read loop", "error", err)
		return StreamResult{}, false
	}
	switch procReview.State {
	case interaction.ProcessRunning:
		reason := "Long-running process is running stable and can be left unsupervised. " + procReview.Reason
		return s.result(false, reason), true
	case interaction.ProcessErrored:
		return s.result(true, procReview.Reason), true
	}
	return StreamResult{}, false
}

// result snapshots the per-command buffer into a StreamResult.
func (s *Session) result(needsAction bool, reason string) StreamResult {
	return StreamResult{
		NeedsAction: needsAction,
		Reason:      reason,
		Output:      s.buffer.String(),
	}
}

// mirror forwards a chunk to the transcript sink unless it is progress
// noise. Buffers always keep the chunk; only the sink is spared the spam.
func (s *Session) mirror(ctx context.Context, chunk string) {
	if s.transcript == nil || chunk == "" || IsProgressNoise(chunk) {
		return
	}
	if _, err := s.transcript.Write([]byte(chunk)); err != nil {
		s.logger.Warn(ctx, "transcript write failed", "error", err)
	}
}

// StepBuffer returns everything this session captured since the last
// ResetStepBuffer, spanning any number of commands. Callers use it when a
// workflow step needs "everything printed so far" rather than the output of
// the last command.
func (s *Session) StepBuffer() string { return s.stepBuffer.String() }

// ResetStepBuffer clears the step buffer. The per-command buffer and the
// process itself are unaffected.
func (s *Session) ResetStepBuffer() { s.stepBuffer.Reset() }

// Close terminates the shell process and releases the terminal. It is
// idempotent; later calls return the first result.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		if s.tty != nil {
			s.closeErr = s.tty.Close()
		}
		if s.proc != nil && s.proc.Process != nil {
			_ = s.proc.Process.Kill()
			_ = s.proc.Wait()
		}
	})
	return s.closeErr
}

// endsWithPrompt reports whether the trailing non-whitespace of s is the
// prompt marker.
func endsWithPrompt(s string) bool {
	return strings.HasSuffix(strings.TrimRight(s, " \t\r\n"), promptMarker)
}

// controlByte maps a letter to its control character, e.g. 'c' to 0x03.
func controlByte(c rune) (byte, error) {
	switch {
	case c >= 'a' && c <= 'z':
		return byte(c-'a') + 1, nil
	case c >= 'A' && c <= 'Z':
		return byte(c-'A') + 1, nil
	}
	return 0, fmt.Errorf("unsupported control character %q", c)
}

// disableEcho clears the ECHO flag on the session terminal.
func disableEcho(f *os.File) error {
	fd := int(f.Fd())
	termios, err := unix.IoctlGetTermios(fd, ioctlReadTermios)
	if err != nil {
		return err
	}
	termios.Lflag &^= unix.ECHO
	return unix.IoctlSetTermios(fd, ioctlWriteTermios, termios)
}
