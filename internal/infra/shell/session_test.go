package shell

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/ahrav/shellguard/internal/domain/interaction"
	"github.com/ahrav/shellguard/pkg/common/logger"
)

// ttyEvent is one scripted outcome of a Read on the fake terminal.
type ttyEvent struct {
	data    string
	timeout bool
	eof     bool
}

func dataEvent(s string) ttyEvent { return ttyEvent{data: s} }

func timeoutEvent() ttyEvent { return ttyEvent{timeout: true} }

func eofEvent() ttyEvent { return ttyEvent{eof: true} }

// fakeTTY replays a script of read outcomes and records everything written
// to it. Once the script is exhausted every Read times out, mimicking a
// quiet terminal.
type fakeTTY struct {
	mu     sync.Mutex
	events []ttyEvent
	writes bytes.Buffer
	closed bool
}

func newFakeTTY(events ...ttyEvent) *fakeTTY {
	return &fakeTTY{events: events}
}

func (f *fakeTTY) Read(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return 0, io.EOF
	}
	if len(f.events) == 0 {
		return 0, os.ErrDeadlineExceeded
	}

	ev := f.events[0]
	f.events = f.events[1:]
	switch {
	case ev.timeout:
		return 0, os.ErrDeadlineExceeded
	case ev.eof:
		return 0, io.EOF
	}
	return copy(p, ev.data), nil
}

func (f *fakeTTY) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes.Write(p)
}

func (f *fakeTTY) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeTTY) SetReadDeadline(time.Time) error { return nil }

func (f *fakeTTY) written() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes.String()
}

// classifierFunc adapts a function to interaction.Classifier.
type classifierFunc func(ctx context.Context, output string) (interaction.Review, error)

func (f classifierFunc) Classify(ctx context.Context, output string) (interaction.Review, error) {
	return f(ctx, output)
}

// longRunFunc adapts a function to interaction.LongRunClassifier.
type longRunFunc func(ctx context.Context, output string) (interaction.ProcessReview, error)

func (f longRunFunc) Review(ctx context.Context, output string) (interaction.ProcessReview, error) {
	return f(ctx, output)
}

func quietClassifier() interaction.Classifier {
	return classifierFunc(func(context.Context, string) (interaction.Review, error) {
		return interaction.Review{}, nil
	})
}

// captureSessionMetrics records metric calls for assertions.
type captureSessionMetrics struct {
	mu       sync.Mutex
	started  int
	stalls   int
	failures int
}

func (m *captureSessionMetrics) IncCommandsStarted(context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started++
}

func (m *captureSessionMetrics) IncStallsClassified(context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stalls++
}

func (m *captureSessionMetrics) IncClassifierFailures(context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures++
}

func (m *captureSessionMetrics) ObserveCommandDuration(context.Context, time.Duration) {}

type sessionOption func(*sessionParams)

type sessionParams struct {
	id         string
	classifier interaction.Classifier
	longRun    interaction.LongRunClassifier
	transcript io.Writer
	metrics    SessionMetrics
}

func withID(id string) sessionOption {
	return func(p *sessionParams) { p.id = id }
}

func withClassifier(c interaction.Classifier) sessionOption {
	return func(p *sessionParams) { p.classifier = c }
}

func withLongRun(l interaction.LongRunClassifier) sessionOption {
	return func(p *sessionParams) { p.longRun = l }
}

func withTranscript(w io.Writer) sessionOption {
	return func(p *sessionParams) { p.transcript = w }
}

func withMetrics(m SessionMetrics) sessionOption {
	return func(p *sessionParams) { p.metrics = m }
}

func newTestSession(t *testing.T, tty conn, opts ...sessionOption) *Session {
	t.Helper()

	params := sessionParams{
		id:         MainSessionID,
		classifier: quietClassifier(),
		metrics:    new(captureSessionMetrics),
	}
	for _, opt := range opts {
		opt(&params)
	}

	cfg := SessionConfig{
		InitTimeout: 250 * time.Millisecond,
		ReadTimeout: 5 * time.Millisecond,
	}
	tracer := noop.NewTracerProvider().Tracer("test")
	return newSession(
		params.id, cfg, tty, nil,
		params.classifier, params.longRun, params.transcript,
		logger.Noop(), tracer, params.metrics,
	)
}

func TestSessionCommandCompletesAtPrompt(t *testing.T) {
	t.Parallel()

	tty := newFakeTTY(
		dataEvent("file_a\nfile_b\n"),
		dataEvent("$ "),
	)
	s := newTestSession(t, tty)

	res, err := s.RunCommand(context.Background(), "ls")
	require.NoError(t, err)

	assert.False(t, res.NeedsAction)
	assert.Equal(t, "file_a\nfile_b\n$ ", res.Output)
	assert.Equal(t, "ls\n", tty.written())
}

func TestSessionSanitizesChunks(t *testing.T) {
	t.Parallel()

	tty := newFakeTTY(
		dataEvent("\x1b[0;31merror:\x1b[0m missing\r\n"),
		dataEvent("$ "),
	)
	s := newTestSession(t, tty)

	res, err := s.RunCommand(context.Background(), "make")
	require.NoError(t, err)
	assert.Equal(t, "error: missing\n$ ", res.Output)
}

func TestSessionStallNeedsAction(t *testing.T) {
	t.Parallel()

	tty := newFakeTTY(
		dataEvent("Do you want to continue? [Y/n] "),
		timeoutEvent(),
	)
	var sawOutput string
	classifier := classifierFunc(func(_ context.Context, output string) (interaction.Review, error) {
		sawOutput = output
		return interaction.Review{NeedsAction: true, Reason: "waiting for confirmation"}, nil
	})
	metrics := new(captureSessionMetrics)
	s := newTestSession(t, tty, withClassifier(classifier), withMetrics(metrics))

	res, err := s.RunCommand(context.Background(), "apt-get install build-essential")
	require.NoError(t, err)

	assert.True(t, res.NeedsAction)
	assert.Equal(t, "waiting for confirmation", res.Reason)
	assert.Equal(t, "Do you want to continue? [Y/n] ", res.Output)
	assert.Equal(t, "Do you want to continue? [Y/n]", sawOutput,
		"classifier receives the trimmed accumulated buffer")
	assert.Equal(t, 1, metrics.stalls)
}

func TestSessionClassifiesIdleStretchOnce(t *testing.T) {
	t.Parallel()

	tty := newFakeTTY(
		dataEvent("compiling...\n"),
		timeoutEvent(),
		timeoutEvent(),
		timeoutEvent(),
		dataEvent("$ "),
	)
	var calls int
	classifier := classifierFunc(func(context.Context, string) (interaction.Review, error) {
		calls++
		return interaction.Review{}, nil
	})
	s := newTestSession(t, tty, withClassifier(classifier))

	res, err := s.RunCommand(context.Background(), "make build")
	require.NoError(t, err)

	assert.False(t, res.NeedsAction)
	assert.Equal(t, 1, calls, "one idle stretch costs one classification")
}

func TestSessionClassifiesAgainAfterNewOutput(t *testing.T) {
	t.Parallel()

	tty := newFakeTTY(
		dataEvent("phase one\n"),
		timeoutEvent(),
		dataEvent("phase two\n"),
		timeoutEvent(),
		dataEvent("$ "),
	)
	var calls int
	classifier := classifierFunc(func(context.Context, string) (interaction.Review, error) {
		calls++
		return interaction.Review{}, nil
	})
	s := newTestSession(t, tty, withClassifier(classifier))

	_, err := s.RunCommand(context.Background(), "slow-script")
	require.NoError(t, err)
	assert.Equal(t, 2, calls, "new output re-arms the classifier")
}

func TestSessionSkipsClassifierOnEmptyBuffer(t *testing.T) {
	t.Parallel()

	tty := newFakeTTY(
		timeoutEvent(),
		dataEvent("$ "),
	)
	classifier := classifierFunc(func(context.Context, string) (interaction.Review, error) {
		t.Error("classifier must not run before any output arrives")
		return interaction.Review{}, nil
	})
	metrics := new(captureSessionMetrics)
	s := newTestSession(t, tty, withClassifier(classifier), withMetrics(metrics))

	_, err := s.RunCommand(context.Background(), "true")
	require.NoError(t, err)
	assert.Zero(t, metrics.stalls)
}

func TestSessionClassifierFailureKeepsReading(t *testing.T) {
	t.Parallel()

	tty := newFakeTTY(
		dataEvent("thinking\n"),
		timeoutEvent(),
		dataEvent("done\n"),
		dataEvent("$ "),
	)
	classifier := classifierFunc(func(context.Context, string) (interaction.Review, error) {
		return interaction.Review{}, errors.New("classifier offline")
	})
	metrics := new(captureSessionMetrics)
	s := newTestSession(t, tty, withClassifier(classifier), withMetrics(metrics))

	res, err := s.RunCommand(context.Background(), "job")
	require.NoError(t, err)

	assert.False(t, res.NeedsAction)
	assert.Contains(t, res.Output, "done")
	assert.Equal(t, 1, metrics.failures)
}

func TestSessionLongRunReviewOnDedicatedSession(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		state       interaction.ProcessState
		reason      string
		wantAction  bool
		wantReason  string
		wantDecided bool
	}{
		{
			name:        "healthy server releases the caller",
			state:       interaction.ProcessRunning,
			reason:      "Server is listening on :3000",
			wantAction:  false,
			wantReason:  "Long-running process is running stable and can be left unsupervised. Server is listening on :3000",
			wantDecided: true,
		},
		{
			name:        "errored process needs action",
			state:       interaction.ProcessErrored,
			reason:      "Port 3000 already in use",
			wantAction:  true,
			wantReason:  "Port 3000 already in use",
			wantDecided: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tty := newFakeTTY(
				dataEvent("starting dev server\n"),
				timeoutEvent(),
			)
			longRun := longRunFunc(func(context.Context, string) (interaction.ProcessReview, error) {
				return interaction.ProcessReview{State: tt.state, Reason: tt.reason}, nil
			})
			s := newTestSession(t, tty, withID("f3c6d1de-aaaa-bbbb-cccc-000000000001"), withLongRun(longRun))

			res, err := s.RunCommand(context.Background(), "npm run dev")
			require.NoError(t, err)

			assert.Equal(t, tt.wantAction, res.NeedsAction)
			assert.Equal(t, tt.wantReason, res.Reason)
		})
	}
}

func TestSessionLongRunStillInitializingKeepsWaiting(t *testing.T) {
	t.Parallel()

	tty := newFakeTTY(
		dataEvent("booting\n"),
		timeoutEvent(),
		dataEvent("ready\n"),
		dataEvent("$ "),
	)
	longRun := longRunFunc(func(context.Context, string) (interaction.ProcessReview, error) {
		return interaction.ProcessReview{State: interaction.ProcessInitializing}, nil
	})
	s := newTestSession(t, tty, withID("f3c6d1de-aaaa-bbbb-cccc-000000000002"), withLongRun(longRun))

	res, err := s.RunCommand(context.Background(), "npm run dev")
	require.NoError(t, err)
	assert.False(t, res.NeedsAction)
	assert.Contains(t, res.Output, "ready")
}

func TestSessionMainNeverGetsLongRunReview(t *testing.T) {
	t.Parallel()

	tty := newFakeTTY(
		dataEvent("working\n"),
		timeoutEvent(),
		dataEvent("$ "),
	)
	longRun := longRunFunc(func(context.Context, string) (interaction.ProcessReview, error) {
		t.Error("long-running review must not run on the main session")
		return interaction.ProcessReview{}, nil
	})
	s := newTestSession(t, tty, withLongRun(longRun))

	_, err := s.RunCommand(context.Background(), "sleep 5")
	require.NoError(t, err)
}

func TestSessionSendSecretMasksEverywhere(t *testing.T) {
	t.Parallel()

	transcript := new(bytes.Buffer)
	tty := newFakeTTY(
		dataEvent("token hunter2-value accepted\n"),
		dataEvent("$ "),
	)
	s := newTestSession(t, tty, withTranscript(transcript))

	res, err := s.SendSecret(context.Background(), "hunter2-value")
	require.NoError(t, err)

	assert.Equal(t, "hunter2-value\n", tty.written(), "the shell itself receives the real secret")
	assert.NotContains(t, res.Output, "hunter2-value")
	assert.Contains(t, res.Output, hiddenInputMask)
	assert.NotContains(t, transcript.String(), "hunter2-value")
	assert.NotContains(t, s.StepBuffer(), "hunter2-value")
}

func TestSessionSendControl(t *testing.T) {
	t.Parallel()

	tty := newFakeTTY(
		dataEvent("^C\n"),
		dataEvent("$ "),
	)
	s := newTestSession(t, tty)

	_, err := s.SendControl(context.Background(), 'c')
	require.NoError(t, err)
	assert.Equal(t, "\x03", tty.written())

	_, err = s.SendControl(context.Background(), '9')
	require.Error(t, err)
}

func TestSessionTranscriptSkipsProgressNoise(t *testing.T) {
	t.Parallel()

	transcript := new(bytes.Buffer)
	tty := newFakeTTY(
		dataEvent("12.5%#### "),
		dataEvent("99.9%######## "),
		dataEvent("installed ok\n"),
		dataEvent("$ "),
	)
	s := newTestSession(t, tty, withTranscript(transcript))

	res, err := s.RunCommand(context.Background(), "pip install torch")
	require.NoError(t, err)

	assert.Contains(t, res.Output, "12.5%####", "buffers keep progress output")
	assert.NotContains(t, transcript.String(), "12.5%####", "transcript sink is spared it")
	assert.Contains(t, transcript.String(), "installed ok")
}

func TestSessionStepBufferSpansCommands(t *testing.T) {
	t.Parallel()

	tty := newFakeTTY(
		dataEvent("first\n$ "),
		dataEvent("second\n$ "),
	)
	s := newTestSession(t, tty)

	res1, err := s.RunCommand(context.Background(), "echo first")
	require.NoError(t, err)
	res2, err := s.RunCommand(context.Background(), "echo second")
	require.NoError(t, err)

	assert.Equal(t, "first\n$ ", res1.Output)
	assert.Equal(t, "second\n$ ", res2.Output, "per-command buffer resets between commands")
	assert.Equal(t, "first\n$ second\n$ ", s.StepBuffer(), "step buffer accumulates across commands")

	s.ResetStepBuffer()
	assert.Empty(t, s.StepBuffer())
}

func TestSessionContextCancellationReturnsPartialOutput(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	tty := newFakeTTY(
		dataEvent("partial work\n"),
		timeoutEvent(),
	)
	classifier := classifierFunc(func(context.Context, string) (interaction.Review, error) {
		cancel()
		return interaction.Review{}, nil
	})
	s := newTestSession(t, tty, withClassifier(classifier))

	res, err := s.RunCommand(ctx, "long job")
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "partial work\n", res.Output, "accumulated output survives cancellation")
}

func TestSessionStreamEOFReturnsPartialResult(t *testing.T) {
	t.Parallel()

	tty := newFakeTTY(
		dataEvent("about to die\n"),
		eofEvent(),
	)
	s := newTestSession(t, tty)

	res, err := s.RunCommand(context.Background(), "crash")
	require.NoError(t, err)
	assert.False(t, res.NeedsAction)
	assert.Equal(t, "about to die\n", res.Output)
}

func TestSessionAwaitPrompt(t *testing.T) {
	t.Parallel()

	t.Run("prompt observed", func(t *testing.T) {
		t.Parallel()
		tty := newFakeTTY(
			dataEvent("Last login: Mon Aug 25\n"),
			dataEvent("$ "),
		)
		s := newTestSession(t, tty)
		require.NoError(t, s.awaitPrompt(context.Background()))
	})

	t.Run("times out without prompt", func(t *testing.T) {
		t.Parallel()
		s := newTestSession(t, newFakeTTY())
		err := s.awaitPrompt(context.Background())
		require.ErrorIs(t, err, ErrPromptTimeout)
	})
}

func TestSessionCloseIsIdempotent(t *testing.T) {
	t.Parallel()

	tty := newFakeTTY()
	s := newTestSession(t, tty)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	tty.mu.Lock()
	defer tty.mu.Unlock()
	assert.True(t, tty.closed)
}
