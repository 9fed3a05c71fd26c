package guard

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/ahrav/shellguard/internal/domain/interaction"
	"github.com/ahrav/shellguard/internal/domain/security"
	"github.com/ahrav/shellguard/pkg/common/logger"
)

// scriptedPrompter returns a fixed choice and records every alert.
type scriptedPrompter struct {
	choice    security.Choice
	manual    string
	chooseErr error

	alerts []Alert
	calls  int
}

func (p *scriptedPrompter) Choose(_ context.Context, alert Alert) (security.Choice, error) {
	p.calls++
	p.alerts = append(p.alerts, alert)
	if p.chooseErr != nil {
		return "", p.chooseErr
	}
	return p.choice, nil
}

func (p *scriptedPrompter) CollectManualOutput(context.Context, string) (string, error) {
	return p.manual, nil
}

// safetyFunc adapts a function to interaction.SafetyClassifier.
type safetyFunc func(ctx context.Context, command, whitelist string) (interaction.SafetyAssessment, error)

func (f safetyFunc) Assess(ctx context.Context, command, whitelist string) (interaction.SafetyAssessment, error) {
	return f(ctx, command, whitelist)
}

func unsafeAlways() interaction.SafetyClassifier {
	return safetyFunc(func(context.Context, string, string) (interaction.SafetyAssessment, error) {
		return interaction.SafetyAssessment{Safe: false, Reason: "reads a non-whitelisted sensitive file"}, nil
	})
}

func forbidSafetyCalls(t *testing.T) interaction.SafetyClassifier {
	return safetyFunc(func(context.Context, string, string) (interaction.SafetyAssessment, error) {
		t.Error("safety classifier must not be consulted")
		return interaction.SafetyAssessment{}, nil
	})
}

func newTestGuard(
	t *testing.T,
	state *security.Context,
	safety interaction.SafetyClassifier,
	prompter Prompter,
	home string,
) *Guard {
	t.Helper()

	g, err := New(state, safety, prompter, Config{
		ProjectRoot: home,
		Home:        home,
	}, logger.Noop(), noop.NewTracerProvider().Tracer("test"))
	require.NoError(t, err)
	return g
}

func TestReviewCleanCommandProceeds(t *testing.T) {
	t.Parallel()

	prompter := &scriptedPrompter{}
	g := newTestGuard(t, security.NewContext(), forbidSafetyCalls(t), prompter, t.TempDir())

	verdict, err := g.Review(context.Background(), "ls -la /tmp")
	require.NoError(t, err)

	assert.Equal(t, security.ActionProceed, verdict.Action())
	assert.Equal(t, "No forbidden pattern found in the command", verdict.Reason())
	assert.Zero(t, prompter.calls)
}

func TestReviewWhitelistRoundTrip(t *testing.T) {
	t.Parallel()

	home := t.TempDir()
	state := security.NewContext()
	prompter := &scriptedPrompter{choice: security.ChoiceAllowAndWhitelist}

	var safetyCalls int
	safety := safetyFunc(func(context.Context, string, string) (interaction.SafetyAssessment, error) {
		safetyCalls++
		return interaction.SafetyAssessment{Safe: false, Reason: "reads a sensitive file"}, nil
	})
	g := newTestGuard(t, state, safety, prompter, home)

	first, err := g.Review(context.Background(), "cat ~/.ssh/id_rsa")
	require.NoError(t, err)
	assert.Equal(t, security.ActionProceed, first.Action())
	assert.Equal(t, "User allowed to proceed with the command execution.", first.Reason())
	assert.True(t, state.IsWhitelisted(filepath.Join(home, ".ssh", "id_rsa")))

	second, err := g.Review(context.Background(), "cat ~/.ssh/id_rsa")
	require.NoError(t, err)
	assert.Equal(t, security.ActionProceed, second.Action())
	assert.Contains(t, second.Reason(), "whitelisted")

	assert.Equal(t, 1, prompter.calls, "whitelisted command must not re-prompt")
	assert.Equal(t, 1, safetyCalls, "whitelist short-circuits the safety review")
}

func TestReviewSensitiveCommandIsNotCleared(t *testing.T) {
	t.Parallel()

	prompter := &scriptedPrompter{choice: security.ChoiceSkip}
	g := newTestGuard(t, security.NewContext(), unsafeAlways(), prompter, t.TempDir())

	verdict, err := g.Review(context.Background(), "cat ~/.ssh/id_rsa")
	require.NoError(t, err)

	assert.NotEqual(t, security.ActionProceed, verdict.Action())
	assert.Equal(t, security.ActionSkipped, verdict.Action())
	assert.Equal(t, "Blocked by user: *.ssh/*", verdict.Reason())
}

func TestReviewSafetyReviewClearsCommand(t *testing.T) {
	t.Parallel()

	prompter := &scriptedPrompter{}
	safety := safetyFunc(func(_ context.Context, command, whitelist string) (interaction.SafetyAssessment, error) {
		assert.Equal(t, "touch .env", command)
		assert.Equal(t, "None", whitelist)
		return interaction.SafetyAssessment{Safe: true, Reason: "blind write, reads nothing"}, nil
	})
	g := newTestGuard(t, security.NewContext(), safety, prompter, t.TempDir())

	verdict, err := g.Review(context.Background(), "touch .env")
	require.NoError(t, err)

	assert.Equal(t, security.ActionProceed, verdict.Action())
	assert.Contains(t, verdict.Reason(), "safety review allowed it")
	assert.Contains(t, verdict.Reason(), "blind write, reads nothing")
	assert.Zero(t, prompter.calls)
}

func TestReviewSafetyFailureFailsClosed(t *testing.T) {
	t.Parallel()

	prompter := &scriptedPrompter{choice: security.ChoiceSkip}
	safety := safetyFunc(func(context.Context, string, string) (interaction.SafetyAssessment, error) {
		return interaction.SafetyAssessment{}, errors.New("classifier unavailable")
	})
	g := newTestGuard(t, security.NewContext(), safety, prompter, t.TempDir())

	verdict, err := g.Review(context.Background(), "cat ~/.aws/credentials")
	require.NoError(t, err)

	assert.Equal(t, 1, prompter.calls, "an unanswerable safety question escalates to the operator")
	assert.Equal(t, security.ActionSkipped, verdict.Action())
}

func TestReviewChoiceOutcomes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		choice     security.Choice
		manual     string
		wantAction security.VerdictAction
		wantReason string
		wantOutput string
	}{
		{
			name:       "allow once",
			choice:     security.ChoiceAllowOnce,
			wantAction: security.ActionProceed,
			wantReason: "User allowed to proceed with the command execution.",
		},
		{
			name:       "allow and whitelist",
			choice:     security.ChoiceAllowAndWhitelist,
			wantAction: security.ActionProceed,
			wantReason: "User allowed to proceed with the command execution.",
		},
		{
			name:       "execute manually",
			choice:     security.ChoiceExecuteManually,
			manual:     "-rw------- 1 dev dev 1675 id_rsa",
			wantAction: security.ActionCompletedManually,
			wantReason: "User executed the command manually",
			wantOutput: "-rw------- 1 dev dev 1675 id_rsa\n",
		},
		{
			name:       "skip",
			choice:     security.ChoiceSkip,
			wantAction: security.ActionSkipped,
			wantReason: "Blocked by user: *.ssh/*",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			home := t.TempDir()
			state := security.NewContext()
			prompter := &scriptedPrompter{choice: tt.choice, manual: tt.manual}
			g := newTestGuard(t, state, unsafeAlways(), prompter, home)

			verdict, err := g.Review(context.Background(), "cat ~/.ssh/id_rsa")
			require.NoError(t, err)

			assert.Equal(t, tt.wantAction, verdict.Action())
			assert.Equal(t, tt.wantReason, verdict.Reason())
			assert.Equal(t, tt.wantOutput, verdict.Output())

			whitelisted := state.IsWhitelisted(filepath.Join(home, ".ssh", "id_rsa"))
			assert.Equal(t, tt.choice == security.ChoiceAllowAndWhitelist, whitelisted)
		})
	}
}

func TestReviewMalformedQuotingIsNotEvaluated(t *testing.T) {
	t.Parallel()

	prompter := &scriptedPrompter{}
	g := newTestGuard(t, security.NewContext(), forbidSafetyCalls(t), prompter, t.TempDir())

	verdict, err := g.Review(context.Background(), `echo "secret unterminated`)
	require.NoError(t, err)

	assert.Equal(t, security.ActionProceed, verdict.Action())
	assert.Equal(t, "No forbidden pattern found in the command", verdict.Reason())
}

func TestReviewFlagValueIsMatched(t *testing.T) {
	t.Parallel()

	home := t.TempDir()
	prompter := &scriptedPrompter{choice: security.ChoiceAllowOnce}
	g := newTestGuard(t, security.NewContext(), unsafeAlways(), prompter, home)

	_, err := g.Review(context.Background(), "ssh --identity-file=~/.ssh/id_ed25519 host")
	require.NoError(t, err)

	require.Len(t, prompter.alerts, 1)
	assert.Equal(t, "*.ssh/*", prompter.alerts[0].Pattern)
	assert.Equal(t, filepath.Join(home, ".ssh", "id_ed25519"), prompter.alerts[0].File)
}

func TestReviewBareKeywordHasNoWhitelistTarget(t *testing.T) {
	t.Parallel()

	state := security.NewContext()
	prompter := &scriptedPrompter{choice: security.ChoiceAllowAndWhitelist}
	g := newTestGuard(t, state, unsafeAlways(), prompter, t.TempDir())

	verdict, err := g.Review(context.Background(), "grep secret notes")
	require.NoError(t, err)

	require.Len(t, prompter.alerts, 1)
	assert.Empty(t, prompter.alerts[0].File, "a bare keyword resolves to no path")
	assert.Equal(t, security.ActionProceed, verdict.Action())
	assert.Empty(t, state.Whitelist(), "nothing to whitelist means nothing recorded")
}

func TestReviewPrefersExistingFileAsWhitelistTarget(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	existing := filepath.Join(root, "deploy.env")
	require.NoError(t, os.WriteFile(existing, []byte("KEY=value\n"), 0o600))

	prompter := &scriptedPrompter{choice: security.ChoiceAllowOnce}
	g := newTestGuard(t, security.NewContext(), unsafeAlways(), prompter, root)

	_, err := g.Review(context.Background(), "cat missing.env deploy.env")
	require.NoError(t, err)

	require.Len(t, prompter.alerts, 1)
	assert.Equal(t, existing, prompter.alerts[0].File,
		"an existing file wins over an earlier token that does not exist")
}

func TestReviewPrompterFailureSurfaces(t *testing.T) {
	t.Parallel()

	boom := errors.New("console gone")
	prompter := &scriptedPrompter{chooseErr: boom}
	g := newTestGuard(t, security.NewContext(), unsafeAlways(), prompter, t.TempDir())

	_, err := g.Review(context.Background(), "cat ~/.ssh/id_rsa")
	require.ErrorIs(t, err, boom)
}
