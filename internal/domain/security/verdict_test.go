package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerdictConstructors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		verdict    Verdict
		wantAction VerdictAction
		wantReason string
		wantOutput string
	}{
		{
			name:       "proceed",
			verdict:    Proceed("no forbidden pattern found in the command"),
			wantAction: ActionProceed,
			wantReason: "no forbidden pattern found in the command",
		},
		{
			name:       "completed_manually_carries_output",
			verdict:    CompletedManually("user executed the command manually", "total 0\n"),
			wantAction: ActionCompletedManually,
			wantReason: "user executed the command manually",
			wantOutput: "total 0\n",
		},
		{
			name:       "skipped",
			verdict:    Skipped("blocked by user: *.env"),
			wantAction: ActionSkipped,
			wantReason: "blocked by user: *.env",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.wantAction, tt.verdict.Action())
			assert.Equal(t, tt.wantReason, tt.verdict.Reason())
			assert.Equal(t, tt.wantOutput, tt.verdict.Output())
		})
	}
}

func TestChoiceDisplay(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		choice Choice
		file   string
		want   string
	}{
		{
			name:   "allow_once",
			choice: ChoiceAllowOnce,
			want:   "Allow once",
		},
		{
			name:   "allow_and_whitelist_names_file",
			choice: ChoiceAllowAndWhitelist,
			file:   "/home/user/.ssh/id_rsa",
			want:   "Allow and add the file to session's whitelist (/home/user/.ssh/id_rsa)",
		},
		{
			name:   "execute_manually",
			choice: ChoiceExecuteManually,
			want:   "Execute manually in separate terminal",
		},
		{
			name:   "skip",
			choice: ChoiceSkip,
			want:   "Skip command",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, tt.choice.Display(tt.file))
		})
	}
}

func TestMenuChoicesOrder(t *testing.T) {
	t.Parallel()

	want := []Choice{ChoiceAllowOnce, ChoiceAllowAndWhitelist, ChoiceExecuteManually, ChoiceSkip}
	assert.Equal(t, want, MenuChoices())
}
