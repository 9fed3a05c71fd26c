package shell

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		chunk string
		want  string
	}{
		{
			name:  "plain text passes through unchanged",
			chunk: "total 48\ndrwxr-xr-x  6 dev  staff  192 module\n",
			want:  "total 48\ndrwxr-xr-x  6 dev  staff  192 module\n",
		},
		{
			name:  "color escapes removed",
			chunk: "\x1b[0;32mok\x1b[0m all tests passed",
			want:  "ok all tests passed",
		},
		{
			name:  "cursor movement removed",
			chunk: "\x1b[2K\x1b[1Gfetching",
			want:  "fetching",
		},
		{
			name:  "carriage returns removed",
			chunk: "step 1\r\nstep 2\r\n",
			want:  "step 1\nstep 2\n",
		},
		{
			name:  "no trailing newline marker removed",
			chunk: "output%    \rrest",
			want:  "outputrest",
		},
		{
			name:  "backspaces replayed against preceding text",
			chunk: "abc\bde",
			want:  "abde",
		},
		{
			name:  "percent without carriage return kept",
			chunk: "progress: 50% done",
			want:  "progress: 50% done",
		},
		{
			name:  "empty chunk",
			chunk: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Sanitize(tt.chunk))
		})
	}
}

func TestApplyBackspaces(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "single deletion", in: "abc\bde", want: "abde"},
		{name: "consecutive deletions", in: "abcd\b\b\bz", want: "az"},
		{name: "leading backspaces are no-ops", in: "\b\btest", want: "test"},
		{name: "only backspaces", in: "\b\b\b", want: ""},
		{name: "no backspaces", in: "untouched", want: "untouched"},
		{name: "multibyte runes deleted whole", in: "caf⠋\be", want: "cafe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ApplyBackspaces(tt.in))
		})
	}
}

func TestIsProgressNoise(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want bool
	}{
		{name: "progress bar fragment", text: "  45.3%########  ", want: true},
		{name: "progress fragment inside line", text: "downloading 99.9%## ", want: true},
		{name: "braille spinner frames", text: "⠋⠙⠹", want: true},
		{name: "ascii spinner frames", text: `|/-\`, want: true},
		{name: "spinner with surrounding whitespace", text: "  ⠼  ", want: true},
		{name: "percentage without bar", text: "done 45.3%", want: false},
		{name: "ordinary output", text: "Installing dependencies", want: false},
		{name: "whitespace only", text: "   \n", want: false},
		{name: "empty", text: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, IsProgressNoise(tt.text))
		})
	}
}
