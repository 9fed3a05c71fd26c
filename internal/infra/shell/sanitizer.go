// Package shell drives persistent login-shell sessions over pseudo
// terminals: it spawns the process, streams and sanitizes its output,
// detects when a command has stalled waiting for input, and multiplexes
// sessions through a registry.
package shell

import (
	"strings"

	regexp "github.com/wasilibs/go-re2"
)

var (
	// ansiEscapePattern matches ANSI CSI escape sequences: ESC [ followed by
	// parameter bytes, intermediate bytes, and one final byte.
	ansiEscapePattern = regexp.MustCompile(`\x1b\[[0-?]*[ -/]*[@-~]`)

	// promptArtifactPattern matches the marker a shell prints when command
	// output lacks a trailing newline: a % continuation mark padded with
	// spaces to the edge of the terminal, then a carriage return.
	promptArtifactPattern = regexp.MustCompile(`% +\r`)

	// progressPattern matches progress bar fragments like "23.4%###".
	progressPattern = regexp.MustCompile(`\d{1,3}\.\d%#+\s*`)
)

// spinnerGlyphs are the braille spinner frames and ASCII spinner characters
// emitted by common CLI progress indicators.
const spinnerGlyphs = `⠏⠋⠙⠹⠸⠼⠴⠦⠧⠇|/-\`

// cleaningPipeline is the ordered sequence of transforms Sanitize applies.
// Order matters: prompt artifacts are anchored on a carriage return, so they
// must be stripped before carriage returns are removed, and backspaces are
// replayed last so they delete what the reader would actually have seen.
var cleaningPipeline = []func(string) string{
	StripANSI,
	StripPromptArtifacts,
	StripCarriageReturns,
	ApplyBackspaces,
}

// Sanitize converts a raw chunk read from a pseudo terminal into plain
// readable text. Text containing no escape sequences, carriage returns, or
// backspaces passes through unchanged.
func Sanitize(chunk string) string {
	for _, step := range cleaningPipeline {
		chunk = step(chunk)
	}
	return chunk
}

// StripANSI removes ANSI CSI escape sequences, leaving the plain text they
// decorated.
func StripANSI(s string) string {
	return ansiEscapePattern.ReplaceAllString(s, "")
}

// StripPromptArtifacts removes the no-trailing-newline marker some shells
// print before redrawing the prompt.
func StripPromptArtifacts(s string) string {
	return promptArtifactPattern.ReplaceAllString(s, "")
}

// StripCarriageReturns removes every carriage return character.
func StripCarriageReturns(s string) string {
	return strings.ReplaceAll(s, "\r", "")
}

// ApplyBackspaces replays backspace characters against an accumulator: each
// backspace deletes the most recently kept character. A backspace with
// nothing left to delete is a no-op, never an error.
func ApplyBackspaces(s string) string {
	if !strings.ContainsRune(s, '\b') {
		return s
	}

	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '\b' {
			if len(out) > 0 {
				out = out[:len(out)-1]
			}
			continue
		}
		out = append(out, r)
	}
	return string(out)
}

// IsProgressNoise reports whether text is nothing but transient progress
// decoration: a progress bar fragment, or spinner glyphs only. It is used to
// decide whether a chunk is worth mirroring to the transcript sink; it never
// removes anything from session buffers.
func IsProgressNoise(text string) bool {
	if progressPattern.MatchString(text) {
		return true
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false
	}
	for _, r := range trimmed {
		if !strings.ContainsRune(spinnerGlyphs, r) {
			return false
		}
	}
	return true
}
