package plugins

import regexp "github.com/wasilibs/go-re2"

// NewDiscordBotTokenDetector creates the detector for Discord bot tokens.
func NewDiscordBotTokenDetector() *RegexDetector {
	return NewRegexDetector(
		"Discord Bot Token",
		regexp.MustCompile(`[MNO][a-zA-Z\d_-]{23,25}\.[a-zA-Z\d_-]{6}\.[a-zA-Z\d_-]{27}`),
	)
}
