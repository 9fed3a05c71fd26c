package plugins

import regexp "github.com/wasilibs/go-re2"

// NewTelegramBotTokenDetector creates the detector for Telegram bot tokens.
// The pattern is anchored: a token is only reported when it is the whole
// text, as when a token value is inspected on its own.
func NewTelegramBotTokenDetector() *RegexDetector {
	return NewRegexDetector(
		"Telegram Bot Token",
		regexp.MustCompile(`^\d{8,10}:[0-9A-Za-z_-]{35}$`),
	)
}
