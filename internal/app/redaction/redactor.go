// Package redaction masks detected secrets in text before it crosses a trust
// boundary: session transcripts, log lines, classifier prompts.
package redaction

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/ahrav/shellguard/internal/domain/secrets"
	"github.com/ahrav/shellguard/pkg/common/logger"
)

// DefaultMask is the token written in place of each detected secret.
const DefaultMask = "[REDACTED]"

// Redactor scans text with the detection engine and replaces every value
// judged to be a secret. Masking is idempotent: the mask token itself never
// matches a detector.
type Redactor struct {
	scanner secrets.Scanner
	mask    string
	logger  *logger.Logger
}

// NewRedactor creates a redactor backed by the given scanner. An empty mask
// falls back to DefaultMask.
func NewRedactor(scanner secrets.Scanner, mask string, log *logger.Logger) *Redactor {
	if mask == "" {
		mask = DefaultMask
	}
	return &Redactor{
		scanner: scanner,
		mask:    mask,
		logger:  log.With("component", "secrets_redactor"),
	}
}

// Mask replaces every occurrence of every detected secret with the
// redactor's mask token.
func (r *Redactor) Mask(ctx context.Context, text string) (string, error) {
	return r.MaskWith(ctx, text, r.mask)
}

// MaskWith is Mask with a caller-chosen replacement token. Only findings the
// plugins judged to be secrets are masked; entropy findings below threshold
// pass through untouched.
func (r *Redactor) MaskWith(ctx context.Context, text, mask string) (string, error) {
	findings, err := r.scanner.Scan(ctx, text)
	if err != nil {
		return "", fmt.Errorf("scanning text for secrets: %w", err)
	}

	values := make(map[string]struct{})
	for _, finding := range findings {
		if finding.IsSecret && finding.SecretValue != "" {
			values[finding.SecretValue] = struct{}{}
		}
	}
	if len(values) == 0 {
		return text, nil
	}

	// Longest first so a value containing another value is masked whole
	// rather than left with a recognizable remainder.
	ordered := make([]string, 0, len(values))
	for value := range values {
		ordered = append(ordered, value)
	}
	slices.SortFunc(ordered, func(a, b string) int {
		if len(a) != len(b) {
			return len(b) - len(a)
		}
		return strings.Compare(a, b)
	})

	for _, value := range ordered {
		text = strings.ReplaceAll(text, value, mask)
	}

	r.logger.Debug(ctx, "masked secrets in text", "num_secrets", len(ordered))
	return text, nil
}

// RedactingWriter masks secrets in every chunk written through it. Each write
// is masked independently, so a secret split across two writes can escape;
// callers that stream should write whole lines.
type RedactingWriter struct {
	ctx      context.Context
	dst      io.Writer
	redactor *Redactor
}

var _ io.Writer = (*RedactingWriter)(nil)

// NewRedactingWriter wraps dst so everything written to it is masked first.
// The context bounds the detection scans issued by Write.
func NewRedactingWriter(ctx context.Context, dst io.Writer, redactor *Redactor) *RedactingWriter {
	return &RedactingWriter{ctx: ctx, dst: dst, redactor: redactor}
}

// Write masks p and forwards the result to the underlying writer. On success
// the returned count is len(p), not the masked length, so buffered wrappers
// keep their accounting.
func (w *RedactingWriter) Write(p []byte) (int, error) {
	masked, err := w.redactor.Mask(w.ctx, string(p))
	if err != nil {
		return 0, err
	}
	if _, err := w.dst.Write([]byte(masked)); err != nil {
		return 0, err
	}
	return len(p), nil
}
