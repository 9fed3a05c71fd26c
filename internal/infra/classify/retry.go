package classify

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff"

	"github.com/ahrav/shellguard/internal/domain/interaction"
	"github.com/ahrav/shellguard/pkg/common/logger"
)

const (
	defaultRetryInitialInterval = 500 * time.Millisecond
	defaultRetryMaxElapsed      = 15 * time.Second
)

// RetryClassifier wraps an interaction classifier with exponential backoff
// so a transient outage of a remote classifier does not surface as a stall
// classification failure. The read loop treats classifier errors as
// non-fatal either way; retrying here just avoids burning an idle stretch's
// single classification on a blip.
type RetryClassifier struct {
	inner  interaction.Classifier
	logger *logger.Logger

	initialInterval time.Duration
	maxElapsed      time.Duration
}

// NewRetryClassifier wraps inner with the default retry budget.
func NewRetryClassifier(inner interaction.Classifier, log *logger.Logger) *RetryClassifier {
	return &RetryClassifier{
		inner:           inner,
		logger:          log.With("component", "retry_classifier"),
		initialInterval: defaultRetryInitialInterval,
		maxElapsed:      defaultRetryMaxElapsed,
	}
}

var _ interaction.Classifier = (*RetryClassifier)(nil)

// Classify retries the wrapped classifier until it answers, the backoff
// budget runs out, or ctx is cancelled.
func (c *RetryClassifier) Classify(ctx context.Context, output string) (interaction.Review, error) {
	var review interaction.Review

	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = c.initialInterval
	expBackoff.MaxElapsedTime = c.maxElapsed

	operation := func() error {
		var err error
		review, err = c.inner.Classify(ctx, output)
		if err != nil {
			c.logger.Warn(ctx, "interaction classification attempt failed; retrying", "error", err)
		}
		return err
	}

	if err := backoff.Retry(operation, backoff.WithContext(expBackoff, ctx)); err != nil {
		return interaction.Review{}, fmt.Errorf("classifying interaction after retries: %w", err)
	}
	return review, nil
}

// RetrySafetyClassifier applies the same backoff policy to the command
// safety classifier. The guard fails closed on error, so exhausted retries
// mean an operator prompt rather than a silent PROCEED.
type RetrySafetyClassifier struct {
	inner  interaction.SafetyClassifier
	logger *logger.Logger

	initialInterval time.Duration
	maxElapsed      time.Duration
}

// NewRetrySafetyClassifier wraps inner with the default retry budget.
func NewRetrySafetyClassifier(inner interaction.SafetyClassifier, log *logger.Logger) *RetrySafetyClassifier {
	return &RetrySafetyClassifier{
		inner:           inner,
		logger:          log.With("component", "retry_safety_classifier"),
		initialInterval: defaultRetryInitialInterval,
		maxElapsed:      defaultRetryMaxElapsed,
	}
}

var _ interaction.SafetyClassifier = (*RetrySafetyClassifier)(nil)

// Assess retries the wrapped classifier until it answers, the backoff
// budget runs out, or ctx is cancelled.
func (c *RetrySafetyClassifier) Assess(ctx context.Context, command, whitelist string) (interaction.SafetyAssessment, error) {
	var assessment interaction.SafetyAssessment

	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = c.initialInterval
	expBackoff.MaxElapsedTime = c.maxElapsed

	operation := func() error {
		var err error
		assessment, err = c.inner.Assess(ctx, command, whitelist)
		if err != nil {
			c.logger.Warn(ctx, "safety assessment attempt failed; retrying", "error", err)
		}
		return err
	}

	if err := backoff.Retry(operation, backoff.WithContext(expBackoff, ctx)); err != nil {
		return interaction.SafetyAssessment{}, fmt.Errorf("assessing command safety after retries: %w", err)
	}
	return assessment, nil
}
