package classify

import (
	"context"

	"github.com/ahrav/shellguard/internal/domain/interaction"
	"github.com/ahrav/shellguard/pkg/common"
)

// ThrottledClassifier rate limits classification calls. Sessions consult the
// classifier once per idle stretch, but many sessions sharing one metered
// backend can still add up; the limiter keeps the aggregate call rate
// bounded.
type ThrottledClassifier struct {
	inner   interaction.Classifier
	limiter *common.RateLimiter
}

// NewThrottledClassifier wraps inner with a limiter allowing rps calls per
// second with the given burst.
func NewThrottledClassifier(inner interaction.Classifier, rps float64, burst int) *ThrottledClassifier {
	return &ThrottledClassifier{
		inner:   inner,
		limiter: common.NewRateLimiter(rps, burst),
	}
}

var _ interaction.Classifier = (*ThrottledClassifier)(nil)

// Classify blocks until the limiter admits the call, then delegates.
func (c *ThrottledClassifier) Classify(ctx context.Context, output string) (interaction.Review, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return interaction.Review{}, err
	}
	return c.inner.Classify(ctx, output)
}
