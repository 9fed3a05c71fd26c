package detect

import (
	"fmt"

	"github.com/ahrav/shellguard/internal/domain/secrets"
	"github.com/ahrav/shellguard/internal/infra/detect/filters"
	"github.com/ahrav/shellguard/internal/infra/detect/gibberish"
	"github.com/ahrav/shellguard/internal/infra/detect/plugins"
)

// DefaultPlugins constructs the full detector set in a stable order. Findings
// are reported in this order, so reordering the set changes engine output.
// Detectors named in tuning.Plugins.Disabled are left out.
func DefaultPlugins(tuning Tuning) ([]secrets.Plugin, error) {
	base64Entropy, err := plugins.NewBase64HighEntropy(tuning.Entropy.Base64Limit)
	if err != nil {
		return nil, fmt.Errorf("base64 entropy plugin: %w", err)
	}
	hexEntropy, err := plugins.NewHexHighEntropy(tuning.Entropy.HexLimit)
	if err != nil {
		return nil, fmt.Errorf("hex entropy plugin: %w", err)
	}

	all := []secrets.Plugin{
		plugins.NewArtifactoryDetector(),
		plugins.NewAWSKeyDetector(),
		plugins.NewAzureStorageKeyDetector(),
		base64Entropy,
		plugins.NewBasicAuthDetector(),
		plugins.NewCloudantDetector(),
		plugins.NewDiscordBotTokenDetector(),
		plugins.NewGitHubTokenDetector(),
		plugins.NewGitLabTokenDetector(),
		hexEntropy,
		plugins.NewIBMCloudIAMDetector(),
		plugins.NewIBMCosHmacDetector(),
		plugins.NewPublicIPDetector(),
		plugins.NewJWTDetector(),
		plugins.NewKeywordDetector(),
		plugins.NewMailchimpDetector(),
		plugins.NewNpmDetector(),
		plugins.NewOpenAIDetector(),
		plugins.NewPrivateKeyDetector(),
		plugins.NewPypiTokenDetector(),
		plugins.NewSendGridDetector(),
		plugins.NewSlackDetector(),
		plugins.NewSoftlayerDetector(),
		plugins.NewSquareOAuthDetector(),
		plugins.NewStripeDetector(),
		plugins.NewTelegramBotTokenDetector(),
		plugins.NewTwilioKeyDetector(),
	}
	if len(tuning.Plugins.Disabled) == 0 {
		return all, nil
	}

	disabled := make(map[string]struct{}, len(tuning.Plugins.Disabled))
	for _, name := range tuning.Plugins.Disabled {
		disabled[name] = struct{}{}
	}

	enabled := make([]secrets.Plugin, 0, len(all))
	for _, plugin := range all {
		if _, ok := disabled[plugin.SecretType()]; ok {
			continue
		}
		enabled = append(enabled, plugin)
	}
	return enabled, nil
}

// DefaultFilters constructs the exclusion chain every candidate must survive.
// The gibberish filter joins the chain only when a trained model is
// configured; the rest of the chain needs no state.
func DefaultFilters(tuning Tuning) ([]secrets.Filter, error) {
	chain := []secrets.Filter{
		filters.NewSequentialFilter(),
		filters.NewUUIDFilter(),
		filters.NewTemplatedFilter(),
		filters.NewNotAlphanumericFilter(),
	}
	if !tuning.Gibberish.Enabled {
		return chain, nil
	}

	detector, err := gibberish.Load(tuning.Gibberish.ModelPath, tuning.Gibberish.Limit)
	if err != nil {
		return nil, fmt.Errorf("gibberish filter: %w", err)
	}
	return append(chain, filters.NewGibberishFilter(detector)), nil
}
