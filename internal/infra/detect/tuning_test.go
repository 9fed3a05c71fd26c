package detect

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTuning(t *testing.T) {
	t.Parallel()

	tuning, err := DefaultTuning()
	require.NoError(t, err)

	assert.Equal(t, 4.5, tuning.Entropy.Base64Limit)
	assert.Equal(t, 3.0, tuning.Entropy.HexLimit)
	assert.False(t, tuning.Gibberish.Enabled)
	assert.Equal(t, 3.7, tuning.Gibberish.Limit)
	assert.Empty(t, tuning.Plugins.Disabled)
}

func TestParseTuningOverrides(t *testing.T) {
	t.Parallel()

	tuning, err := ParseTuning(`
[entropy]
base64_limit = 5.0

[plugins]
disabled = ["Public IP (ipv4)"]
`)
	require.NoError(t, err)

	assert.Equal(t, 5.0, tuning.Entropy.Base64Limit)
	assert.Equal(t, []string{"Public IP (ipv4)"}, tuning.Plugins.Disabled)

	// Knobs absent from the document keep their defaults.
	assert.Equal(t, 3.0, tuning.Entropy.HexLimit)
	assert.Equal(t, 3.7, tuning.Gibberish.Limit)
}

func TestLoadTuning(t *testing.T) {
	t.Parallel()

	t.Run("empty path returns defaults", func(t *testing.T) {
		t.Parallel()
		tuning, err := LoadTuning("")
		require.NoError(t, err)
		assert.Equal(t, 4.5, tuning.Entropy.Base64Limit)
	})

	t.Run("file overrides are applied", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "tuning.toml")
		require.NoError(t, os.WriteFile(path, []byte("[entropy]\nhex_limit = 2.5\n"), 0o600))

		tuning, err := LoadTuning(path)
		require.NoError(t, err)
		assert.Equal(t, 2.5, tuning.Entropy.HexLimit)
		assert.Equal(t, 4.5, tuning.Entropy.Base64Limit)
	})

	t.Run("missing file surfaces", func(t *testing.T) {
		t.Parallel()
		_, err := LoadTuning(filepath.Join(t.TempDir(), "absent.toml"))
		require.Error(t, err)
	})
}

func TestParseTuningRejectsMalformed(t *testing.T) {
	t.Parallel()

	_, err := ParseTuning("[entropy\nbase64_limit = ")
	require.Error(t, err)
	assert.ErrorContains(t, err, "failed to read detector tuning")
}
