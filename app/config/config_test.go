package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultWeights(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 50.0, cfg.Weights.ExactBase)
	assert.Equal(t, 40.0, cfg.Weights.RegionAgree)
	assert.Equal(t, 85.0, cfg.Thresholds.Accept)
	assert.Equal(t, 95.0, cfg.Thresholds.Exact)
	assert.Equal(t, 20, cfg.CandidateLimit)
	assert.Equal(t, 0.90, cfg.FirstWordJaro)
}

func TestLoadMissingFileKeepsDefaults(t *testing.T) {
	err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
	assert.Equal(t, Default(), C)
}

func TestLoadOverridesFromYAML(t *testing.T) {
	t.Cleanup(func() { C = Default() })

	path := filepath.Join(t.TempDir(), "matcher.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"fuzzy_limit: 5\nthresholds:\n  accept: 90\n  exact: 97\n"), 0o644))

	require.NoError(t, Load(path))
	assert.Equal(t, 5, C.FuzzyLimit)
	assert.Equal(t, 90.0, C.Thresholds.Accept)
	assert.Equal(t, 97.0, C.Thresholds.Exact)
	// Untouched sections keep their defaults.
	assert.Equal(t, 50.0, C.Weights.ExactBase)
}

func TestLoadEnvThresholdOverride(t *testing.T) {
	t.Cleanup(func() { C = Default() })
	t.Setenv("MATCH_THRESHOLD", "88.5")

	path := filepath.Join(t.TempDir(), "matcher.yaml")
	require.NoError(t, os.WriteFile(path, []byte("fuzzy_limit: 10\n"), 0o644))

	require.NoError(t, Load(path))
	assert.Equal(t, 88.5, C.Thresholds.Accept)
}
