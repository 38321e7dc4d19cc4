package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestValidate checks defaulting and format validations for Config.
func TestValidate(t *testing.T) {
	t.Parallel()

	// Defaults are filled in for an empty config.
	cfg := new(Config)
	require.NoError(t, Validate(cfg))
	require.Equal(t, DefaultCacheFilename, cfg.CacheFile)
	require.Equal(t, DefaultTimeout, cfg.Timeout)

	// Bad platform.
	cfg = &Config{Platform: "amiga"}
	require.Error(t, Validate(cfg))

	// Bad update URL.
	cfg = &Config{UpdateURL: "not a url"}
	require.Error(t, Validate(cfg))

	// Okay with platform and update URL.
	cfg = &Config{
		Platform:  "linux",
		UpdateURL: "https://example.com/uinstall",
	}
	require.NoError(t, Validate(cfg))
}

// TestLoad_MissingFileYieldsDefaults ensures the tool works without a config file.
func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.Equal(t, DefaultCacheFilename, cfg.CacheFile)
}

// TestSaveLoadRoundtrip ensures settings are persisted and loaded back correctly.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.yaml")

	cfg := &Config{
		CacheFile: "versions.json",
		Platform:  "mac",
		UpdateURL: "https://updates.local/uinstall",
		Timeout:   10 * time.Second,
	}

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg, loaded)
}
