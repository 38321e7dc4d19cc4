package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/uinstall/uinstall/internal/unity"
)

// Config holds settings shared by the uinstall commands.
type Config struct {
	// CacheFile is the path of the JSON file holding known Unity versions.
	CacheFile string `yaml:"cache_file"`
	// Platform selects which platform's packages to work with.
	// Empty means the platform of the running OS.
	Platform string `yaml:"platform"`
	// UpdateURL is where uinstall release manifests are hosted.
	// Empty disables self-update.
	UpdateURL string `yaml:"update_url"`
	// Timeout is the duration for network operations.
	Timeout time.Duration `yaml:"timeout"`
}

const (
	// DefaultConfigFilename is the default filename for settings.
	DefaultConfigFilename = "uinstall-settings.yaml"

	// DefaultCacheFilename is the default filename for the versions cache.
	DefaultCacheFilename = "uinstall-versions.json"

	// DefaultTimeout is the default duration for network operations.
	DefaultTimeout = 30 * time.Second

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

// errConfigIsNotSet is returned when a nil configuration is provided.
var errConfigIsNotSet = errors.New("configuration is not set")

// Load reads configuration from the provided path and validates it.
// A missing file yields the defaults, so the tool works without any
// configuration present.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	var cfg Config

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read settings: %w", err)
		}
	} else if err = yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err = Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings and fills in defaults for
// unset optional fields.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.CacheFile == "" {
		cfg.CacheFile = DefaultCacheFilename
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	if cfg.Platform != "" {
		if _, err := unity.ParsePlatform(cfg.Platform); err != nil {
			return fmt.Errorf("invalid platform: %w", err)
		}
	}

	if cfg.UpdateURL != "" {
		if _, err := url.ParseRequestURI(cfg.UpdateURL); err != nil {
			return fmt.Errorf("invalid update URL: %w", err)
		}
	}

	return nil
}

// ResolvedPlatform returns the configured platform, or the platform of the
// running OS when none is configured.
func (cfg *Config) ResolvedPlatform() (unity.Platform, error) {
	if cfg.Platform == "" {
		return unity.CurrentPlatform(), nil
	}

	return unity.ParsePlatform(cfg.Platform)
}
