package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds settings for a manifest update run.
type Config struct {
	// ManifestPath is the path to the flake manifest that is rewritten.
	ManifestPath string `yaml:"manifest_path"`
	// Strategy selects how the latest artifact URL is discovered
	// ("scrape" or "api").
	Strategy string `yaml:"strategy"`
	// DownloadsPage is the vendor page inspected by both strategies.
	DownloadsPage string `yaml:"downloads_page"`
	// Timeout is the duration applied to network calls and external commands.
	Timeout time.Duration `yaml:"timeout"`
}

const (
	// DefaultConfigFilename is the default filename for updater settings.
	DefaultConfigFilename = "cursor-updater.yaml"

	// DefaultManifestFilename is the manifest rewritten by the updater.
	DefaultManifestFilename = "flake.nix"

	// DefaultDownloadsPage is the vendor page listing published builds.
	DefaultDownloadsPage = "https://cursor.com/downloads"

	// DefaultTimeout is the default duration for network operations and commands.
	DefaultTimeout = 2 * time.Minute

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600

	// StrategyScrape discovers the artifact URL by scanning download page links.
	StrategyScrape = "scrape"

	// StrategyAPI discovers the artifact URL by probing the vendor API redirect.
	StrategyAPI = "api"
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errUnknownStrategy is returned when the strategy is not one of the known values.
	errUnknownStrategy = errors.New("strategy must be \"scrape\" or \"api\"")
)

// Default returns a configuration populated with the standard values.
func Default() *Config {
	return &Config{
		ManifestPath:  DefaultManifestFilename,
		Strategy:      StrategyScrape,
		DownloadsPage: DefaultDownloadsPage,
		Timeout:       DefaultTimeout,
	}
}

// Load reads configuration from the provided path and validates essential fields.
// When no path is given and the default file does not exist, defaults are returned
// so the tool works without any configuration file.
func Load(path string) (*Config, error) {
	usedDefault := path == ""
	if usedDefault {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if usedDefault && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}

		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes settings to the provided path.
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

// Validate checks the provided settings and fills in defaults for empty fields.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.ManifestPath == "" {
		cfg.ManifestPath = DefaultManifestFilename
	}

	if cfg.Strategy == "" {
		cfg.Strategy = StrategyScrape
	}

	if cfg.Strategy != StrategyScrape && cfg.Strategy != StrategyAPI {
		return fmt.Errorf("%w, got %q", errUnknownStrategy, cfg.Strategy)
	}

	if cfg.DownloadsPage == "" {
		cfg.DownloadsPage = DefaultDownloadsPage
	}

	if _, err := url.ParseRequestURI(cfg.DownloadsPage); err != nil {
		return fmt.Errorf("invalid downloads page URI: %w", err)
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return nil
}
