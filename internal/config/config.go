// Package config provides configuration loading and management for crate-sync.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// EnvPrefix is the prefix for environment variables read through viper
	EnvPrefix = "CRATE_SYNC"

	// DefaultGitHubListSource is the curated list of GitHub repositories containing crates
	DefaultGitHubListSource = "https://raw.githubusercontent.com/rust-ops/rust-repos/master/data/github.csv"

	// DefaultRegistryIndex is the git repository holding the crates.io index
	DefaultRegistryIndex = "https://github.com/rust-lang/crates.io-index"

	// DefaultWorkDir is where mirrors, the local crates directory and the database live
	DefaultWorkDir = "./work"

	// DefaultHTTPRetries is how many times a failed fetch is retried when http.retries is unset
	DefaultHTTPRetries = 3
)

const (
	// StorageTypeBolt stores crates in a bbolt database
	StorageTypeBolt = "bolt"

	// StorageTypeSQLite stores crates in a SQLite database
	StorageTypeSQLite = "sqlite"
)

// Option defines the interface for configuration options
type Option func(*loaderConfig) error

// loaderConfig defines the configuration for loading a configuration
type loaderConfig struct {
	path string
}

// WithConfigPath loads configuration from a YAML file
func WithConfigPath(path string) Option {
	return func(cfg *loaderConfig) error {
		if path == "" {
			return fmt.Errorf("path is required")
		}

		// Resolve symlinks to prevent symlink attacks.
		// Note that this calls filepath.Clean internally.
		realPath, err := filepath.EvalSymlinks(path)
		if err != nil {
			return fmt.Errorf("failed to evaluate symlinks: %w", err)
		}

		if !filepath.IsAbs(realPath) && !filepath.IsLocal(realPath) {
			return fmt.Errorf("path is not local or contains invalid traversal: %s", path)
		}

		cfg.path = realPath
		return nil
	}
}

// Config represents the root configuration structure
type Config struct {
	// WorkDir is the base directory for derived default paths
	WorkDir string        `yaml:"workDir,omitempty"`
	Lists   ListsConfig   `yaml:"lists"`
	Mirrors MirrorsConfig `yaml:"mirrors"`
	Storage StorageConfig `yaml:"storage"`
	HTTP    HTTPConfig    `yaml:"http"`
	Git     GitConfig     `yaml:"git"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// ListsConfig holds the per-list settings
type ListsConfig struct {
	GitHub   GitHubListConfig   `yaml:"github"`
	Registry RegistryListConfig `yaml:"registry"`
	Local    LocalListConfig    `yaml:"local"`
}

// GitHubListConfig configures the curated GitHub repositories list
type GitHubListConfig struct {
	Enabled *bool `yaml:"enabled,omitempty"`

	// Source is the URL of the CSV document
	Source string `yaml:"source,omitempty"`

	Filter *FilterConfig `yaml:"filter,omitempty"`
}

// RegistryListConfig configures the registry index list
type RegistryListConfig struct {
	Enabled *bool `yaml:"enabled,omitempty"`

	// Index is the git URL of the registry index
	Index string `yaml:"index,omitempty"`

	// Path is where the index checkout is kept
	Path string `yaml:"path,omitempty"`

	Filter *FilterConfig `yaml:"filter,omitempty"`
}

// LocalListConfig configures the local crates list
type LocalListConfig struct {
	Enabled *bool `yaml:"enabled,omitempty"`

	// Path is the directory whose subdirectories are local crates
	Path string `yaml:"path,omitempty"`

	Filter *FilterConfig `yaml:"filter,omitempty"`
}

// FilterConfig defines filtering rules for the crates of a list
type FilterConfig struct {
	Names *NameFilterConfig `yaml:"names,omitempty"`
}

// NameFilterConfig defines name-based filtering with glob patterns
type NameFilterConfig struct {
	Include []string `yaml:"include,omitempty"`
	Exclude []string `yaml:"exclude,omitempty"`
}

// MirrorsConfig configures GitHub repository mirrors
type MirrorsConfig struct {
	// Dir is the directory holding every mirror
	Dir string `yaml:"dir,omitempty"`

	// Parallel is the maximum number of mirrors prepared at once
	Parallel int `yaml:"parallel,omitempty"`
}

// StorageConfig configures where crate records are persisted
type StorageConfig struct {
	// Type is either bolt or sqlite
	Type string `yaml:"type,omitempty"`

	// Path is the database file
	Path string `yaml:"path,omitempty"`

	// StatusDir is where per-list sync status files are written
	StatusDir string `yaml:"statusDir,omitempty"`
}

// HTTPConfig configures remote fetches
type HTTPConfig struct {
	Timeout string `yaml:"timeout,omitempty"`

	// Retries is how many times a failed fetch is retried. Zero disables retries.
	Retries *int `yaml:"retries,omitempty"`
}

// GitConfig configures clone and pull operations
type GitConfig struct {
	Timeout string `yaml:"timeout,omitempty"`

	// Depth is the history depth of checkouts. Zero keeps a single commit and
	// a negative value fetches the full history.
	Depth int `yaml:"depth,omitempty"`
}

// MetricsConfig configures metrics output
type MetricsConfig struct {
	// Textfile is a path the metrics are written to after each command, in the
	// Prometheus text format. Empty disables it.
	Textfile string `yaml:"textfile,omitempty"`
}

// Default returns a configuration with every default applied
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// LoadConfig loads and parses configuration from a YAML file, then fills in defaults
func LoadConfig(opts ...Option) (*Config, error) {
	loaderCfg := &loaderConfig{}
	for _, opt := range opts {
		if err := opt(loaderCfg); err != nil {
			return nil, err
		}
	}

	if loaderCfg.path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(loaderCfg.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.WorkDir == "" {
		c.WorkDir = DefaultWorkDir
	}
	if c.Lists.GitHub.Source == "" {
		c.Lists.GitHub.Source = DefaultGitHubListSource
	}
	if c.Lists.Registry.Index == "" {
		c.Lists.Registry.Index = DefaultRegistryIndex
	}
	if c.Lists.Registry.Path == "" {
		c.Lists.Registry.Path = filepath.Join(c.WorkDir, "crates.io-index")
	}
	if c.Lists.Local.Path == "" {
		c.Lists.Local.Path = filepath.Join(c.WorkDir, "local-crates")
	}
	if c.Mirrors.Dir == "" {
		c.Mirrors.Dir = filepath.Join(c.WorkDir, "gh-mirrors")
	}
	if c.Mirrors.Parallel == 0 {
		c.Mirrors.Parallel = 4
	}
	if c.Storage.Type == "" {
		c.Storage.Type = StorageTypeBolt
	}
	if c.Storage.Path == "" {
		c.Storage.Path = filepath.Join(c.WorkDir, "crates.db")
	}
	if c.Storage.StatusDir == "" {
		c.Storage.StatusDir = filepath.Join(c.WorkDir, "status")
	}
	if c.HTTP.Timeout == "" {
		c.HTTP.Timeout = "30s"
	}
	if c.HTTP.Retries == nil {
		retries := DefaultHTTPRetries
		c.HTTP.Retries = &retries
	}
	if c.Git.Timeout == "" {
		c.Git.Timeout = "10m"
	}
}

// Validate performs validation on the configuration
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if c.Lists.GitHub.Source == "" {
		return fmt.Errorf("lists.github.source is required")
	}
	if c.Lists.Registry.Index == "" {
		return fmt.Errorf("lists.registry.index is required")
	}
	if c.Lists.Local.Path == "" {
		return fmt.Errorf("lists.local.path is required")
	}

	if c.Mirrors.Parallel < 0 {
		return fmt.Errorf("mirrors.parallel must not be negative, got %d", c.Mirrors.Parallel)
	}

	switch c.Storage.Type {
	case StorageTypeBolt, StorageTypeSQLite:
	default:
		return fmt.Errorf("storage.type must be one of %s or %s, got %s",
			StorageTypeBolt, StorageTypeSQLite, c.Storage.Type)
	}

	if _, err := time.ParseDuration(c.HTTP.Timeout); err != nil {
		return fmt.Errorf("http.timeout must be a valid duration (e.g., '30s'): %w", err)
	}
	if c.HTTP.Retries != nil && *c.HTTP.Retries < 0 {
		return fmt.Errorf("http.retries must not be negative, got %d", *c.HTTP.Retries)
	}
	if _, err := time.ParseDuration(c.Git.Timeout); err != nil {
		return fmt.Errorf("git.timeout must be a valid duration (e.g., '10m'): %w", err)
	}

	return nil
}

// GitDepth returns the depth to pass to the git client, where zero means full history
func (c *Config) GitDepth() int {
	switch {
	case c.Git.Depth < 0:
		return 0
	case c.Git.Depth == 0:
		return 1
	default:
		return c.Git.Depth
	}
}

// HTTPTimeout returns the parsed HTTP timeout
func (c *Config) HTTPTimeout() time.Duration {
	d, _ := time.ParseDuration(c.HTTP.Timeout)
	return d
}

// HTTPRetries returns how many times a failed fetch is retried
func (c *Config) HTTPRetries() int {
	if c.HTTP.Retries == nil {
		return DefaultHTTPRetries
	}
	return *c.HTTP.Retries
}

// GitTimeout returns the parsed git operation timeout
func (c *Config) GitTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Git.Timeout)
	return d
}

// GitHubEnabled reports whether the GitHub list is enabled. Lists default to enabled.
func (c *Config) GitHubEnabled() bool {
	return enabled(c.Lists.GitHub.Enabled)
}

// RegistryEnabled reports whether the registry list is enabled
func (c *Config) RegistryEnabled() bool {
	return enabled(c.Lists.Registry.Enabled)
}

// LocalEnabled reports whether the local list is enabled
func (c *Config) LocalEnabled() bool {
	return enabled(c.Lists.Local.Enabled)
}

func enabled(b *bool) bool {
	return b == nil || *b
}
