// Package config loads and validates the metricweave tool configuration.
package config

import (
	"fmt"
	"os"
	"path"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	werrors "git.home.luguber.info/inful/metricweave/internal/errors"
)

// DefaultPath is the configuration file looked up when no -c flag is given.
const DefaultPath = "metricweave.yaml"

// Config represents the tool configuration
type Config struct {
	Packages []string     `yaml:"packages,omitempty"` // Package patterns to scan, defaults to ["./..."]
	Exclude  []string     `yaml:"exclude,omitempty"`  // Glob patterns matched against file base names
	Output   OutputConfig `yaml:"output"`
	Cache    CacheConfig  `yaml:"cache"`
}

// OutputConfig controls where woven sources are written
type OutputConfig struct {
	Directory string `yaml:"directory,omitempty"` // Mirror mode output directory
	Write     bool   `yaml:"write,omitempty"`     // Rewrite sources in place instead of mirroring
}

// CacheConfig controls the incremental weave cache
type CacheConfig struct {
	Path     string `yaml:"path,omitempty"`
	Disabled bool   `yaml:"disabled,omitempty"`
}

// Load loads configuration from the specified file.
// A missing file is an error only when the path was explicitly requested;
// use LoadOrDefault for the CLI's optional-config behavior.
func Load(configPath string) (*Config, error) {
	// Load .env files if present; existing environment wins.
	loadEnvFiles()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, werrors.ConfigNotFound(configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, werrors.FileSystemError("read config", err)
	}

	// Expand environment variables in the YAML content
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, werrors.Wrap(err, werrors.CategoryConfig, werrors.SeverityFatal, "failed to unmarshal config")
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads the config file when it exists and otherwise returns
// the defaults. Explicitly requested paths that do not exist still fail.
func LoadOrDefault(configPath string) (*Config, error) {
	if configPath == DefaultPath {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			loadEnvFiles()
			cfg := &Config{}
			cfg.applyDefaults()
			return cfg, nil
		}
	}
	return Load(configPath)
}

func (c *Config) applyDefaults() {
	if len(c.Packages) == 0 {
		c.Packages = []string{"./..."}
	}
	if c.Output.Directory == "" && !c.Output.Write {
		c.Output.Directory = "./woven"
	}
	if c.Cache.Path == "" {
		c.Cache.Path = ".metricweave/cache.db"
	}
}

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	if c.Output.Write && c.Output.Directory != "" {
		return werrors.ValidationFailed("output", "write and directory are mutually exclusive")
	}
	for _, pattern := range c.Exclude {
		if _, err := path.Match(pattern, "probe.go"); err != nil {
			return werrors.ValidationFailed("exclude", fmt.Sprintf("invalid pattern %q", pattern))
		}
	}
	for _, pkg := range c.Packages {
		if pkg == "" {
			return werrors.ValidationFailed("packages", "empty package pattern")
		}
	}
	return nil
}

// loadEnvFiles loads .env/.env.local without overriding the process
// environment, stopping at the first file that parses.
func loadEnvFiles() {
	for _, envPath := range []string{".env", ".env.local"} {
		if _, err := os.Stat(envPath); err != nil {
			continue
		}
		if err := godotenv.Load(envPath); err == nil {
			return
		}
	}
}
