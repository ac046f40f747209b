// Manages process configuration, optionally loaded from a YAML file.

package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultDomainCap mirrors the real service's per-account domain limit.
const DefaultDomainCap = 100

// Config holds all process configuration. It is built once at startup from
// flags, environment variables and an optional YAML file, then passed down
// explicitly; nothing reads it from globals.
type Config struct {
	// HTTP is the listen address, e.g. "localhost:8080".
	HTTP string `yaml:"http"`

	// DataDir holds one SQLite file per domain, named exactly as the
	// domain.
	DataDir string `yaml:"data_dir"`

	// DomainCap caps the number of live domains. 0 means DefaultDomainCap.
	DomainCap int `yaml:"domain_cap"`

	// RatePerMin throttles requests per client IP. 0 disables throttling.
	RatePerMin int `yaml:"rate_per_min"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		HTTP:      "localhost:8080",
		DataDir:   "./fakesdbdata",
		DomainCap: DefaultDomainCap,
		LogLevel:  "info",
	}
}

// LoadConfig reads a YAML config file on top of the defaults. A missing
// file is not an error; the defaults are returned unchanged.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyOverrides layers environment variables and explicit flag values on
// top of the file configuration: the environment overrides the file, and
// non-empty flag values override everything. FAKESDB_PORT carries only a
// port and binds all interfaces, matching the original tool's contract.
func (c *Config) ApplyOverrides(env func(string) string, httpAddr, dataDir, logLevel string) {
	if port := env("FAKESDB_PORT"); port != "" {
		c.HTTP = "0.0.0.0:" + port
	}
	if dir := env("FAKESDB_DATA_DIR"); dir != "" {
		c.DataDir = dir
	}
	if httpAddr != "" {
		c.HTTP = httpAddr
	}
	if dataDir != "" {
		c.DataDir = dataDir
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

// Validate checks the configuration for nonsensical values.
func (c *Config) Validate() error {
	if c.DomainCap < 0 {
		return errors.New("domain_cap must be non-negative")
	}
	if c.RatePerMin < 0 {
		return errors.New("rate_per_min must be non-negative")
	}
	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level: %q", c.LogLevel)
	}
	return nil
}
