// Package config provides layered configuration for the pbixlint CLI.
//
// Values are resolved from defaults, a pbixlint.yaml file, PBIXLINT_*
// environment variables and command-line flags, in increasing priority.
package config

import (
	"github.com/leapstack-labs/pbixlint/pkg/lint"
)

// Config holds all CLI configuration options.
type Config struct {
	OutputFormat string       `koanf:"output"`
	Verbose      bool         `koanf:"verbose"`
	LogLevel     string       `koanf:"log_level"`
	Server       ServerConfig `koanf:"server"`
	Lint         LintConfig   `koanf:"lint"`
	Loader       LoaderConfig `koanf:"loader"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Host              string   `koanf:"host"`
	Port              int      `koanf:"port"`
	UploadDir         string   `koanf:"upload_dir"`
	MaxUploadMB       int64    `koanf:"max_upload_mb"`
	AllowedExtensions []string `koanf:"allowed_extensions"`
}

// LintConfig configures the best-practice scanners.
//
//	lint:
//	  disabled: [DX01]
//	  severity:
//	    PQ01: error
//	  rules:
//	    DX01:
//	      max_commas: 5
type LintConfig struct {
	Disabled []string                  `koanf:"disabled"`
	Severity map[string]string         `koanf:"severity"`
	Rules    map[string]map[string]any `koanf:"rules"`
}

// LoaderConfig configures model loading.
type LoaderConfig struct {
	MaxSchemaMB int64 `koanf:"max_schema_mb"`
}

// Default configuration values.
const (
	DefaultOutput      = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultLogLevel    = "warn"
	DefaultHost        = "127.0.0.1"
	DefaultPort        = 5000
	DefaultUploadDir   = "uploads"
	DefaultMaxUploadMB = 200
	DefaultMaxSchemaMB = 64
)

// DefaultAllowedExtensions is the upload allow-list used when none is configured.
var DefaultAllowedExtensions = []string{".pbix"}

// LintSettings builds the scanner configuration.
func (c *Config) LintSettings() (*lint.Config, error) {
	return lint.ConfigFromSettings(c.Lint.Disabled, c.Lint.Severity, c.Lint.Rules)
}

// MaxSchemaBytes returns the loader limit in bytes.
func (c *Config) MaxSchemaBytes() int64 {
	if c.Loader.MaxSchemaMB <= 0 {
		return DefaultMaxSchemaMB << 20
	}
	return c.Loader.MaxSchemaMB << 20
}

// MaxUploadBytes returns the upload body limit in bytes.
func (c *ServerConfig) MaxUploadBytes() int64 {
	if c.MaxUploadMB <= 0 {
		return DefaultMaxUploadMB << 20
	}
	return c.MaxUploadMB << 20
}
