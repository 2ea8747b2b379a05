package config

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix is the prefix of environment overrides. A double underscore
// separates nested keys: PBIXLINT_SERVER__PORT sets server.port.
const EnvPrefix = "PBIXLINT_"

// loggerKey is used to store logger in context.
type loggerKey struct{}

// configKey is used to store config in context.
type configKey struct{}

// configFileNames are searched in the working directory, in order.
var configFileNames = []string{"pbixlint.yaml", "pbixlint.yml"}

// flagKeys maps flag names whose config key differs from the snake_case name.
var flagKeys = map[string]string{
	"host":       "server.host",
	"port":       "server.port",
	"upload-dir": "server.upload_dir",
}

// Loaded is a resolved configuration and the file it came from.
type Loaded struct {
	*Config
	File string
}

// findConfigFile finds the config file to use.
// Priority: explicit path > pbixlint.yaml > pbixlint.yml
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range configFileNames {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

func defaults() map[string]any {
	return map[string]any{
		"output":                    DefaultOutput,
		"verbose":                   false,
		"log_level":                 DefaultLogLevel,
		"server.host":               DefaultHost,
		"server.port":               DefaultPort,
		"server.upload_dir":         DefaultUploadDir,
		"server.max_upload_mb":      DefaultMaxUploadMB,
		"server.allowed_extensions": DefaultAllowedExtensions,
		"loader.max_schema_mb":      DefaultMaxSchemaMB,
	}
}

// Load loads configuration from defaults, file, environment variables and
// flags. Precedence (highest to lowest): flags > env vars > config file > defaults
func Load(cfgFile string, flags *pflag.FlagSet) (*Loaded, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	used := findConfigFile(cfgFile)
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", used, err)
		}
	}

	// 3. Environment variables
	// Transform: PBIXLINT_SERVER__UPLOAD_DIR -> server.upload_dir
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags (only the ones explicitly set)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				key = strings.ReplaceAll(f.Name, "-", "_")
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	normalizeExtensions(&cfg.Server)
	cfg.Lint.Disabled = splitList(cfg.Lint.Disabled)

	if err := cfg.Validate(); err != nil {
		if used != "" {
			return nil, fmt.Errorf("invalid configuration (%s): %w", used, err)
		}
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &Loaded{Config: &cfg, File: used}, nil
}

func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// normalizeExtensions lower-cases the allow-list.
func normalizeExtensions(s *ServerConfig) {
	exts := splitList(s.AllowedExtensions)
	for i, ext := range exts {
		exts[i] = strings.ToLower(ext)
	}
	s.AllowedExtensions = exts
}

// splitList splits comma-separated entries, which is how env overrides
// arrive, and drops blanks.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	return &Config{
		OutputFormat: DefaultOutput,
		LogLevel:     DefaultLogLevel,
		Server: ServerConfig{
			Host:              DefaultHost,
			Port:              DefaultPort,
			UploadDir:         DefaultUploadDir,
			MaxUploadMB:       DefaultMaxUploadMB,
			AllowedExtensions: append([]string(nil), DefaultAllowedExtensions...),
		},
		Loader: LoaderConfig{MaxSchemaMB: DefaultMaxSchemaMB},
	}
}

// ConfigKey returns the context key used for storing the config.
func ConfigKey() interface{} {
	return configKey{}
}

// FromContext retrieves the config from the command context, or Default.
func FromContext(ctx context.Context) *Config {
	if c, ok := ctx.Value(configKey{}).(*Config); ok {
		return c
	}
	return Default()
}

// LoggerKey returns the context key used for storing the logger.
// This allows the commands package to retrieve the logger from context
// without creating an import cycle with the cli package.
func LoggerKey() interface{} {
	return loggerKey{}
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	// Return discard logger as safe fallback
	return slog.New(slog.DiscardHandler)
}

// NewLogger builds the stderr text logger for the configured level.
// Verbose forces debug.
func NewLogger(cfg *Config, w io.Writer) (*slog.Logger, error) {
	level, err := ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), nil
}
