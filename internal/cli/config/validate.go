package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/leapstack-labs/pbixlint/internal/cli/output"
	"github.com/leapstack-labs/pbixlint/pkg/lint"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, err := output.ParseMode(c.OutputFormat); err != nil {
		return err
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.UploadDir == "" {
		return fmt.Errorf("server.upload_dir is required")
	}
	if len(c.Server.AllowedExtensions) == 0 {
		return fmt.Errorf("server.allowed_extensions must not be empty")
	}
	for _, ext := range c.Server.AllowedExtensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			return fmt.Errorf("server.allowed_extensions: %q must start with a dot\nHint: use \".pbix\" rather than \"pbix\"", ext)
		}
	}

	for id, sev := range c.Lint.Severity {
		if _, ok := lint.ParseSeverity(sev); !ok {
			return fmt.Errorf("lint.severity.%s: invalid severity %q (want error, warning, info or hint)", id, sev)
		}
	}
	return nil
}

// ParseLogLevel converts a level name to a slog level.
func ParseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("invalid log level %q (want debug, info, warn or error)", s)
	}
	return level, nil
}
