package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/leapstack-labs/pbixlint/internal/cli/config"
)

// ConfigField represents a configuration field definition.
type ConfigField struct {
	Name        string
	Type        string
	Default     string
	Description string
	Category    string // "general", "server", "loader", "lint"
}

// getConfigSchema returns the configuration schema definition.
// Defaults come from internal/cli/config so the page never drifts.
func getConfigSchema() []ConfigField {
	return []ConfigField{
		{Name: "output", Type: "string", Default: config.DefaultOutput, Description: "Output format: auto, text, markdown, json, yaml", Category: "general"},
		{Name: "verbose", Type: "bool", Default: "false", Description: "Verbose output; forces debug logging", Category: "general"},
		{Name: "log_level", Type: "string", Default: config.DefaultLogLevel, Description: "Log level: debug, info, warn, error", Category: "general"},

		{Name: "server.host", Type: "string", Default: config.DefaultHost, Description: "Address the HTTP API binds to", Category: "server"},
		{Name: "server.port", Type: "int", Default: strconv.Itoa(config.DefaultPort), Description: "Port the HTTP API listens on", Category: "server"},
		{Name: "server.upload_dir", Type: "string", Default: config.DefaultUploadDir, Description: "Directory for uploaded scratch files", Category: "server"},
		{Name: "server.max_upload_mb", Type: "int", Default: strconv.Itoa(config.DefaultMaxUploadMB), Description: "Largest accepted upload body", Category: "server"},
		{Name: "server.allowed_extensions", Type: "[]string", Default: strings.Join(config.DefaultAllowedExtensions, ","), Description: "Upload extension allow-list", Category: "server"},

		{Name: "loader.max_schema_mb", Type: "int", Default: strconv.Itoa(config.DefaultMaxSchemaMB), Description: "Largest model metadata the loader decodes", Category: "loader"},

		{Name: "lint.disabled", Type: "[]string", Description: "Rule IDs to skip", Category: "lint"},
		{Name: "lint.severity", Type: "map[string]string", Description: "Severity override per rule ID", Category: "lint"},
		{Name: "lint.rules", Type: "map[string]map[string]any", Description: "Rule-specific options per rule ID", Category: "lint"},
	}
}

// generateConfigDocs generates the configuration reference page.
func generateConfigDocs(outDir string) error {
	log.Printf("Generating configuration docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	w := NewMarkdownWriter()

	w.Frontmatter("Configuration", "pbixlint configuration reference")
	w.GeneratedMarker()

	w.Header(1, "Configuration")
	w.Paragraph("pbixlint reads `pbixlint.yaml` (or `pbixlint.yml`) from the working directory, or the file given with `--config`.")

	sections := []struct {
		category string
		title    string
	}{
		{"general", "General"},
		{"server", "HTTP API"},
		{"loader", "Model Loader"},
		{"lint", "Best-Practice Rules"},
	}

	fields := getConfigSchema()
	headers := []string{"Field", "Type", "Default", "Description"}
	for _, section := range sections {
		w.Header(2, section.title)

		var rows [][]string
		for _, f := range fields {
			if f.Category != section.category {
				continue
			}
			defVal := "-"
			if f.Default != "" {
				defVal = InlineCode(f.Default)
			}
			rows = append(rows, []string{InlineCode(f.Name), f.Type, defVal, f.Description})
		}
		w.Table(headers, rows)
	}

	w.Header(2, "Example")
	w.CodeBlock("yaml", `output: text
log_level: info

server:
  host: 0.0.0.0
  port: 8080
  allowed_extensions: [.pbix, .pbit]

lint:
  severity:
    PQ01: error`)

	if err := os.WriteFile(filepath.Join(outDir, "configuration.md"), w.Bytes(), 0600); err != nil {
		return err
	}
	log.Printf("  Generated configuration.md")
	return nil
}
