package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/pbixlint/internal/cli"
	"github.com/leapstack-labs/pbixlint/internal/cli/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// generateCLIDocs writes index.md plus one page per command, subcommands
// included (prompt measure -> prompt-measure.md).
func generateCLIDocs(outDir string) error {
	log.Printf("Generating CLI docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	root := cli.NewRootCmd()
	cmds := documentedCommands(root)

	if err := writePage(outDir, "index.md", cliIndex(root, cmds)); err != nil {
		return err
	}
	for _, cmd := range cmds {
		if err := writePage(outDir, pageName(cmd)+".md", commandPage(cmd)); err != nil {
			return err
		}
	}
	return nil
}

func writePage(outDir, name string, w *MarkdownWriter) error {
	if err := os.WriteFile(filepath.Join(outDir, name), w.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	log.Printf("  Generated %s", name)
	return nil
}

// documentedCommands returns every visible command below root, depth first.
func documentedCommands(root *cobra.Command) []*cobra.Command {
	var out []*cobra.Command
	for _, cmd := range root.Commands() {
		if cmd.Hidden || !cmd.IsAvailableCommand() || cmd.Name() == "help" {
			continue
		}
		out = append(out, cmd)
		out = append(out, documentedCommands(cmd)...)
	}
	return out
}

// pageName is the command path without the binary name, dash-joined.
func pageName(cmd *cobra.Command) string {
	path := strings.Fields(cmd.CommandPath())
	return strings.Join(path[1:], "-")
}

func cliIndex(root *cobra.Command, cmds []*cobra.Command) *MarkdownWriter {
	w := NewMarkdownWriter()
	w.Frontmatter("CLI Reference", "Command-line interface reference for pbixlint")
	w.GeneratedMarker()

	w.Header(1, "CLI Reference")
	w.Paragraph(cleanDescription(root.Long))
	w.CodeBlock("bash", "go install github.com/leapstack-labs/pbixlint/cmd/pbixlint@latest")

	w.Header(2, "Commands")
	rows := make([][]string, 0, len(cmds))
	for _, cmd := range cmds {
		name := strings.TrimPrefix(cmd.CommandPath(), root.Name()+" ")
		rows = append(rows, []string{
			fmt.Sprintf("[%s](%s.md)", InlineCode(name), pageName(cmd)),
			cleanDescription(cmd.Short),
		})
	}
	w.Table([]string{"Command", "Description"}, rows)

	w.Header(2, "Global Options")
	flagTable(w, root.PersistentFlags())

	w.Header(2, "Environment")
	w.Paragraph(fmt.Sprintf("Each configuration key maps to a %s variable; nested keys are joined with a double underscore. List values accept comma-separated entries.", InlineCode(config.EnvPrefix)))
	var envRows [][]string
	for _, f := range getConfigSchema() {
		envRows = append(envRows, []string{InlineCode(envVar(f.Name)), InlineCode(f.Name)})
	}
	w.Table([]string{"Variable", "Key"}, envRows)
	w.Paragraph("Flags win over the environment, which wins over " + InlineCode("pbixlint.yaml") + ".")

	w.Header(2, "Exit Codes")
	w.BulletList([]string{
		InlineCode("0") + " success",
		InlineCode("1") + " error, or findings reported under " + InlineCode("--fail-on-findings"),
	})
	return w
}

// envVar maps a dotted config key to its environment variable.
func envVar(key string) string {
	return config.EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "__"))
}

func commandPage(cmd *cobra.Command) *MarkdownWriter {
	w := NewMarkdownWriter()
	w.Frontmatter(cmd.CommandPath(), cmd.Short)
	w.GeneratedMarker()

	w.Header(1, cmd.CommandPath())
	desc := cmd.Long
	if desc == "" {
		desc = cmd.Short
	}
	w.Paragraph(desc)

	w.CodeBlock("bash", cmd.UseLine())

	if subs := documentedCommands(cmd); len(subs) > 0 {
		w.Header(2, "Subcommands")
		items := make([]string, 0, len(subs))
		for _, sub := range subs {
			items = append(items, fmt.Sprintf("[%s](%s.md) %s", InlineCode(sub.Name()), pageName(sub), cleanDescription(sub.Short)))
		}
		w.BulletList(items)
	}

	if cmd.HasAvailableLocalFlags() {
		w.Header(2, "Options")
		flagTable(w, cmd.LocalNonPersistentFlags())
	}

	if cmd.Example != "" {
		w.Header(2, "Examples")
		w.CodeBlock("bash", dedent(cmd.Example))
	}

	w.Paragraph("Global options are listed in the [CLI reference](index.md#global-options).")
	return w
}

func flagTable(w *MarkdownWriter, flags *pflag.FlagSet) {
	var rows [][]string
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Hidden || f.Name == "help" {
			return
		}
		name := "--" + f.Name
		if f.Shorthand != "" {
			name = "-" + f.Shorthand + ", " + name
		}
		def := f.DefValue
		if def != "" && def != "[]" {
			def = InlineCode(def)
		} else {
			def = ""
		}
		rows = append(rows, []string{InlineCode(name), def, cleanDescription(f.Usage)})
	})
	w.Table([]string{"Flag", "Default", "Description"}, rows)
}

// dedent strips the indentation shared by every non-blank line.
func dedent(s string) string {
	lines := strings.Split(strings.Trim(s, "\n"), "\n")
	prefix, found := "", false
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
		if !found || len(indent) < len(prefix) {
			prefix, found = indent, true
		}
	}
	for i, line := range lines {
		lines[i] = strings.TrimPrefix(line, prefix)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
