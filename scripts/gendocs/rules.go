package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/pbixlint/pkg/lint"
	_ "github.com/leapstack-labs/pbixlint/pkg/lint/rules"
)

// groupDescriptions provides human-readable descriptions for rule groups.
var groupDescriptions = map[string]string{
	lint.GroupDAX:        "Rules that scan the expressions of DAX measures.",
	lint.GroupPowerQuery: "Rules that scan Power Query (M) partition sources and shared expressions.",
}

var groupTitles = map[string]string{
	lint.GroupDAX:        "DAX",
	lint.GroupPowerQuery: "Power Query",
}

// generateRulesDocs generates the best-practice rule reference.
func generateRulesDocs(outDir string) error {
	log.Printf("Generating rule docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	w := NewMarkdownWriter()

	w.Frontmatter("Best-Practice Rules", "DAX and Power Query rules checked by pbixlint")
	w.GeneratedMarker()

	w.Header(1, "Best-Practice Rules")
	w.Paragraph(fmt.Sprintf("pbixlint checks **%d rules** across measures and queries.", lint.Count()))

	w.Header(2, "Severity Levels")
	w.Table(
		[]string{"Severity", "Description"},
		[][]string{
			{InlineCode("error"), "Critical issue that should be fixed"},
			{InlineCode("warning"), "Potential issue that should be reviewed"},
			{InlineCode("info"), "Informational feedback"},
			{InlineCode("hint"), "Suggestion for improvement"},
		},
	)

	w.Header(2, "Configuration")
	w.Paragraph("Rules can be configured in `pbixlint.yaml`:")
	w.CodeBlock("yaml", `lint:
  disabled: [PQ01]        # disable rule
  severity:
    DX01: warning         # override severity
  rules:
    DX01:
      max_commas: 5       # rule-specific option`)

	for _, group := range []string{lint.GroupDAX, lint.GroupPowerQuery} {
		rules := lint.GetByGroup(group)
		if len(rules) == 0 {
			continue
		}

		w.Line(fmt.Sprintf("## %s {#%s}", groupTitles[group], group))
		w.Newline()
		w.Paragraph(groupDescriptions[group])

		for _, rule := range rules {
			writeRuleDoc(w, rule.Info())
		}
	}

	if err := os.WriteFile(filepath.Join(outDir, "rules.md"), w.Bytes(), 0600); err != nil {
		return err
	}
	log.Printf("  Generated rules.md")
	return nil
}

// writeRuleDoc writes detailed documentation for a single rule.
func writeRuleDoc(w *MarkdownWriter, rule lint.RuleInfo) {
	// Rule header with anchor: ### DX01 - dax.in-list-literal {#dx01}
	w.Line(fmt.Sprintf("### %s - %s {#%s}", rule.ID, rule.Name, strings.ToLower(rule.ID)))
	w.Newline()

	w.Line(fmt.Sprintf("**Severity:** %s", InlineCode(rule.DefaultSeverity.String())))
	w.Newline()

	w.Paragraph(cleanDescription(rule.Description))

	lang := "dax"
	if rule.Group == lint.GroupPowerQuery {
		lang = "powerquery"
	}

	if rule.Rationale != "" {
		w.Header(4, "Why This Matters")
		w.Paragraph(strings.TrimSpace(rule.Rationale))
	}

	if rule.BadExample != "" {
		w.Header(4, "Bad")
		w.CodeBlock(lang, rule.BadExample)
	}

	if rule.GoodExample != "" {
		w.Header(4, "Good")
		w.CodeBlock(lang, rule.GoodExample)
	}

	if len(rule.ConfigKeys) > 0 {
		w.Header(4, "Configuration")
		w.Paragraph(fmt.Sprintf("This rule accepts the following configuration options: %s",
			InlineCode(strings.Join(rule.ConfigKeys, ", "))))
	}

	w.Line("---")
	w.Newline()
}
