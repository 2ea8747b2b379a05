package commands

import (
	"fmt"
	"sort"
	"strings"

	"github.com/leapstack-labs/pbixlint/internal/cli/output"
	"github.com/leapstack-labs/pbixlint/pkg/lint"
	_ "github.com/leapstack-labs/pbixlint/pkg/lint/rules" // register all rules
	"github.com/spf13/cobra"
)

// RulesOptions holds options for the rules command.
type RulesOptions struct {
	Group   string // Filter by group: dax, powerquery
	Verbose bool   // Show full documentation
	Format  string // Output format
}

// NewRulesCommand creates the rules command.
func NewRulesCommand() *cobra.Command {
	opts := &RulesOptions{}
	cmd := &cobra.Command{
		Use:   "rules [rule-id]",
		Short: "List available best-practice rules",
		Long: `List all best-practice rules with their documentation.

Rules are organized by group: dax rules scan measure expressions and
powerquery rules scan M scripts. Use --verbose to see the rationale and
examples.

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format
  - JSON/YAML: Machine-readable format`,
		Example: `  # List all rules
  pbixlint rules

  # Show details for a specific rule
  pbixlint rules DX01

  # List Power Query rules only
  pbixlint rules --group powerquery

  # Output as JSON
  pbixlint rules --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return showRule(cmd, args[0], opts)
			}
			return listRules(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Group, "group", "g", "", "Filter by group: dax, powerquery")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "V", false, "Show full documentation")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, markdown, json, yaml")

	_ = cmd.RegisterFlagCompletionFunc("group", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{lint.GroupDAX, lint.GroupPowerQuery}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func listRules(cmd *cobra.Command, opts *RulesOptions) error {
	cmdCtx := NewCommandContextWithoutAnalyzer(cmd)
	r, err := overrideFormat(cmd, cmdCtx.Renderer, opts.Format)
	if err != nil {
		return err
	}

	rules := filterRules(lint.AllRules(), opts.Group)

	// Sort by group, then ID
	sort.Slice(rules, func(i, j int) bool {
		if rules[i].Group != rules[j].Group {
			return rules[i].Group < rules[j].Group
		}
		return rules[i].ID < rules[j].ID
	})

	switch r.EffectiveMode() {
	case output.ModeJSON, output.ModeYAML:
		return listRulesStructured(r, rules)
	case output.ModeMarkdown:
		listRulesMarkdown(r, rules, opts.Verbose)
	default:
		listRulesText(r, rules, opts.Verbose)
	}
	return nil
}

func filterRules(rules []lint.RuleInfo, group string) []lint.RuleInfo {
	if group == "" {
		return rules
	}

	var filtered []lint.RuleInfo
	for _, r := range rules {
		if strings.EqualFold(r.Group, group) {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

func showRule(cmd *cobra.Command, ruleID string, opts *RulesOptions) error {
	cmdCtx := NewCommandContextWithoutAnalyzer(cmd)
	r, err := overrideFormat(cmd, cmdCtx.Renderer, opts.Format)
	if err != nil {
		return err
	}

	def, ok := lint.GetByID(strings.ToUpper(strings.TrimSpace(ruleID)))
	if !ok {
		return fmt.Errorf("rule %q not found", ruleID)
	}
	rule := def.Info()

	switch r.EffectiveMode() {
	case output.ModeJSON, output.ModeYAML:
		return r.Structured(rule)
	case output.ModeMarkdown:
		showRuleMarkdown(r, &rule)
	default:
		showRuleText(r, &rule)
	}
	return nil
}

// listRulesText outputs rules in styled text format.
func listRulesText(r *output.Renderer, rules []lint.RuleInfo, verbose bool) {
	styles := r.Styles()

	r.Println("")
	r.Println(styles.Header1.Render(fmt.Sprintf("Best-Practice Rules (%d)", len(rules))))
	r.Println("")

	currentGroup := ""
	for _, rule := range rules {
		if rule.Group != currentGroup {
			currentGroup = rule.Group
			r.Println(styles.Header2.Render(groupLabel(currentGroup)))
		}

		r.Printf("    %s  %s - %s\n",
			styles.Muted.Render(rule.ID),
			rule.Name,
			r.SeverityStyle(rule.DefaultSeverity).Render(rule.DefaultSeverity.String()),
		)

		if verbose {
			r.Println(styles.Muted.Render("        " + rule.Description))
			if rule.Rationale != "" {
				r.Println(styles.Muted.Render("        Why: " + truncateOneLine(rule.Rationale, 80)))
			}
			r.Println("")
		}
	}

	r.Println("")
	r.Println(styles.Muted.Render("Use 'pbixlint rules <rule-id>' for detailed documentation"))
	r.Println("")
}

// listRulesMarkdown outputs rules in markdown format.
func listRulesMarkdown(r *output.Renderer, rules []lint.RuleInfo, verbose bool) {
	r.Println("# Best-Practice Rules")
	r.Println("")

	currentGroup := ""
	for _, rule := range rules {
		if rule.Group != currentGroup {
			currentGroup = rule.Group
			r.Println("## " + groupLabel(currentGroup))
			r.Println("")
		}

		r.Printf("- **%s** - %s (`%s`)\n", rule.ID, rule.Name, rule.DefaultSeverity.String())
		if verbose {
			r.Println("  " + rule.Description)
			if rule.Rationale != "" {
				r.Println("  > " + rule.Rationale)
			}
		}
	}

	r.Println("")
}

// RulesOutput is the structured output for rules listing.
type RulesOutput struct {
	Rules []lint.RuleInfo `json:"rules" yaml:"rules"`
	Count struct {
		DAX        int `json:"dax" yaml:"dax"`
		PowerQuery int `json:"powerquery" yaml:"powerquery"`
		Total      int `json:"total" yaml:"total"`
	} `json:"count" yaml:"count"`
}

func listRulesStructured(r *output.Renderer, rules []lint.RuleInfo) error {
	out := RulesOutput{Rules: rules}
	if out.Rules == nil {
		out.Rules = []lint.RuleInfo{}
	}

	for _, rule := range rules {
		switch rule.Group {
		case lint.GroupDAX:
			out.Count.DAX++
		case lint.GroupPowerQuery:
			out.Count.PowerQuery++
		}
	}
	out.Count.Total = len(rules)

	return r.Structured(out)
}

// showRuleText displays detailed rule info in text format.
func showRuleText(r *output.Renderer, rule *lint.RuleInfo) {
	styles := r.Styles()

	r.Println("")
	r.Println(styles.Header1.Render(fmt.Sprintf("%s - %s", rule.ID, rule.Name)))
	r.Println("")

	r.Printf("  %s: %s\n", styles.Bold.Render("Group"), groupLabel(rule.Group))
	r.Printf("  %s: %s\n", styles.Bold.Render("Severity"), rule.DefaultSeverity.String())
	r.Println("")

	r.Println(styles.Bold.Render("Description"))
	r.Println("  " + rule.Description)
	r.Println("")

	if rule.Rationale != "" {
		r.Println(styles.Bold.Render("Why This Matters"))
		r.Println("  " + rule.Rationale)
		r.Println("")
	}

	if rule.BadExample != "" {
		r.Println(styles.Bold.Render("Bad Example"))
		for _, line := range strings.Split(rule.BadExample, "\n") {
			r.Println(styles.Muted.Render("  " + line))
		}
		r.Println("")
	}

	if rule.GoodExample != "" {
		r.Println(styles.Bold.Render("Good Example"))
		for _, line := range strings.Split(rule.GoodExample, "\n") {
			r.Println(styles.Success.Render("  " + line))
		}
		r.Println("")
	}

	if len(rule.ConfigKeys) > 0 {
		r.Println(styles.Bold.Render("Configuration"))
		r.Printf("  Options: %s\n", strings.Join(rule.ConfigKeys, ", "))
		r.Println("")
	}

	r.Println(styles.Muted.Render("Docs: " + rule.DocURL))
}

// showRuleMarkdown displays detailed rule info in markdown format.
func showRuleMarkdown(r *output.Renderer, rule *lint.RuleInfo) {
	lang := "dax"
	if rule.Group == lint.GroupPowerQuery {
		lang = "powerquery"
	}

	r.Printf("# %s - %s\n\n", rule.ID, rule.Name)
	r.Printf("**Group:** %s | **Severity:** `%s`\n\n", groupLabel(rule.Group), rule.DefaultSeverity.String())
	r.Println(rule.Description)
	r.Println("")

	if rule.Rationale != "" {
		r.Println("## Why This Matters")
		r.Println("")
		r.Println(rule.Rationale)
		r.Println("")
	}

	if rule.BadExample != "" {
		r.Println("## Bad Example")
		r.Println("")
		r.Block(lang, rule.BadExample)
		r.Println("")
	}

	if rule.GoodExample != "" {
		r.Println("## Good Example")
		r.Println("")
		r.Block(lang, rule.GoodExample)
		r.Println("")
	}

	if len(rule.ConfigKeys) > 0 {
		r.Println("## Configuration")
		r.Println("")
		r.Printf("Options: `%s`\n", strings.Join(rule.ConfigKeys, "`, `"))
		r.Println("")
	}

	r.Printf("[Documentation](%s)\n", rule.DocURL)
}

func groupLabel(group string) string {
	switch group {
	case lint.GroupDAX:
		return "DAX Rules"
	case lint.GroupPowerQuery:
		return "Power Query Rules"
	default:
		return group
	}
}

func truncateOneLine(s string, maxLen int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
