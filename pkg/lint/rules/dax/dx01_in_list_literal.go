package dax

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/pbixlint/pkg/lint"
)

// DefaultMaxCommas is the comma count a flagged expression must exceed.
const DefaultMaxCommas = 3

const inListMarker = " IN {"

func init() {
	lint.Register(lint.RuleDef{
		ID:          "DX01",
		Name:        "dax.in-list-literal",
		Group:       lint.GroupDAX,
		Description: "Measure tests membership against a long inline list",
		Severity:    lint.SeverityInfo,
		Check:       checkInListLiteral,
		ConfigKeys:  []string{"max_commas"},
		Rationale: "Long IN { ... } lists embedded in measures are evaluated on every query and " +
			"duplicate business rules across measures. A calculated column (or a small mapping " +
			"table) computes the membership once at refresh time.",
		BadExample:  `Sales West = CALCULATE([Total], Sales[Region] IN {"WA", "OR", "CA", "NV", "AZ"})`,
		GoodExample: `Sales West = CALCULATE([Total], Sales[IsWest] = TRUE())`,
	})
}

// checkInListLiteral flags measures whose expression contains " IN {" and
// more than max_commas commas. The comma count is taken over the whole
// expression, not only the list.
func checkInListLiteral(ctx *lint.Context, opts map[string]any) []lint.Finding {
	maxCommas := lint.GetIntOption(opts, "max_commas", DefaultMaxCommas)

	var findings []lint.Finding
	for _, m := range ctx.Measures {
		if !strings.Contains(m.Expression, inListMarker) {
			continue
		}
		commas := strings.Count(m.Expression, ",")
		if commas <= maxCommas {
			continue
		}
		findings = append(findings, lint.Finding{
			RuleID:   "DX01",
			Severity: lint.SeverityInfo,
			Subject:  m.Name,
			Message: fmt.Sprintf(
				"Measure %q filters with an inline IN list (%d commas); consider moving the list logic to a calculated column",
				m.Name, commas),
		})
	}
	return findings
}
