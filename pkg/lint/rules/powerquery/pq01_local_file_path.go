package powerquery

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/pbixlint/pkg/lint"
)

// DefaultFunctions are the M functions that read from the local filesystem.
var DefaultFunctions = []string{"File.Contents", "Folder.Files"}

func init() {
	lint.Register(lint.RuleDef{
		ID:          "PQ01",
		Name:        "powerquery.local-file-path",
		Group:       lint.GroupPowerQuery,
		Description: "Query reads from a hardcoded local drive path",
		Severity:    lint.SeverityWarning,
		Check:       checkLocalFilePath,
		ConfigKeys:  []string{"functions"},
		Rationale: "A drive-letter path only resolves on the author's machine. Scheduled refresh " +
			"in the service fails unless every consumer has the same drive mapping.",
		BadExample:  `Source = Csv.Document(File.Contents("C:\Users\me\sales.csv"))`,
		GoodExample: `Source = Csv.Document(Web.Contents("https://contoso.sharepoint.com/sites/bi/sales.csv"))`,
	})
}

// checkLocalFilePath flags queries where the first string literal after a
// local file function contains a drive separator (":\").
func checkLocalFilePath(ctx *lint.Context, opts map[string]any) []lint.Finding {
	functions := lint.GetStringSliceOption(opts, "functions", DefaultFunctions)

	var findings []lint.Finding
	for _, q := range ctx.Queries {
		path, ok := LocalPath(q.Expression, functions)
		if !ok {
			continue
		}
		findings = append(findings, lint.Finding{
			RuleID:   "PQ01",
			Severity: lint.SeverityWarning,
			Subject:  q.Name,
			Message: fmt.Sprintf(
				"Query %q uses a local file path: %s; consider a centralized data source such as SharePoint or a gateway share",
				q.Name, path),
		})
	}
	return findings
}

// LocalPath returns the first string literal following the earliest
// reference to one of functions, and whether it looks like a drive path.
// A reference without a complete literal after it yields false.
func LocalPath(expr string, functions []string) (string, bool) {
	at := -1
	for _, fn := range functions {
		if fn == "" {
			continue
		}
		if i := strings.Index(expr, fn); i >= 0 && (at < 0 || i < at) {
			at = i
		}
	}
	if at < 0 {
		return "", false
	}

	rest := expr[at:]
	open := strings.IndexByte(rest, '"')
	if open < 0 {
		return "", false
	}
	rest = rest[open+1:]
	end := strings.IndexByte(rest, '"')
	if end < 0 {
		return "", false
	}

	path := rest[:end]
	return path, strings.Contains(path, `:\`)
}
