// Package prompt builds copy-paste context blocks for asking a language model
// to write DAX against a loaded model.
package prompt

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/pbixlint/pkg/pbix"
)

// Block delimiters.
const (
	BeginMarker = "--- BEGIN AI CONTEXT ---"
	EndMarker   = "--- END AI CONTEXT ---"
)

// NoSchema replaces the schema listing when no columns could be read.
const NoSchema = "Could not read the column schema of the model."

// Schema lists columns grouped by table, tables in first-seen order:
//
//	Table: 'Sales'
//	  - Column: 'Amount'
func Schema(cols []pbix.Column) string {
	if len(cols) == 0 {
		return NoSchema + "\n"
	}

	var order []string
	byTable := make(map[string][]string)
	for _, c := range cols {
		if _, seen := byTable[c.Table]; !seen {
			order = append(order, c.Table)
		}
		byTable[c.Table] = append(byTable[c.Table], c.Name)
	}

	var sb strings.Builder
	for _, table := range order {
		fmt.Fprintf(&sb, "Table: '%s'\n", table)
		for _, name := range byTable[table] {
			fmt.Fprintf(&sb, "  - Column: '%s'\n", name)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// MeasureContext returns the context for generating a DAX measure.
func MeasureContext(request string, cols []pbix.Column) string {
	return render("Generate a DAX measure.", "", request, cols)
}

// ColumnContext returns the context for generating a DAX calculated column
// on table.
func ColumnContext(table, request string, cols []pbix.Column) string {
	return render("Generate a DAX calculated column.", table, request, cols)
}

func render(task, table, request string, cols []pbix.Column) string {
	var sb strings.Builder
	sb.WriteString(BeginMarker + "\n")
	fmt.Fprintf(&sb, "**Task:** %s\n", task)
	if table != "" {
		fmt.Fprintf(&sb, "**Target table:** %s\n", table)
	}
	fmt.Fprintf(&sb, "**User request:** %s\n", strings.TrimSpace(request))
	sb.WriteString("**Model schema:**\n")
	sb.WriteString(Schema(cols))
	sb.WriteString(EndMarker + "\n")
	return sb.String()
}
