package output

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/lipgloss"

	"github.com/leapstack-labs/pbixlint/internal/analysis"
	"github.com/leapstack-labs/pbixlint/pkg/lint"
	"github.com/leapstack-labs/pbixlint/pkg/pbix"
)

// ReportOutput is the structured form of a full report.
type ReportOutput struct {
	Filename string           `json:"filename" yaml:"filename"`
	Analysis *analysis.Report `json:"analysis" yaml:"analysis"`
}

// Result renders the payload returned by analysis.Analyzer.Run for kind.
func (r *Renderer) Result(kind analysis.Kind, payload any) error {
	if r.IsStructured() {
		return r.Structured(map[string]any{kind.ResponseKey(): payload})
	}

	r.Header(2, kind.Title())
	r.renderPayload(payload)
	r.Println("")
	return nil
}

// Report renders every analysis of a report.
func (r *Renderer) Report(path string, rep *analysis.Report) error {
	if r.IsStructured() {
		return r.Structured(ReportOutput{Filename: filepath.Base(path), Analysis: rep})
	}

	r.Header(1, "Analysis of "+filepath.Base(path))
	r.Println("")
	for _, kind := range analysis.Kinds() {
		payload, _ := rep.Get(kind)
		r.Header(2, kind.Title())
		r.renderPayload(payload)
		r.Println("")
	}
	r.Muted(fmt.Sprintf("%d finding(s)", rep.FindingCount()))
	return nil
}

func (r *Renderer) renderPayload(payload any) {
	switch v := payload.(type) {
	case analysis.View[pbix.Table]:
		if r.unavailable(v.Err) {
			return
		}
		rows := make([][]string, 0, len(v.Items))
		for _, t := range v.Items {
			rows = append(rows, []string{t.Name, yesNo(t.Hidden)})
		}
		r.Table([]string{"Table", "Hidden"}, rows, "No tables found.")

	case analysis.View[pbix.Measure]:
		if r.unavailable(v.Err) {
			return
		}
		if len(v.Items) == 0 {
			r.Muted("No measures found.")
			return
		}
		for _, m := range v.Items {
			r.Println(r.styles.Bold.Render(m.Name) + r.styles.Muted.Render(" ("+m.Table+")"))
			r.Block("dax", m.Expression)
			r.Println("")
		}

	case analysis.View[pbix.Relationship]:
		if r.unavailable(v.Err) {
			return
		}
		rows := make([][]string, 0, len(v.Items))
		for _, rel := range v.Items {
			rows = append(rows, []string{
				rel.FromTable + "[" + rel.FromColumn + "]",
				rel.ToTable + "[" + rel.ToColumn + "]",
				yesNo(rel.IsActive),
				rel.CrossFilter,
			})
		}
		r.Table([]string{"From", "To", "Active", "Cross filter"}, rows, "No relationships found.")

	case analysis.View[pbix.Query]:
		if r.unavailable(v.Err) {
			return
		}
		if len(v.Items) == 0 {
			r.Muted("No Power Query scripts found.")
			return
		}
		for _, q := range v.Items {
			r.Println(r.styles.Bold.Render(q.Name) + r.styles.Muted.Render(" ("+string(q.Kind)+")"))
			r.Block("powerquery", q.Expression)
			r.Println("")
		}

	case analysis.View[pbix.Column]:
		if r.unavailable(v.Err) {
			return
		}
		rows := make([][]string, 0, len(v.Items))
		for _, c := range v.Items {
			rows = append(rows, []string{c.Table, c.Name, c.DataType})
		}
		r.Table([]string{"Table", "Column", "Type"}, rows, "No columns found.")

	case analysis.View[lint.Finding]:
		if r.unavailable(v.Err) {
			return
		}
		r.Findings(v.Items)

	default:
		r.Printf("%v\n", payload)
	}
}

// Findings renders findings one per line, or a success line when empty.
func (r *Renderer) Findings(findings []lint.Finding) {
	if len(findings) == 0 {
		r.Success("No findings.")
		return
	}
	for _, f := range findings {
		if r.EffectiveMode() == ModeMarkdown {
			r.Printf("- **%s** `%s` %s: %s\n", f.Severity, f.RuleID, f.Subject, f.Message)
			continue
		}
		r.Printf("%s %s %s: %s\n",
			r.SeverityStyle(f.Severity).Render(fmt.Sprintf("%-7s", f.Severity)),
			r.styles.Muted.Render(f.RuleID),
			r.styles.Bold.Render(f.Subject),
			f.Message,
		)
	}
}

// SeverityStyle returns the text style for sev.
func (r *Renderer) SeverityStyle(sev lint.Severity) lipgloss.Style {
	switch sev {
	case lint.SeverityError:
		return r.styles.Error
	case lint.SeverityWarning:
		return r.styles.Warning
	case lint.SeverityInfo:
		return r.styles.Info
	default:
		return r.styles.Hint
	}
}

func (r *Renderer) unavailable(err error) bool {
	if err == nil {
		return false
	}
	r.Println(r.styles.Error.Render("Error: ") + err.Error())
	return true
}

func yesNo(b bool) string {
	return strconv.FormatBool(b)
}
