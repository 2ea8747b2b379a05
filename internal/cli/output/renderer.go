package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/muesli/termenv"
	"gopkg.in/yaml.v3"
)

// Renderer writes command output in the selected mode.
type Renderer struct {
	out    io.Writer
	errOut io.Writer
	mode   Mode
	isTTY  bool
	styles *Styles
}

// NewRenderer creates a renderer for out. Diagnostics go to errOut.
func NewRenderer(out, errOut io.Writer, mode Mode) *Renderer {
	return NewRendererWithTTY(out, errOut, IsTerminal(out), mode)
}

// NewRendererWithTTY creates a renderer with an explicit terminal state.
// Colours are still disabled when out is not a real terminal.
func NewRendererWithTTY(out, errOut io.Writer, isTTY bool, mode Mode) *Renderer {
	lr := lipgloss.NewRenderer(out)
	if !isTTY || !IsTerminal(out) {
		lr.SetColorProfile(termenv.Ascii)
	}

	return &Renderer{
		out:    out,
		errOut: errOut,
		mode:   mode,
		isTTY:  isTTY,
		styles: NewStyles(lr),
	}
}

// EffectiveMode resolves ModeAuto against the terminal.
func (r *Renderer) EffectiveMode() Mode {
	switch r.mode {
	case ModeAuto, "":
		if r.isTTY {
			return ModeText
		}
		return ModeMarkdown
	default:
		return r.mode
	}
}

// IsStructured reports whether the effective mode is JSON or YAML.
func (r *Renderer) IsStructured() bool {
	m := r.EffectiveMode()
	return m == ModeJSON || m == ModeYAML
}

// Styles returns the text-mode palette.
func (r *Renderer) Styles() *Styles { return r.styles }

// Writer returns the main output writer.
func (r *Renderer) Writer() io.Writer { return r.out }

// ErrWriter returns the diagnostics writer.
func (r *Renderer) ErrWriter() io.Writer { return r.errOut }

// Println writes a line to the main output.
func (r *Renderer) Println(a ...any) {
	_, _ = fmt.Fprintln(r.out, a...)
}

// Printf writes formatted output.
func (r *Renderer) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(r.out, format, a...)
}

// Header writes a level-1 or level-2 heading in the effective mode.
func (r *Renderer) Header(level int, text string) {
	if r.EffectiveMode() == ModeMarkdown {
		r.Println(FormatHeader(level, text))
		r.Println("")
		return
	}
	style := r.styles.Header2
	if level <= 1 {
		style = r.styles.Header1
	}
	r.Println(style.Render(text))
}

// Muted writes a de-emphasized line.
func (r *Renderer) Muted(text string) {
	if r.EffectiveMode() == ModeMarkdown {
		r.Println("_" + text + "_")
		return
	}
	r.Println(r.styles.Muted.Render(text))
}

// Success writes a success message to the main output.
func (r *Renderer) Success(text string) {
	r.Println(r.styles.Success.Render(text))
}

// Warning writes a warning to the diagnostics writer.
func (r *Renderer) Warning(text string) {
	_, _ = fmt.Fprintln(r.errOut, r.styles.Warning.Render("Warning: "+text))
}

// Error writes an error to the diagnostics writer.
func (r *Renderer) Error(err error) {
	_, _ = fmt.Fprintln(r.errOut, r.styles.Error.Render("Error: ")+err.Error())
}

// JSON writes v as indented JSON.
func (r *Renderer) JSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// YAML writes v as YAML.
func (r *Renderer) YAML(v any) error {
	enc := yaml.NewEncoder(r.out)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// Structured writes v as JSON or YAML depending on the effective mode.
// It falls back to JSON for the human modes.
func (r *Renderer) Structured(v any) error {
	if r.EffectiveMode() == ModeYAML {
		return r.YAML(v)
	}
	return r.JSON(v)
}

// Table writes rows as a go-pretty table in text mode or a pipe table in
// markdown mode. An empty row set prints the empty message instead.
func (r *Renderer) Table(header []string, rows [][]string, empty string) {
	if len(rows) == 0 {
		r.Muted(empty)
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.out)

	headerRow := make(table.Row, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	t.AppendHeader(headerRow)
	for _, row := range rows {
		tr := make(table.Row, len(row))
		for i, cell := range row {
			tr[i] = cell
		}
		t.AppendRow(tr)
	}

	if r.EffectiveMode() == ModeMarkdown {
		t.RenderMarkdown()
		r.Println("")
		return
	}
	t.SetStyle(table.StyleLight)
	t.Render()
}

// Block writes a multi-line code block, fenced in markdown mode.
func (r *Renderer) Block(lang, text string) {
	text = strings.TrimRight(text, "\n")
	if r.EffectiveMode() == ModeMarkdown {
		r.Println("```" + lang)
		r.Println(text)
		r.Println("```")
		return
	}
	for _, line := range strings.Split(text, "\n") {
		r.Println("    " + line)
	}
}
