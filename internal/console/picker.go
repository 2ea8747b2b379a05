package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ErrNoSelection is returned when the user did not pick a file.
var ErrNoSelection = errors.New("no file selected")

// PathProvider supplies the model file to open.
type PathProvider interface {
	Path(ctx context.Context) (string, error)
}

// ArgPathProvider returns a path given on the command line.
type ArgPathProvider struct {
	Arg string
}

// Path implements PathProvider.
func (p ArgPathProvider) Path(context.Context) (string, error) {
	if strings.TrimSpace(p.Arg) == "" {
		return "", ErrNoSelection
	}
	return p.Arg, nil
}

// PickerPathProvider lets the user browse for a file in the terminal.
type PickerPathProvider struct {
	StartDir   string
	Extensions []string
	Input      io.Reader
	Output     io.Writer
}

// Path implements PathProvider.
func (p PickerPathProvider) Path(ctx context.Context) (string, error) {
	dir := p.StartDir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("resolving start directory: %w", err)
		}
		dir = wd
	}

	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if p.Input != nil {
		opts = append(opts, tea.WithInput(p.Input))
	}
	if p.Output != nil {
		opts = append(opts, tea.WithOutput(p.Output))
	}

	final, err := tea.NewProgram(newPickerModel(dir, p.Extensions), opts...).Run()
	if err != nil {
		return "", fmt.Errorf("file picker: %w", err)
	}
	m, ok := final.(pickerModel)
	if !ok || m.selected == "" {
		return "", ErrNoSelection
	}
	return m.selected, nil
}

var (
	pickerTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	pickerErrStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// pickerModel is the BubbleTea model wrapping the bubbles file picker.
type pickerModel struct {
	picker   filepicker.Model
	selected string
	notice   string
	quitting bool
}

func newPickerModel(dir string, extensions []string) pickerModel {
	fp := filepicker.New()
	fp.CurrentDirectory = dir
	fp.AllowedTypes = extensions
	return pickerModel{picker: fp}
}

// Init initializes the picker model
func (m pickerModel) Init() tea.Cmd {
	return m.picker.Init()
}

// Update handles keyboard input
func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c", "q", "esc":
			m.quitting = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	if didSelect, path := m.picker.DidSelectFile(msg); didSelect {
		m.selected = path
		m.quitting = true
		return m, tea.Quit
	}
	if didSelect, path := m.picker.DidSelectDisabledFile(msg); didSelect {
		m.notice = path + " is not a supported model file"
	}
	return m, cmd
}

// View renders the picker
func (m pickerModel) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder
	b.WriteString(pickerTitleStyle.Render("Select a Power BI model file"))
	b.WriteString("\n")
	if m.notice != "" {
		b.WriteString(pickerErrStyle.Render(m.notice))
		b.WriteString("\n")
	}
	b.WriteString(m.picker.View())
	b.WriteString("\n(esc to cancel)\n")
	return b.String()
}
