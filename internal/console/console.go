package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"

	"github.com/leapstack-labs/pbixlint/internal/analysis"
	"github.com/leapstack-labs/pbixlint/internal/cli/output"
	"github.com/leapstack-labs/pbixlint/pkg/pbix"
)

const menuPrompt = "pbixlint> "

// LineReader reads user input one line at a time. *readline.Instance
// satisfies it.
type LineReader interface {
	Readline() (string, error)
	SetPrompt(prompt string)
}

// Config holds configuration for a Console.
type Config struct {
	Model    pbix.Model
	Analyzer *analysis.Analyzer
	Renderer *output.Renderer
	Input    LineReader
	Logger   *slog.Logger
}

// Console is an interactive session over one loaded model.
type Console struct {
	model    pbix.Model
	analyzer *analysis.Analyzer
	renderer *output.Renderer
	input    LineReader
	logger   *slog.Logger
}

// New creates a Console.
func New(cfg Config) *Console {
	c := &Console{
		model:    cfg.Model,
		analyzer: cfg.Analyzer,
		renderer: cfg.Renderer,
		input:    cfg.Input,
		logger:   cfg.Logger,
	}
	if c.analyzer == nil {
		c.analyzer = analysis.New(nil)
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	return c
}

// NewReadline creates the terminal line reader used by the menu.
func NewReadline(historyFile string, stdin io.Reader, stdout io.Writer) (*readline.Instance, error) {
	in, ok := stdin.(io.ReadCloser)
	if !ok {
		in = io.NopCloser(stdin)
	}
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          menuPrompt,
		HistoryFile:     historyFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		Stdin:           in,
		Stdout:          stdout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize menu: %w", err)
	}
	return rl, nil
}

// Run shows the menu and dispatches commands until the user exits,
// interrupts, or ctx is cancelled.
func (c *Console) Run(ctx context.Context) error {
	c.renderer.Header(1, "Power BI model assistant")
	c.renderer.Muted("Model: " + filepath.Base(c.model.Path()))
	c.renderer.Println("")
	c.printMenu()

	for {
		if ctx.Err() != nil {
			return nil
		}

		c.input.SetPrompt(menuPrompt)
		line, err := c.input.Readline()
		if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
			c.renderer.Println("Interrupted. Exiting.")
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}

		cmd := Command(strings.ToLower(strings.TrimSpace(line)))
		if cmd == "" {
			continue
		}
		if cmd == CmdExit || cmd == CmdQuit {
			c.renderer.Println("Goodbye.")
			return nil
		}

		result, err := c.Execute(ctx, cmd)
		switch {
		case errors.Is(err, readline.ErrInterrupt), errors.Is(err, io.EOF):
			c.renderer.Println("Interrupted. Exiting.")
			return nil
		case err != nil:
			c.logger.Debug("menu action failed", "command", string(cmd), "error", err)
			c.renderer.Error(err)
			continue
		}

		if err := c.render(result); err != nil {
			c.renderer.Error(err)
		}
	}
}

// Execute runs one command and returns its result. A panic in the action is
// converted into an error so the session survives it.
func (c *Console) Execute(ctx context.Context, cmd Command) (result any, err error) {
	a, ok := lookup(cmd)
	if !ok || a.run == nil {
		return nil, fmt.Errorf("%w: %q (type h for help)", errInvalidSelection, string(cmd))
	}

	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("unexpected error in %q: %v", a.label, r)
		}
	}()
	return a.run(ctx, c)
}

func (c *Console) render(result any) error {
	switch v := result.(type) {
	case *analysis.Report:
		return c.renderer.Report(c.model.Path(), v)
	case Prompt:
		c.renderer.Println("")
		c.renderer.Header(2, v.Title)
		c.renderer.Println("Copy the block below into your AI assistant:")
		c.renderer.Println("")
		c.renderer.Println(strings.TrimRight(v.Text, "\n"))
		c.renderer.Println("")
		return nil
	case Help:
		c.printMenu()
		return nil
	case Analysis:
		return c.renderer.Result(v.Kind, v.Payload)
	default:
		return fmt.Errorf("cannot display %T", result)
	}
}

func (c *Console) printMenu() {
	styles := c.renderer.Styles()
	section := ""
	for _, a := range actions {
		if a.section != section {
			section = a.section
			c.renderer.Println(styles.Bold.Render("--- " + section + " ---"))
		}
		c.renderer.Printf("  %s. %s\n", styles.Key.Render(string(a.cmd)), a.label)
	}
	c.renderer.Println("")
}

// ask prompts for a single line of input.
func (c *Console) ask(question string) (string, error) {
	c.input.SetPrompt(question)
	defer c.input.SetPrompt(menuPrompt)
	line, err := c.input.Readline()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
