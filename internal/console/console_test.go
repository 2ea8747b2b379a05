package console

import (
	"bytes"
	"context"
	"io"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/chzyer/readline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/pbixlint/internal/analysis"
	"github.com/leapstack-labs/pbixlint/internal/cli/output"
	"github.com/leapstack-labs/pbixlint/internal/testutil"
	"github.com/leapstack-labs/pbixlint/pkg/pbix"
)

// scriptedInput replays lines, then reports EOF.
type scriptedInput struct {
	lines   []string
	prompts []string
	err     error
}

func (s *scriptedInput) Readline() (string, error) {
	if len(s.lines) == 0 {
		if s.err != nil {
			return "", s.err
		}
		return "", io.EOF
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

func (s *scriptedInput) SetPrompt(p string) { s.prompts = append(s.prompts, p) }

// panicModel panics on every view.
type panicModel struct{}

func (panicModel) Path() string                 { return "panic.bim" }
func (panicModel) Tables() ([]pbix.Table, error) { panic("boom") }

func newTestConsole(t *testing.T, model pbix.Model, lines ...string) (*Console, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var out, errOut bytes.Buffer
	c := New(Config{
		Model:    model,
		Renderer: output.NewRenderer(&out, &errOut, output.ModeText),
		Input:    &scriptedInput{lines: lines},
		Logger:   testutil.NewTestLogger(t),
	})
	return c, &out, &errOut
}

func loadSample(t *testing.T) pbix.Model {
	t.Helper()
	path := testutil.WriteBIM(t, t.TempDir(), "sales.bim", testutil.SampleSchema)
	m, err := pbix.NewLoader(nil).Load(context.Background(), path)
	require.NoError(t, err)
	return m
}

func TestExecute_Dispatch(t *testing.T) {
	c, _, _ := newTestConsole(t, loadSample(t))
	ctx := context.Background()

	tests := []struct {
		cmd      Command
		wantKind analysis.Kind
	}{
		{CmdTables, analysis.KindTables},
		{CmdMeasures, analysis.KindMeasures},
		{CmdRelationships, analysis.KindRelationships},
		{CmdPowerQuery, analysis.KindPowerQuery},
		{CmdDAXPractices, analysis.KindBestPracticesDAX},
		{CmdPowerQueryPractice, analysis.KindBestPracticesPowerQuery},
		{CmdSchema, analysis.KindSchema},
	}
	for _, tt := range tests {
		t.Run(string(tt.cmd), func(t *testing.T) {
			result, err := c.Execute(ctx, tt.cmd)
			require.NoError(t, err)
			got, ok := result.(Analysis)
			require.True(t, ok)
			assert.Equal(t, tt.wantKind, got.Kind)
		})
	}

	t.Run("all", func(t *testing.T) {
		result, err := c.Execute(ctx, CmdAll)
		require.NoError(t, err)
		report, ok := result.(*analysis.Report)
		require.True(t, ok)
		assert.Equal(t, 2, report.FindingCount())
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := c.Execute(ctx, Command("9"))
		assert.ErrorIs(t, err, errInvalidSelection)
	})

	t.Run("exit is handled by the loop", func(t *testing.T) {
		_, err := c.Execute(ctx, CmdExit)
		assert.Error(t, err)
	})
}

func TestExecute_RecoversPanic(t *testing.T) {
	c, _, _ := newTestConsole(t, panicModel{})
	_, err := c.Execute(context.Background(), CmdTables)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestRun(t *testing.T) {
	t.Run("exit command", func(t *testing.T) {
		c, out, _ := newTestConsole(t, loadSample(t), "1", "", "5", "s", "2")
		require.NoError(t, c.Run(context.Background()))

		text := out.String()
		assert.Contains(t, text, "1. Tables")
		assert.Contains(t, text, "Customer")
		assert.Contains(t, text, "Region Filter")
		assert.Contains(t, text, "Goodbye.")
		assert.NotContains(t, text, "SUM(Sales[Amount])", "input after exit is not read")
	})

	t.Run("errors do not end the session", func(t *testing.T) {
		c, out, errOut := newTestConsole(t, panicModel{}, "1", "x", "2", "q")
		require.NoError(t, c.Run(context.Background()))

		assert.Contains(t, errOut.String(), "boom")
		assert.Contains(t, errOut.String(), "invalid selection")
		assert.Contains(t, out.String(), "could not read \"dax_measures\"", "missing capabilities render as errors")
		assert.Contains(t, out.String(), "Goodbye.")
	})

	t.Run("eof exits", func(t *testing.T) {
		c, out, _ := newTestConsole(t, loadSample(t), "3")
		require.NoError(t, c.Run(context.Background()))
		assert.Contains(t, out.String(), "Sales[CustomerID]")
		assert.Contains(t, out.String(), "Exiting.")
	})

	t.Run("interrupt exits", func(t *testing.T) {
		var out bytes.Buffer
		c := New(Config{
			Model:    loadSample(t),
			Renderer: output.NewRenderer(&out, io.Discard, output.ModeText),
			Input:    &scriptedInput{err: readline.ErrInterrupt},
		})
		require.NoError(t, c.Run(context.Background()))
		assert.Contains(t, out.String(), "Exiting.")
	})
}

func TestPrompts(t *testing.T) {
	t.Run("measure", func(t *testing.T) {
		c, out, _ := newTestConsole(t, loadSample(t), "g", "Sum of sales in the north", "s")
		require.NoError(t, c.Run(context.Background()))

		text := out.String()
		assert.Contains(t, text, "**Task:** Generate a DAX measure.")
		assert.Contains(t, text, "**User request:** Sum of sales in the north")
		assert.Contains(t, text, "Table: 'Sales'")
	})

	t.Run("column", func(t *testing.T) {
		c, out, _ := newTestConsole(t, loadSample(t), "c", "2", "Full name", "s")
		require.NoError(t, c.Run(context.Background()))

		text := out.String()
		assert.Contains(t, text, "2. Customer")
		assert.Contains(t, text, "**Target table:** Customer")
		assert.Contains(t, text, "**User request:** Full name")
	})

	t.Run("column with invalid table", func(t *testing.T) {
		c, _, errOut := newTestConsole(t, loadSample(t), "c", "7", "s")
		require.NoError(t, c.Run(context.Background()))
		assert.Contains(t, errOut.String(), "invalid selection")
	})
}

func TestArgPathProvider(t *testing.T) {
	path, err := ArgPathProvider{Arg: "model.pbit"}.Path(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "model.pbit", path)

	_, err = ArgPathProvider{}.Path(context.Background())
	assert.ErrorIs(t, err, ErrNoSelection)
}

func TestPickerModel_Cancel(t *testing.T) {
	m := newPickerModel(t.TempDir(), []string{".pbix"})
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})

	require.NotNil(t, cmd)
	pm := updated.(pickerModel)
	assert.Empty(t, pm.selected)
	assert.True(t, pm.quitting)
	assert.Empty(t, pm.View())
}
