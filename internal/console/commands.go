package console

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/leapstack-labs/pbixlint/internal/analysis"
	"github.com/leapstack-labs/pbixlint/internal/prompt"
	"github.com/leapstack-labs/pbixlint/pkg/pbix"
)

// Command is a menu key.
type Command string

// Menu commands.
const (
	CmdTables             Command = "1"
	CmdMeasures           Command = "2"
	CmdRelationships      Command = "3"
	CmdPowerQuery         Command = "4"
	CmdDAXPractices       Command = "5"
	CmdPowerQueryPractice Command = "6"
	CmdSchema             Command = "t"
	CmdMeasurePrompt      Command = "g"
	CmdColumnPrompt       Command = "c"
	CmdAll                Command = "a"
	CmdHelp               Command = "h"
	CmdExit               Command = "s"
	CmdQuit               Command = "q"
)

var errInvalidSelection = errors.New("invalid selection")

// Analysis is the result of a single analysis action.
type Analysis struct {
	Kind    analysis.Kind
	Payload any
}

// Prompt is the result of the AI context actions.
type Prompt struct {
	Title string
	Text  string
}

// Help is the result of CmdHelp.
type Help struct{}

type actionFunc func(ctx context.Context, c *Console) (any, error)

type action struct {
	cmd     Command
	section string
	label   string
	run     actionFunc
}

func analysisAction(kind analysis.Kind) actionFunc {
	return func(_ context.Context, c *Console) (any, error) {
		payload, err := c.analyzer.Run(c.model, kind)
		if err != nil {
			return nil, err
		}
		return Analysis{Kind: kind, Payload: payload}, nil
	}
}

// actions is the dispatch table, in menu order.
var actions = []action{
	{CmdTables, "Inspect", "Tables", analysisAction(analysis.KindTables)},
	{CmdMeasures, "Inspect", "DAX measures", analysisAction(analysis.KindMeasures)},
	{CmdRelationships, "Inspect", "Relationships", analysisAction(analysis.KindRelationships)},
	{CmdPowerQuery, "Inspect", "Power Query (M) scripts", analysisAction(analysis.KindPowerQuery)},
	{CmdSchema, "Inspect", "Column schema", analysisAction(analysis.KindSchema)},
	{CmdDAXPractices, "Analyze", "DAX best practices", analysisAction(analysis.KindBestPracticesDAX)},
	{CmdPowerQueryPractice, "Analyze", "Power Query best practices", analysisAction(analysis.KindBestPracticesPowerQuery)},
	{CmdAll, "Analyze", "Run every analysis", runAll},
	{CmdMeasurePrompt, "Generate with AI", "DAX measure context", measurePrompt},
	{CmdColumnPrompt, "Generate with AI", "Calculated column context", columnPrompt},
	{CmdHelp, "Other", "Help", func(context.Context, *Console) (any, error) { return Help{}, nil }},
	{CmdExit, "Other", "Exit", nil},
}

func lookup(cmd Command) (action, bool) {
	if cmd == CmdQuit {
		cmd = CmdExit
	}
	for _, a := range actions {
		if a.cmd == cmd {
			return a, true
		}
	}
	return action{}, false
}

func runAll(_ context.Context, c *Console) (any, error) {
	return c.analyzer.All(c.model), nil
}

func measurePrompt(_ context.Context, c *Console) (any, error) {
	request, err := c.ask("Describe the DAX measure you need (e.g. 'Sum of sales where severity is High'): ")
	if err != nil {
		return nil, err
	}
	return Prompt{
		Title: "DAX measure context",
		Text:  prompt.MeasureContext(request, c.schema()),
	}, nil
}

func columnPrompt(_ context.Context, c *Console) (any, error) {
	tables := analysis.Tables(c.model)
	if !tables.OK() {
		return nil, tables.Err
	}
	if tables.Len() == 0 {
		return nil, errors.New("no tables found in the model")
	}

	c.renderer.Println("Tables in the model:")
	for i, t := range tables.Items {
		c.renderer.Printf("%d. %s\n", i+1, t.Name)
	}
	answer, err := c.ask("Table number for the new column: ")
	if err != nil {
		return nil, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(answer))
	if err != nil || n < 1 || n > tables.Len() {
		return nil, fmt.Errorf("%w: %q", errInvalidSelection, answer)
	}
	target := tables.Items[n-1].Name

	request, err := c.ask(fmt.Sprintf("Describe the calculated column for '%s' (e.g. 'First and last name joined'): ", target))
	if err != nil {
		return nil, err
	}
	return Prompt{
		Title: "Calculated column context",
		Text:  prompt.ColumnContext(target, request, c.schema()),
	}, nil
}

// schema returns the columns for prompt building; an unreadable schema
// yields an empty listing.
func (c *Console) schema() []pbix.Column {
	if v := analysis.Schema(c.model); v.OK() {
		return v.Items
	}
	return nil
}
