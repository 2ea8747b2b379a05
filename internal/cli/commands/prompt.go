package commands

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/pbixlint/internal/analysis"
	"github.com/leapstack-labs/pbixlint/internal/prompt"
	"github.com/leapstack-labs/pbixlint/pkg/pbix"
	"github.com/spf13/cobra"
)

// PromptOutput is the structured form of a generated context block.
type PromptOutput struct {
	Filename string `json:"filename" yaml:"filename"`
	Task     string `json:"task" yaml:"task"`
	Table    string `json:"table,omitempty" yaml:"table,omitempty"`
	Prompt   string `json:"prompt" yaml:"prompt"`
}

// NewPromptCommand creates the prompt command.
func NewPromptCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Print AI assistant context for a model",
		Long: `Print a context block describing the model schema and a request, ready to
paste into an AI assistant that writes DAX.`,
	}

	cmd.AddCommand(newMeasurePromptCommand())
	cmd.AddCommand(newColumnPromptCommand())

	return cmd
}

func newMeasurePromptCommand() *cobra.Command {
	var request string
	cmd := &cobra.Command{
		Use:   "measure <file>",
		Short: "Context for writing a DAX measure",
		Example: `  pbixlint prompt measure sales.pbit --request "year over year sales growth"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrompt(cmd, args[0], "measure", "", func(cols []pbix.Column) string {
				return prompt.MeasureContext(request, cols)
			})
		},
	}
	cmd.Flags().StringVarP(&request, "request", "r", "", "What the measure should calculate")
	_ = cmd.MarkFlagRequired("request")
	return cmd
}

func newColumnPromptCommand() *cobra.Command {
	var request, table string
	cmd := &cobra.Command{
		Use:   "column <file>",
		Short: "Context for writing a DAX calculated column",
		Example: `  pbixlint prompt column sales.pbit --table Sales --request "margin percentage"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrompt(cmd, args[0], "column", table, func(cols []pbix.Column) string {
				return prompt.ColumnContext(table, request, cols)
			})
		},
	}
	cmd.Flags().StringVarP(&request, "request", "r", "", "What the column should calculate")
	cmd.Flags().StringVarP(&table, "table", "t", "", "Table that receives the column")
	_ = cmd.MarkFlagRequired("request")
	_ = cmd.MarkFlagRequired("table")
	return cmd
}

func runPrompt(cmd *cobra.Command, path, task, table string, build func([]pbix.Column) string) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	model, err := cmdCtx.Loader.Load(commandContext(cmd), path)
	if err != nil {
		return err
	}

	if table != "" {
		if err := checkTable(model, table); err != nil {
			return err
		}
	}

	// An unreadable schema still produces a block, with the NoSchema line.
	schema := analysis.Schema(model)
	if !schema.OK() {
		cmdCtx.Logger.Debug("schema unavailable", "path", path, "error", schema.Err)
	}
	text := build(schema.Items)

	r := cmdCtx.Renderer
	if r.IsStructured() {
		return r.Structured(PromptOutput{Filename: path, Task: task, Table: table, Prompt: text})
	}
	r.Println(strings.TrimRight(text, "\n"))
	return nil
}

// checkTable fails when the model lists its tables and table is not one of them.
func checkTable(model pbix.Model, table string) error {
	tables := analysis.Tables(model)
	if !tables.OK() {
		return nil
	}
	names := make([]string, 0, len(tables.Items))
	for _, t := range tables.Items {
		if t.Name == table {
			return nil
		}
		names = append(names, t.Name)
	}
	return fmt.Errorf("table %q not found (available: %s)", table, strings.Join(names, ", "))
}
