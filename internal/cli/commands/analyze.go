package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/leapstack-labs/pbixlint/internal/analysis"
	"github.com/leapstack-labs/pbixlint/internal/watch"
	"github.com/leapstack-labs/pbixlint/pkg/lint"
	"github.com/spf13/cobra"
)

// AnalyzeOptions holds options for the analyze command.
type AnalyzeOptions struct {
	Kinds          []string      // Analyses to run; empty runs the full report
	Watch          bool          // Re-run when the file changes
	Debounce       time.Duration // Watch debounce
	FailOnFindings bool          // Exit non-zero when the scanners report anything
}

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand() *cobra.Command {
	opts := &AnalyzeOptions{}
	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Analyze a Power BI model file",
		Long: `Load a model file and print one or more analyses.

Without --kind every report analysis runs: tables, DAX measures, relationships,
Power Query scripts and both best-practice scanners.

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format
  - JSON/YAML: Machine-readable format`,
		Example: `  # Full report
  pbixlint analyze sales.pbit

  # Only the measures and the DAX scanner
  pbixlint analyze sales.pbit --kind dax_measures --kind best_practices_dax

  # Re-run on every save
  pbixlint analyze model.bim --watch

  # Fail CI when the scanners report anything
  pbixlint analyze sales.pbit -o json --fail-on-findings`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.Kinds, "kind", "k", nil, "Analysis to run (repeatable)")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Re-run when the file changes")
	cmd.Flags().DurationVar(&opts.Debounce, "debounce", watch.DefaultDebounce, "Delay before re-running after a change")
	cmd.Flags().BoolVar(&opts.FailOnFindings, "fail-on-findings", false, "Exit with status 1 when findings are reported")

	_ = cmd.RegisterFlagCompletionFunc("kind", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		names := make([]string, 0, len(analysis.AllKinds()))
		for _, k := range analysis.AllKinds() {
			names = append(names, string(k))
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runAnalyze(cmd *cobra.Command, path string, opts *AnalyzeOptions) error {
	kinds, err := parseKinds(opts.Kinds)
	if err != nil {
		return err
	}

	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	findings, err := analyzeOnce(ctx, cmdCtx, path, kinds)
	if err != nil {
		return err
	}

	if opts.Watch {
		w := watch.New(watch.Config{Path: path, Debounce: opts.Debounce, Logger: cmdCtx.Logger})
		if !cmdCtx.Renderer.IsStructured() {
			cmdCtx.Renderer.Muted(fmt.Sprintf("Watching %s for changes (Ctrl-C to stop)", path))
		}
		return w.Run(ctx, func() {
			if _, err := analyzeOnce(ctx, cmdCtx, path, kinds); err != nil {
				cmdCtx.Renderer.Error(err)
			}
		})
	}

	if opts.FailOnFindings && findings > 0 {
		return errFindings
	}
	return nil
}

// analyzeOnce loads the model and renders the requested analyses. It
// returns the number of scanner findings printed.
func analyzeOnce(ctx context.Context, cmdCtx *CommandContext, path string, kinds []analysis.Kind) (int, error) {
	model, err := cmdCtx.Loader.Load(ctx, path)
	if err != nil {
		return 0, err
	}

	r := cmdCtx.Renderer
	if len(kinds) == 0 {
		report := cmdCtx.Analyzer.All(model)
		return report.FindingCount(), r.Report(path, report)
	}

	// Several kinds in a structured mode are merged into one document.
	merged := make(map[string]any, len(kinds))
	findings := 0
	for _, kind := range kinds {
		payload, err := cmdCtx.Analyzer.Run(model, kind)
		if err != nil {
			return findings, err
		}
		if v, ok := payload.(analysis.View[lint.Finding]); ok {
			findings += v.Len()
		}
		if r.IsStructured() {
			merged[kind.ResponseKey()] = payload
			continue
		}
		if err := r.Result(kind, payload); err != nil {
			return findings, err
		}
	}

	if r.IsStructured() {
		return findings, r.Structured(merged)
	}
	return findings, nil
}

func parseKinds(names []string) ([]analysis.Kind, error) {
	kinds := make([]analysis.Kind, 0, len(names))
	seen := make(map[analysis.Kind]bool, len(names))
	for _, name := range names {
		kind, err := analysis.ParseKind(name)
		if err != nil {
			return nil, err
		}
		if seen[kind] {
			continue
		}
		seen[kind] = true
		kinds = append(kinds, kind)
	}
	return kinds, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
