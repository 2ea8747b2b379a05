package commands

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/leapstack-labs/pbixlint/internal/analysis"
	"github.com/leapstack-labs/pbixlint/internal/cli/config"
	"github.com/leapstack-labs/pbixlint/internal/cli/output"
	"github.com/leapstack-labs/pbixlint/pkg/pbix"
	"github.com/spf13/cobra"
)

// errFindings is returned by analyze --fail-on-findings.
var errFindings = errors.New("best-practice findings reported")

// rendererKey is used to store the renderer in context.
type rendererKey struct{}

// RendererKey returns the context key for the output renderer.
func RendererKey() interface{} {
	return rendererKey{}
}

// RendererFromContext returns the renderer stored by the root command, or a
// new auto-mode renderer on stdout.
func RendererFromContext(ctx context.Context) *output.Renderer {
	if ctx != nil {
		if r, ok := ctx.Value(rendererKey{}).(*output.Renderer); ok {
			return r
		}
	}
	return output.NewRenderer(os.Stdout, os.Stderr, output.ModeAuto)
}

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
	Loader   pbix.Loader
	Analyzer *analysis.Analyzer
}

// NewCommandContext creates a CommandContext with a model loader and an
// analyzer configured from the lint settings.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	cmdCtx := NewCommandContextWithoutAnalyzer(cmd)

	lintCfg, err := cmdCtx.Cfg.LintSettings()
	if err != nil {
		return nil, err
	}

	cmdCtx.Loader = pbix.NewLoader(cmdCtx.Logger, pbix.WithMaxSchemaBytes(cmdCtx.Cfg.MaxSchemaBytes()))
	cmdCtx.Analyzer = analysis.New(lintCfg)
	return cmdCtx, nil
}

// NewCommandContextWithoutAnalyzer creates a CommandContext with only config,
// logger and renderer. Useful for commands that never open a model.
func NewCommandContextWithoutAnalyzer(cmd *cobra.Command) *CommandContext {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg := config.FromContext(ctx)
	r, ok := ctx.Value(rendererKey{}).(*output.Renderer)
	if !ok {
		mode, _ := output.ParseMode(cfg.OutputFormat)
		r = output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)
	}

	return &CommandContext{
		Cfg:      cfg,
		Logger:   config.GetLogger(ctx),
		Renderer: r,
	}
}

// overrideFormat returns a renderer for a command-local --format flag, or r
// when the flag is empty.
func overrideFormat(cmd *cobra.Command, r *output.Renderer, format string) (*output.Renderer, error) {
	if format == "" {
		return r, nil
	}
	mode, err := output.ParseMode(format)
	if err != nil {
		return nil, err
	}
	return output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode), nil
}
