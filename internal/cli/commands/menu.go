package commands

import (
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/leapstack-labs/pbixlint/internal/console"
	"github.com/leapstack-labs/pbixlint/pkg/pbix"
	"github.com/spf13/cobra"
)

// NewMenuCommand creates the menu command.
func NewMenuCommand() *cobra.Command {
	var startDir string
	cmd := &cobra.Command{
		Use:   "menu [file]",
		Short: "Explore a model in an interactive menu",
		Long: `Open a model file and explore it from a numbered menu.

Without a file argument a file picker opens in the current directory
(or --dir). The menu can also print ready-to-paste context blocks for an
AI assistant describing the model schema.`,
		Example: `  # Pick a file interactively
  pbixlint menu

  # Open a specific file
  pbixlint menu sales.pbit`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var provider console.PathProvider = console.PickerPathProvider{
				StartDir:   startDir,
				Extensions: pbix.SupportedExtensions,
				Input:      cmd.InOrStdin(),
				Output:     cmd.ErrOrStderr(),
			}
			if len(args) == 1 {
				provider = console.ArgPathProvider{Arg: args[0]}
			}
			return runMenu(cmd, provider)
		},
	}

	cmd.Flags().StringVar(&startDir, "dir", "", "Directory the file picker starts in")

	return cmd
}

func runMenu(cmd *cobra.Command, provider console.PathProvider) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	path, err := provider.Path(ctx)
	if errors.Is(err, console.ErrNoSelection) {
		cmdCtx.Renderer.Println("No file selected. Exiting.")
		return nil
	}
	if err != nil {
		return err
	}

	model, err := cmdCtx.Loader.Load(ctx, path)
	if err != nil {
		return err
	}

	rl, err := console.NewReadline(historyFile(), cmd.InOrStdin(), cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer func() { _ = rl.Close() }()

	return console.New(console.Config{
		Model:    model,
		Analyzer: cmdCtx.Analyzer,
		Renderer: cmdCtx.Renderer,
		Input:    rl,
		Logger:   cmdCtx.Logger,
	}).Run(ctx)
}

// historyFile returns the menu history location, or "" to disable history.
func historyFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	dir = filepath.Join(dir, "pbixlint")
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return ""
	}
	return filepath.Join(dir, "menu_history")
}
