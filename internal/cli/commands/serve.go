package commands

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/leapstack-labs/pbixlint/internal/cli/config"
	"github.com/leapstack-labs/pbixlint/internal/server"
	"github.com/spf13/cobra"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analysis HTTP API",
		Long: `Start the HTTP API.

Endpoints:
  GET  /                     health greeting
  POST /analyze/{kind}       analyze a file on the server's filesystem
  POST /upload_and_analyze   upload a file and run every analysis

The server stops gracefully on SIGINT or SIGTERM.`,
		Example: `  # Listen on the default address (127.0.0.1:5000)
  pbixlint serve

  # Listen on all interfaces
  pbixlint serve --host 0.0.0.0 --port 8080

  # Analyze a file
  curl -X POST localhost:5000/analyze/tables -d '{"file_path": "sales.pbit"}'`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	cmd.Flags().String("host", config.DefaultHost, "Address to bind")
	cmd.Flags().Int("port", config.DefaultPort, "Port to listen on")
	cmd.Flags().String("upload-dir", config.DefaultUploadDir, "Directory for uploaded scratch files")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	sc := cmdCtx.Cfg.Server

	if err := os.MkdirAll(sc.UploadDir, 0o750); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}

	srv := server.NewServer(server.Config{
		Host:              sc.Host,
		Port:              sc.Port,
		UploadDir:         sc.UploadDir,
		MaxUploadBytes:    sc.MaxUploadBytes(),
		AllowedExtensions: sc.AllowedExtensions,
		Loader:            cmdCtx.Loader,
		Analyzer:          cmdCtx.Analyzer,
		Logger:            cmdCtx.Logger,
	})

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !cmdCtx.Renderer.IsStructured() {
		cmdCtx.Renderer.Success("Serving on http://" + net.JoinHostPort(sc.Host, strconv.Itoa(sc.Port)))
		cmdCtx.Renderer.Muted("Press Ctrl-C to stop")
	}
	return srv.Serve(ctx)
}
