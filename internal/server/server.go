// Package server exposes the model analyses over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/pbixlint/internal/analysis"
	"github.com/leapstack-labs/pbixlint/pkg/pbix"
)

// Default limits.
const (
	DefaultMaxUploadBytes int64 = 200 << 20
	shutdownTimeout             = 5 * time.Second
)

// Config holds configuration for the HTTP server.
type Config struct {
	Host              string
	Port              int
	UploadDir         string
	MaxUploadBytes    int64
	AllowedExtensions []string
	Loader            pbix.Loader
	Analyzer          *analysis.Analyzer
	Logger            *slog.Logger
}

// Server serves the analysis API.
type Server struct {
	addr     string
	handlers *Handlers
	logger   *slog.Logger
}

// NewServer creates a new server instance. Missing collaborators fall back
// to the file loader and an analyzer with every rule enabled.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{
		addr:     net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		handlers: NewHandlers(cfg, logger),
		logger:   logger,
	}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.Compress(5),
	)
	SetupRoutes(r, s.handlers)
	return r
}

// Serve starts the server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("starting API server", "addr", "http://"+s.addr)

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.Handler(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		s.logger.Debug("shutting down API server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}
