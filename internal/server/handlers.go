package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/leapstack-labs/pbixlint/internal/analysis"
	"github.com/leapstack-labs/pbixlint/pkg/pbix"
)

const (
	// Greeting is the body of GET /.
	Greeting = "Power BI model analyzer API is running."

	maxJSONBody     = 1 << 20
	multipartMemory = 32 << 20
	uploadField     = "file"
)

// AnalyzeRequest is the body of POST /analyze/{kind}.
type AnalyzeRequest struct {
	FilePath string `json:"file_path"`
}

// UploadResponse is the body of a successful POST /upload_and_analyze.
type UploadResponse struct {
	Filename string           `json:"filename"`
	Analysis *analysis.Report `json:"analysis"`
}

// Handlers provides the HTTP handlers of the API.
type Handlers struct {
	loader         pbix.Loader
	analyzer       *analysis.Analyzer
	uploadDir      string
	maxUploadBytes int64
	allowed        []string
	logger         *slog.Logger
}

// NewHandlers creates the handlers from the server config.
func NewHandlers(cfg Config, logger *slog.Logger) *Handlers {
	h := &Handlers{
		loader:         cfg.Loader,
		analyzer:       cfg.Analyzer,
		uploadDir:      cfg.UploadDir,
		maxUploadBytes: cfg.MaxUploadBytes,
		logger:         logger,
	}
	if h.loader == nil {
		h.loader = pbix.NewLoader(logger)
	}
	if h.analyzer == nil {
		h.analyzer = analysis.New(nil)
	}
	if h.uploadDir == "" {
		h.uploadDir = os.TempDir()
	}
	if h.maxUploadBytes <= 0 {
		h.maxUploadBytes = DefaultMaxUploadBytes
	}
	for _, ext := range cfg.AllowedExtensions {
		h.allowed = append(h.allowed, strings.ToLower(ext))
	}
	if len(h.allowed) == 0 {
		h.allowed = []string{".pbix"}
	}
	return h
}

// Index answers the health check.
func (h *Handlers) Index(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, Greeting)
}

// Analyze runs one analysis against a file on the server's filesystem.
func (h *Handlers) Analyze(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With("request_id", middleware.GetReqID(r.Context()))

	kind, err := analysis.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	var req AnalyzeRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("%w: request body must be JSON with a file_path", errMissingParameter))
		return
	}
	if strings.TrimSpace(req.FilePath) == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("%w: file_path", errMissingParameter))
		return
	}

	model, err := h.loader.Load(r.Context(), req.FilePath)
	if err != nil {
		status := statusFor(err)
		logger.Warn("model load failed", "path", req.FilePath, "status", status, "error", err)
		writeError(w, status, err)
		return
	}

	payload, err := h.analyzer.Run(model, kind)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	logger.Debug("analysis complete", "kind", kind, "path", req.FilePath)
	writeJSON(w, http.StatusOK, map[string]any{kind.ResponseKey(): payload})
}

// UploadAndAnalyze stores the uploaded file in a scratch location, runs
// every analysis and removes the scratch file on every path.
func (h *Handlers) UploadAndAnalyze(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With("request_id", middleware.GetReqID(r.Context()))

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Errorf("upload exceeds %d bytes", tooLarge.Limit))
			return
		}
		writeError(w, http.StatusBadRequest, fmt.Errorf("%w: %v", errInvalidUpload, err))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("%w: no %q part in the request", errInvalidUpload, uploadField))
		return
	}
	defer func() { _ = file.Close() }()

	filename := filepath.Base(filepath.Clean("/" + header.Filename))
	if filename == "/" || filename == "." {
		writeError(w, http.StatusBadRequest, fmt.Errorf("%w: no file selected", errInvalidUpload))
		return
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !slices.Contains(h.allowed, ext) {
		writeError(w, http.StatusBadRequest, fmt.Errorf("%w: file type %q is not allowed (allowed: %s)", errInvalidUpload, ext, strings.Join(h.allowed, ", ")))
		return
	}

	scratch, err := h.saveScratch(file, ext)
	if scratch != "" {
		defer func() {
			if rmErr := os.Remove(scratch); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
				logger.Warn("failed to remove scratch file", "path", scratch, "error", rmErr)
			}
		}()
	}
	if err != nil {
		logger.Error("failed to store upload", "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	model, err := h.loader.Load(r.Context(), scratch)
	if err != nil {
		logger.Warn("uploaded model failed to load", "filename", filename, "error", err)
		writeError(w, http.StatusInternalServerError, fmt.Errorf("processing %s: %w", filename, err))
		return
	}

	logger.Debug("upload analyzed", "filename", filename, "scratch", scratch)
	writeJSON(w, http.StatusOK, UploadResponse{
		Filename: filename,
		Analysis: h.analyzer.All(model),
	})
}

// saveScratch copies src to <uploadDir>/<uuid><ext>. The returned path is
// set whenever the file was created, even if the copy failed.
func (h *Handlers) saveScratch(src io.Reader, ext string) (string, error) {
	if err := os.MkdirAll(h.uploadDir, 0o750); err != nil {
		return "", fmt.Errorf("creating upload directory: %w", err)
	}

	path := filepath.Join(h.uploadDir, uuid.NewString()+ext)
	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600) //nolint:gosec // path is built from a random name
	if err != nil {
		return "", fmt.Errorf("creating scratch file: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return path, fmt.Errorf("writing scratch file: %w", err)
	}
	if err := dst.Close(); err != nil {
		return path, fmt.Errorf("writing scratch file: %w", err)
	}
	return path, nil
}
