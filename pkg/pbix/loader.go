package pbix

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/unicode"
)

// DefaultMaxSchemaBytes caps the size of the decoded model metadata.
const DefaultMaxSchemaBytes int64 = 64 << 20

// Container entry names inside .pbix/.pbit archives.
const (
	schemaEntry    = "DataModelSchema"
	dataModelEntry = "DataModel"
)

// SupportedExtensions lists the file extensions the FileLoader can read.
var SupportedExtensions = []string{".pbix", ".pbit", ".bim", ".json"}

// Loader opens model files.
type Loader interface {
	Load(ctx context.Context, path string) (Model, error)
}

// FileLoader loads models from the local filesystem.
type FileLoader struct {
	logger         *slog.Logger
	maxSchemaBytes int64
}

// LoaderOption configures a FileLoader.
type LoaderOption func(*FileLoader)

// WithMaxSchemaBytes overrides DefaultMaxSchemaBytes.
func WithMaxSchemaBytes(n int64) LoaderOption {
	return func(l *FileLoader) {
		if n > 0 {
			l.maxSchemaBytes = n
		}
	}
}

// NewLoader creates a FileLoader. A nil logger discards log output.
func NewLoader(logger *slog.Logger, opts ...LoaderOption) *FileLoader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	l := &FileLoader{
		logger:         logger,
		maxSchemaBytes: DefaultMaxSchemaBytes,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load implements Loader.
func (l *FileLoader) Load(ctx context.Context, path string) (Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrModelLoad, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrModelLoad, path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	var raw []byte
	switch ext {
	case ".pbix", ".pbit":
		raw, err = l.readContainer(path)
	case ".bim", ".json":
		raw, err = l.readPlain(path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFileType, ext)
	}
	if err != nil {
		return nil, err
	}

	text, err := decodeText(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: decoding model metadata: %v", ErrModelLoad, err)
	}

	doc, err := parseSchema(text, path, strings.TrimPrefix(ext, "."))
	if err != nil {
		return nil, err
	}

	l.logger.Debug("loaded model",
		"path", path,
		"format", doc.format,
		"tables", len(doc.tables),
		"measures", len(doc.measures),
		"relationships", len(doc.relationships),
		"queries", len(doc.queries),
	)
	return doc, nil
}

// readContainer extracts the DataModelSchema entry from a ZIP container.
func (l *FileLoader) readContainer(path string) ([]byte, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w: not a valid Power BI container: %v", ErrModelLoad, err)
	}
	defer func() { _ = zr.Close() }()

	var hasDataModel bool
	for _, f := range zr.File {
		switch f.Name {
		case schemaEntry:
			rc, err := f.Open()
			if err != nil {
				return nil, fmt.Errorf("%w: opening %s: %v", ErrModelLoad, schemaEntry, err)
			}
			defer func() { _ = rc.Close() }()
			return l.readLimited(rc)
		case dataModelEntry:
			hasDataModel = true
		}
	}

	if hasDataModel {
		return nil, fmt.Errorf("%w: %s only contains the compressed data model; save it as a .pbit template to analyze it", ErrModelLoad, filepath.Base(path))
	}
	return nil, fmt.Errorf("%w: %s has no model metadata", ErrModelLoad, filepath.Base(path))
}

func (l *FileLoader) readPlain(path string) ([]byte, error) {
	f, err := os.Open(path) //nolint:gosec // path is chosen by the caller
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrModelLoad, err)
	}
	defer func() { _ = f.Close() }()
	return l.readLimited(f)
}

func (l *FileLoader) readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, l.maxSchemaBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: reading model metadata: %v", ErrModelLoad, err)
	}
	if int64(len(data)) > l.maxSchemaBytes {
		return nil, fmt.Errorf("%w: model metadata exceeds %d bytes", ErrModelLoad, l.maxSchemaBytes)
	}
	return data, nil
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// decodeText normalizes the metadata to UTF-8. Power BI writes
// DataModelSchema as UTF-16LE, usually without a BOM.
func decodeText(data []byte) ([]byte, error) {
	switch {
	case bytes.HasPrefix(data, []byte{0xFF, 0xFE}), bytes.HasPrefix(data, []byte{0xFE, 0xFF}):
		return unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder().Bytes(data)
	case len(data) >= 2 && data[0] != 0 && data[1] == 0:
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder().Bytes(data)
	default:
		return bytes.TrimPrefix(data, utf8BOM), nil
	}
}
