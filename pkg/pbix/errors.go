package pbix

import "errors"

// Sentinel errors returned by the loader and by model accessors.
// Callers classify with errors.Is; messages are wrapped with context.
var (
	// ErrNotFound is returned when the model file does not exist.
	ErrNotFound = errors.New("file not found")

	// ErrUnsupportedFileType is returned for extensions the loader cannot read.
	ErrUnsupportedFileType = errors.New("unsupported file type")

	// ErrModelLoad is returned when the container or its metadata is corrupt or unreadable.
	ErrModelLoad = errors.New("failed to load model")

	// ErrAttributeUnavailable is returned by a view accessor when the loaded
	// model does not carry that view.
	ErrAttributeUnavailable = errors.New("attribute unavailable")
)
