package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/leapstack-labs/pbixlint/internal/analysis"
	"github.com/leapstack-labs/pbixlint/pkg/pbix"
)

var (
	errMissingParameter = errors.New("missing parameter")
	errInvalidUpload    = errors.New("invalid upload")
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error string `json:"error"`
}

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errMissingParameter), errors.Is(err, errInvalidUpload):
		return http.StatusBadRequest
	case errors.Is(err, pbix.ErrNotFound), errors.Is(err, analysis.ErrUnknownKind):
		return http.StatusNotFound
	case errors.Is(err, pbix.ErrUnsupportedFileType):
		return http.StatusUnsupportedMediaType
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorBody{Error: err.Error()})
}
