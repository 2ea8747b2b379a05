package analysis

import (
	"encoding/json"
	"fmt"
)

// AttributeUnavailableError reports a view the loaded model does not carry.
type AttributeUnavailableError struct {
	View string
}

func (e *AttributeUnavailableError) Error() string {
	return fmt.Sprintf("could not read %q from the model", e.View)
}

// View is the result of one extraction: the records, or the reason they are
// missing. It encodes as the record array, or as a single error record.
type View[T any] struct {
	Items []T
	Err   error
}

func items[T any](s []T) View[T] {
	if s == nil {
		s = []T{}
	}
	return View[T]{Items: s}
}

func unavailable[T any](view string) View[T] {
	return View[T]{Err: &AttributeUnavailableError{View: view}}
}

// OK reports whether the view was read.
func (v View[T]) OK() bool { return v.Err == nil }

// Len returns the number of records.
func (v View[T]) Len() int { return len(v.Items) }

// errorRecord is the shape a failed view takes on the wire.
type errorRecord struct {
	Error string `json:"error" yaml:"error"`
}

func (v View[T]) wire() any {
	if v.Err != nil {
		return []errorRecord{{Error: v.Err.Error()}}
	}
	if v.Items == nil {
		return []T{}
	}
	return v.Items
}

// MarshalJSON implements json.Marshaler.
func (v View[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.wire())
}

// MarshalYAML implements yaml.Marshaler.
func (v View[T]) MarshalYAML() (any, error) {
	return v.wire(), nil
}
