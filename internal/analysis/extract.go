package analysis

import (
	"errors"

	"github.com/leapstack-labs/pbixlint/pkg/pbix"
)

// Tables reads the tables view.
func Tables(m pbix.Model) View[pbix.Table] {
	src, ok := m.(pbix.TableSource)
	if !ok {
		return unavailable[pbix.Table]("tables")
	}
	return read(src.Tables, "tables")
}

// Measures reads the DAX measures view.
func Measures(m pbix.Model) View[pbix.Measure] {
	src, ok := m.(pbix.MeasureSource)
	if !ok {
		return unavailable[pbix.Measure]("dax_measures")
	}
	return read(src.Measures, "dax_measures")
}

// Relationships reads the relationships view.
func Relationships(m pbix.Model) View[pbix.Relationship] {
	src, ok := m.(pbix.RelationshipSource)
	if !ok {
		return unavailable[pbix.Relationship]("relationships")
	}
	return read(src.Relationships, "relationships")
}

// Queries reads the Power Query view.
func Queries(m pbix.Model) View[pbix.Query] {
	src, ok := m.(pbix.QuerySource)
	if !ok {
		return unavailable[pbix.Query]("power_query")
	}
	return read(src.Queries, "power_query")
}

// Schema reads every column of every table.
func Schema(m pbix.Model) View[pbix.Column] {
	src, ok := m.(pbix.SchemaSource)
	if !ok {
		return unavailable[pbix.Column]("schema")
	}
	return read(src.Schema, "schema")
}

// read converts accessor errors into an unavailable view. Any accessor error
// is treated as a missing view so nothing escapes extraction.
func read[T any](get func() ([]T, error), view string) View[T] {
	s, err := get()
	if err != nil {
		if errors.Is(err, pbix.ErrAttributeUnavailable) {
			return unavailable[T](view)
		}
		return View[T]{Err: err}
	}
	return items(s)
}
