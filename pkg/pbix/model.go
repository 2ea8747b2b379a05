package pbix

import "fmt"

// Model is a read-only handle over a loaded model file.
// Views are read through the capability interfaces below.
type Model interface {
	// Path returns the file the model was loaded from.
	Path() string
}

// TableSource exposes the tables of a model.
type TableSource interface {
	Tables() ([]Table, error)
}

// MeasureSource exposes the DAX measures of a model.
type MeasureSource interface {
	Measures() ([]Measure, error)
}

// RelationshipSource exposes the relationships of a model.
type RelationshipSource interface {
	Relationships() ([]Relationship, error)
}

// QuerySource exposes the Power Query (M) expressions of a model.
type QuerySource interface {
	Queries() ([]Query, error)
}

// SchemaSource exposes every column of every table.
type SchemaSource interface {
	Schema() ([]Column, error)
}

// Table is a model table.
type Table struct {
	Name   string `json:"name" yaml:"name"`
	Hidden bool   `json:"hidden,omitempty" yaml:"hidden,omitempty"`
}

// Measure is a named DAX formula attached to a table.
type Measure struct {
	Table         string `json:"table" yaml:"table"`
	Name          string `json:"name" yaml:"name"`
	Expression    string `json:"expression" yaml:"expression"`
	DisplayFolder string `json:"display_folder,omitempty" yaml:"display_folder,omitempty"`
	Description   string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Relationship links a column of one table to a column of another.
type Relationship struct {
	FromTable   string `json:"from_table" yaml:"from_table"`
	FromColumn  string `json:"from_column" yaml:"from_column"`
	ToTable     string `json:"to_table" yaml:"to_table"`
	ToColumn    string `json:"to_column" yaml:"to_column"`
	IsActive    bool   `json:"is_active" yaml:"is_active"`
	CrossFilter string `json:"cross_filter,omitempty" yaml:"cross_filter,omitempty"`
}

// String renders the relationship as "From[Col] -> To[Col]".
func (r Relationship) String() string {
	return fmt.Sprintf("%s[%s] -> %s[%s]", r.FromTable, r.FromColumn, r.ToTable, r.ToColumn)
}

// QueryKind tells where an M expression lives in the model.
type QueryKind string

// Query kinds.
const (
	// QueryKindPartition is the M source of a table partition.
	QueryKindPartition QueryKind = "partition"
	// QueryKindExpression is a shared query or parameter.
	QueryKindExpression QueryKind = "expression"
)

// Query is a named Power Query (M) script.
type Query struct {
	Name       string    `json:"name" yaml:"name"`
	Expression string    `json:"expression" yaml:"expression"`
	Kind       QueryKind `json:"kind" yaml:"kind"`
}

// Column is one column of the schema view.
type Column struct {
	Table    string `json:"table" yaml:"table"`
	Name     string `json:"name" yaml:"name"`
	DataType string `json:"data_type,omitempty" yaml:"data_type,omitempty"`
}

// Document is the Model produced by FileLoader.
// It implements every capability interface.
type Document struct {
	path               string
	format             string
	compatibilityLevel int

	// nil slices with a false flag mean the section was absent from the file
	hasTables        bool
	hasRelationships bool
	hasQueries       bool

	tables        []Table
	measures      []Measure
	relationships []Relationship
	queries       []Query
	columns       []Column
}

var (
	_ TableSource        = (*Document)(nil)
	_ MeasureSource      = (*Document)(nil)
	_ RelationshipSource = (*Document)(nil)
	_ QuerySource        = (*Document)(nil)
	_ SchemaSource       = (*Document)(nil)
)

// Path implements Model.
func (d *Document) Path() string { return d.path }

// Format returns the container format the document was read from ("pbit", "pbix", "bim").
func (d *Document) Format() string { return d.format }

// CompatibilityLevel returns the TMSL compatibility level, or 0 when absent.
func (d *Document) CompatibilityLevel() int { return d.compatibilityLevel }

// Tables implements TableSource.
func (d *Document) Tables() ([]Table, error) {
	if !d.hasTables {
		return nil, fmt.Errorf("tables: %w", ErrAttributeUnavailable)
	}
	return clone(d.tables), nil
}

// Measures implements MeasureSource.
func (d *Document) Measures() ([]Measure, error) {
	if !d.hasTables {
		return nil, fmt.Errorf("measures: %w", ErrAttributeUnavailable)
	}
	return clone(d.measures), nil
}

// Relationships implements RelationshipSource.
func (d *Document) Relationships() ([]Relationship, error) {
	if !d.hasRelationships {
		return nil, fmt.Errorf("relationships: %w", ErrAttributeUnavailable)
	}
	return clone(d.relationships), nil
}

// Queries implements QuerySource.
func (d *Document) Queries() ([]Query, error) {
	if !d.hasQueries {
		return nil, fmt.Errorf("queries: %w", ErrAttributeUnavailable)
	}
	return clone(d.queries), nil
}

// Schema implements SchemaSource.
func (d *Document) Schema() ([]Column, error) {
	if !d.hasTables {
		return nil, fmt.Errorf("schema: %w", ErrAttributeUnavailable)
	}
	return clone(d.columns), nil
}

// clone keeps callers from mutating the document's slices.
func clone[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	out := make([]T, len(s))
	copy(out, s)
	return out
}
