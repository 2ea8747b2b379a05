package pbix

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// tmslDatabase is the top level of a model.bim / DataModelSchema document.
// Some exporters write the model object directly, so the model fields are
// also accepted at the top level.
type tmslDatabase struct {
	Name               string     `json:"name"`
	CompatibilityLevel int        `json:"compatibilityLevel"`
	Model              *tmslModel `json:"model"`

	tmslModel
}

type tmslModel struct {
	Tables        *[]tmslTable        `json:"tables"`
	Relationships *[]tmslRelationship `json:"relationships"`
	Expressions   *[]tmslExpression   `json:"expressions"`
}

type tmslTable struct {
	Name       string          `json:"name"`
	IsHidden   bool            `json:"isHidden"`
	Columns    []tmslColumn    `json:"columns"`
	Measures   []tmslMeasure   `json:"measures"`
	Partitions []tmslPartition `json:"partitions"`
}

type tmslColumn struct {
	Name     string `json:"name"`
	DataType string `json:"dataType"`
	Type     string `json:"type"`
}

type tmslMeasure struct {
	Name          string    `json:"name"`
	Expression    multiline `json:"expression"`
	DisplayFolder string    `json:"displayFolder"`
	Description   multiline `json:"description"`
}

type tmslPartition struct {
	Name   string `json:"name"`
	Source struct {
		Type       string    `json:"type"`
		Expression multiline `json:"expression"`
	} `json:"source"`
}

type tmslRelationship struct {
	Name                   string `json:"name"`
	FromTable              string `json:"fromTable"`
	FromColumn             string `json:"fromColumn"`
	ToTable                string `json:"toTable"`
	ToColumn               string `json:"toColumn"`
	IsActive               *bool  `json:"isActive"`
	CrossFilteringBehavior string `json:"crossFilteringBehavior"`
}

type tmslExpression struct {
	Name       string    `json:"name"`
	Kind       string    `json:"kind"`
	Expression multiline `json:"expression"`
}

// multiline accepts either a JSON string or an array of lines.
type multiline string

func (m *multiline) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '[' {
		var lines []string
		if err := json.Unmarshal(b, &lines); err != nil {
			return err
		}
		*m = multiline(strings.Join(lines, "\n"))
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*m = multiline(s)
	return nil
}

// parseSchema decodes a TMSL document into a Document.
func parseSchema(data []byte, path, format string) (*Document, error) {
	var db tmslDatabase
	if err := json.Unmarshal(data, &db); err != nil {
		return nil, fmt.Errorf("%w: invalid model metadata: %v", ErrModelLoad, err)
	}

	model := &db.tmslModel
	if db.Model != nil {
		model = db.Model
	}

	doc := &Document{
		path:               path,
		format:             format,
		compatibilityLevel: db.CompatibilityLevel,
	}

	if model.Tables != nil {
		doc.hasTables = true
		doc.hasQueries = true
		for _, t := range *model.Tables {
			doc.addTable(t)
		}
	}

	if model.Expressions != nil {
		doc.hasQueries = true
		for _, e := range *model.Expressions {
			if e.Kind != "" && !strings.EqualFold(e.Kind, "m") {
				continue
			}
			doc.queries = append(doc.queries, Query{
				Name:       e.Name,
				Expression: string(e.Expression),
				Kind:       QueryKindExpression,
			})
		}
	}

	if model.Relationships != nil {
		doc.hasRelationships = true
		for _, r := range *model.Relationships {
			active := true
			if r.IsActive != nil {
				active = *r.IsActive
			}
			doc.relationships = append(doc.relationships, Relationship{
				FromTable:   r.FromTable,
				FromColumn:  r.FromColumn,
				ToTable:     r.ToTable,
				ToColumn:    r.ToColumn,
				IsActive:    active,
				CrossFilter: r.CrossFilteringBehavior,
			})
		}
	}

	return doc, nil
}

func (d *Document) addTable(t tmslTable) {
	d.tables = append(d.tables, Table{Name: t.Name, Hidden: t.IsHidden})

	for _, c := range t.Columns {
		// RowNumber columns are engine internals, not authored columns
		if strings.EqualFold(c.Type, "rowNumber") {
			continue
		}
		d.columns = append(d.columns, Column{Table: t.Name, Name: c.Name, DataType: c.DataType})
	}

	for _, m := range t.Measures {
		d.measures = append(d.measures, Measure{
			Table:         t.Name,
			Name:          m.Name,
			Expression:    string(m.Expression),
			DisplayFolder: m.DisplayFolder,
			Description:   string(m.Description),
		})
	}

	var mParts []tmslPartition
	for _, p := range t.Partitions {
		if strings.EqualFold(p.Source.Type, "m") {
			mParts = append(mParts, p)
		}
	}
	for _, p := range mParts {
		name := t.Name
		if len(mParts) > 1 {
			name = t.Name + "/" + p.Name
		}
		d.queries = append(d.queries, Query{
			Name:       name,
			Expression: string(p.Source.Expression),
			Kind:       QueryKindPartition,
		})
	}
}
