package pbix_test

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/pbixlint/internal/testutil"
	"github.com/leapstack-labs/pbixlint/pkg/pbix"
)

func loadSample(t *testing.T, write func(testing.TB, string, string, string) string, name string) *pbix.Document {
	t.Helper()
	path := write(t, t.TempDir(), name, testutil.SampleSchema)

	m, err := pbix.NewLoader(testutil.NewTestLogger(t)).Load(context.Background(), path)
	require.NoError(t, err)

	doc, ok := m.(*pbix.Document)
	require.True(t, ok, "FileLoader should return *pbix.Document")
	assert.Equal(t, path, doc.Path())
	return doc
}

func TestLoad_Formats(t *testing.T) {
	tests := []struct {
		name       string
		write      func(testing.TB, string, string, string) string
		file       string
		wantFormat string
	}{
		{name: "pbit container", write: testutil.WriteContainer, file: "sales.pbit", wantFormat: "pbit"},
		{name: "pbix with schema entry", write: testutil.WriteContainer, file: "sales.pbix", wantFormat: "pbix"},
		{name: "bim file", write: testutil.WriteBIM, file: "model.bim", wantFormat: "bim"},
		{name: "upper case extension", write: testutil.WriteBIM, file: "MODEL.JSON", wantFormat: "json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := loadSample(t, tt.write, tt.file)
			assert.Equal(t, tt.wantFormat, doc.Format())
			assert.Equal(t, 1567, doc.CompatibilityLevel())

			tables, err := doc.Tables()
			require.NoError(t, err)
			assert.Equal(t, []pbix.Table{{Name: "Sales"}, {Name: "Customer", Hidden: true}}, tables)
		})
	}
}

func TestLoad_Views(t *testing.T) {
	doc := loadSample(t, testutil.WriteContainer, "sales.pbit")

	t.Run("measures join multi-line expressions", func(t *testing.T) {
		measures, err := doc.Measures()
		require.NoError(t, err)
		require.Len(t, measures, 2)
		assert.Equal(t, "Total Sales", measures[0].Name)
		assert.Equal(t, "Sales", measures[0].Table)
		assert.Equal(t, "Region Filter", measures[1].Name)
		assert.Equal(t, "Filters", measures[1].DisplayFolder)
		assert.Contains(t, measures[1].Expression, "\n  Sales[Region] IN {")
	})

	t.Run("relationships default to active", func(t *testing.T) {
		rels, err := doc.Relationships()
		require.NoError(t, err)
		require.Len(t, rels, 2)
		assert.True(t, rels[0].IsActive)
		assert.False(t, rels[1].IsActive)
		assert.Equal(t, "bothDirections", rels[1].CrossFilter)
		assert.Equal(t, "Sales[CustomerID] -> Customer[ID]", rels[0].String())
	})

	t.Run("queries cover partitions and shared expressions", func(t *testing.T) {
		queries, err := doc.Queries()
		require.NoError(t, err)
		require.Len(t, queries, 3)
		assert.Equal(t, "Sales", queries[0].Name)
		assert.Equal(t, pbix.QueryKindPartition, queries[0].Kind)
		assert.Contains(t, queries[0].Expression, `File.Contents("C:\data\sales.csv")`)
		assert.Equal(t, "Customer", queries[1].Name)
		assert.Equal(t, "DataRoot", queries[2].Name)
		assert.Equal(t, pbix.QueryKindExpression, queries[2].Kind)
	})

	t.Run("schema skips row number columns", func(t *testing.T) {
		cols, err := doc.Schema()
		require.NoError(t, err)
		require.Len(t, cols, 5)
		assert.Equal(t, pbix.Column{Table: "Sales", Name: "Amount", DataType: "decimal"}, cols[0])
	})

	t.Run("returned slices are copies", func(t *testing.T) {
		tables, err := doc.Tables()
		require.NoError(t, err)
		tables[0].Name = "changed"

		again, err := doc.Tables()
		require.NoError(t, err)
		assert.Equal(t, "Sales", again[0].Name)
	})
}

func TestLoad_MissingSections(t *testing.T) {
	tests := []struct {
		name        string
		schema      string
		wantTables  bool
		wantRels    bool
		queriesOK   bool
		wantQueries int
	}{
		{
			name:   "no model object",
			schema: `{"name": "empty"}`,
		},
		{
			name:       "tables without relationships",
			schema:     `{"model": {"tables": [{"name": "T"}]}}`,
			wantTables: true,
			queriesOK:  true,
		},
		{
			name:       "model written at top level",
			schema:     `{"tables": [], "relationships": []}`,
			wantTables: true,
			wantRels:   true,
			queriesOK:  true,
		},
		{
			name:        "non-M expressions are skipped",
			schema:      `{"model": {"tables": [], "expressions": [{"name": "a", "kind": "m", "expression": "1"}, {"name": "b", "kind": "dax", "expression": "2"}]}}`,
			wantTables:  true,
			queriesOK:   true,
			wantQueries: 1,
		},
		{
			name:        "shared expressions without tables",
			schema:      `{"model": {"expressions": [{"name": "Source", "expression": ["let", "  x = 1", "in", "  x"]}]}}`,
			queriesOK:   true,
			wantQueries: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := testutil.WriteBIM(t, t.TempDir(), "model.bim", tt.schema)
			m, err := pbix.NewLoader(nil).Load(context.Background(), path)
			require.NoError(t, err)
			doc := m.(*pbix.Document)

			_, err = doc.Tables()
			assert.Equal(t, !tt.wantTables, errors.Is(err, pbix.ErrAttributeUnavailable))
			_, err = doc.Measures()
			assert.Equal(t, !tt.wantTables, errors.Is(err, pbix.ErrAttributeUnavailable))
			_, err = doc.Relationships()
			assert.Equal(t, !tt.wantRels, errors.Is(err, pbix.ErrAttributeUnavailable))

			queries, err := doc.Queries()
			assert.Equal(t, !tt.queriesOK, errors.Is(err, pbix.ErrAttributeUnavailable))
			if tt.queriesOK {
				require.NoError(t, err)
				assert.Len(t, queries, tt.wantQueries)
				assert.NotNil(t, queries, "present views are never nil")
			}
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	loader := pbix.NewLoader(testutil.NewTestLogger(t))

	tests := []struct {
		name    string
		path    string
		wantErr error
	}{
		{
			name:    "missing file",
			path:    filepath.Join(dir, "nope.pbix"),
			wantErr: pbix.ErrNotFound,
		},
		{
			name:    "unsupported extension",
			path:    testutil.WriteBIM(t, dir, "notes.txt", "hello"),
			wantErr: pbix.ErrUnsupportedFileType,
		},
		{
			name:    "not a zip",
			path:    testutil.WriteBIM(t, dir, "broken.pbix", "definitely not a zip"),
			wantErr: pbix.ErrModelLoad,
		},
		{
			name:    "compressed data model only",
			path:    testutil.WriteZip(t, dir, "vertipaq.pbix", map[string][]byte{"DataModel": {0x01, 0x02}}),
			wantErr: pbix.ErrModelLoad,
		},
		{
			name:    "container without model",
			path:    testutil.WriteZip(t, dir, "report.pbix", map[string][]byte{"Report/Layout": []byte("{}")}),
			wantErr: pbix.ErrModelLoad,
		},
		{
			name:    "invalid json",
			path:    testutil.WriteBIM(t, dir, "bad.bim", "{"),
			wantErr: pbix.ErrModelLoad,
		},
		{
			name:    "directory",
			path:    dir,
			wantErr: pbix.ErrModelLoad,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := loader.Load(ctx, tt.path)
			require.Error(t, err)
			assert.Nil(t, m)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("missing file also matches fs.ErrNotExist", func(t *testing.T) {
		_, err := loader.Load(ctx, filepath.Join(dir, "gone.bim"))
		assert.ErrorIs(t, err, fs.ErrNotExist)
	})

	t.Run("size limit", func(t *testing.T) {
		path := testutil.WriteBIM(t, dir, "big.bim", testutil.SampleSchema)
		_, err := pbix.NewLoader(nil, pbix.WithMaxSchemaBytes(16)).Load(ctx, path)
		assert.ErrorIs(t, err, pbix.ErrModelLoad)
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := loader.Load(cctx, filepath.Join(dir, "any.bim"))
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestLoad_UTF16WithBOM(t *testing.T) {
	schema := `{"model": {"tables": [{"name": "Ünïcode"}]}}`
	// FF FE followed by UTF-16LE code units
	data := []byte{0xFF, 0xFE}
	for _, r := range schema {
		data = append(data, byte(r), byte(r>>8))
	}
	path := testutil.WriteZip(t, t.TempDir(), "bom.pbit", map[string][]byte{"DataModelSchema": data})

	m, err := pbix.NewLoader(nil).Load(context.Background(), path)
	require.NoError(t, err)
	tables, err := m.(pbix.TableSource).Tables()
	require.NoError(t, err)
	assert.Equal(t, "Ünïcode", tables[0].Name)
}
