package testutil

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"
)

// SampleSchema is a small TMSL document used across tests.
//
// It holds two flagged items: the "Region Filter" measure (IN list with four
// commas) and the Sales partition (File.Contents on a local drive path).
const SampleSchema = `{
  "name": "SalesModel",
  "compatibilityLevel": 1567,
  "model": {
    "culture": "en-US",
    "tables": [
      {
        "name": "Sales",
        "columns": [
          {"name": "RowNumber-2662979B", "dataType": "int64", "type": "rowNumber"},
          {"name": "Amount", "dataType": "decimal"},
          {"name": "Region", "dataType": "string"},
          {"name": "CustomerID", "dataType": "int64"}
        ],
        "measures": [
          {"name": "Total Sales", "expression": "SUM(Sales[Amount])"},
          {
            "name": "Region Filter",
            "expression": ["CALCULATE(", "  [Total Sales],", "  Sales[Region] IN {\"N\",\"S\",\"E\",\"W\",\"C\"}", ")"],
            "displayFolder": "Filters"
          }
        ],
        "partitions": [
          {
            "name": "Sales-1",
            "source": {"type": "m", "expression": "let\n    Source = Csv.Document(File.Contents(\"C:\\data\\sales.csv\"))\nin\n    Source"}
          }
        ]
      },
      {
        "name": "Customer",
        "isHidden": true,
        "columns": [
          {"name": "ID", "dataType": "int64"},
          {"name": "Name", "dataType": "string"}
        ],
        "partitions": [
          {
            "name": "Customer-1",
            "source": {"type": "m", "expression": "let Source = Json.Document(Web.Contents(\"https://example.com/customers\")) in Source"}
          }
        ]
      }
    ],
    "relationships": [
      {"name": "r1", "fromTable": "Sales", "fromColumn": "CustomerID", "toTable": "Customer", "toColumn": "ID"},
      {"name": "r2", "fromTable": "Sales", "fromColumn": "Region", "toTable": "Customer", "toColumn": "Name", "isActive": false, "crossFilteringBehavior": "bothDirections"}
    ],
    "expressions": [
      {"name": "DataRoot", "kind": "m", "expression": "\"D:\\shared\" meta [IsParameterQuery=true]"}
    ]
  }
}`

// WriteBIM writes schema as a UTF-8 .bim file and returns its path.
func WriteBIM(t testing.TB, dir, name, schema string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(schema), 0o600))
	return path
}

// WriteContainer writes a ZIP container holding schema as a UTF-16LE
// DataModelSchema entry, the way Power BI Desktop saves templates.
func WriteContainer(t testing.TB, dir, name, schema string) string {
	t.Helper()
	encoded, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder().Bytes([]byte(schema))
	require.NoError(t, err)
	return WriteZip(t, dir, name, map[string][]byte{
		"Version":         []byte("1.28"),
		"DataModelSchema": encoded,
	})
}

// WriteZip writes an arbitrary ZIP archive and returns its path.
func WriteZip(t testing.TB, dir, name string, entries map[string][]byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path) //nolint:gosec // test fixture path
	require.NoError(t, err)
	defer func() { require.NoError(t, f.Close()) }()

	zw := zip.NewWriter(f)
	for entryName, data := range entries {
		w, err := zw.Create(entryName)
		require.NoError(t, err)
		_, err = w.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return path
}
