package powerquery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/pbixlint/pkg/lint"
	"github.com/leapstack-labs/pbixlint/pkg/pbix"
)

func TestPQ01_LocalFilePath(t *testing.T) {
	tests := []struct {
		name       string
		expression string
		opts       map[string]any
		wantDiags  int
		wantPath   string
	}{
		{
			name:       "file contents on a drive path",
			expression: `File.Contents("C:\data\f.csv")`,
			wantDiags:  1,
			wantPath:   `C:\data\f.csv`,
		},
		{
			name:       "folder files on a drive path",
			expression: `let Source = Folder.Files("D:\exports") in Source`,
			wantDiags:  1,
			wantPath:   `D:\exports`,
		},
		{
			name:       "nested in another function call",
			expression: `Csv.Document(File.Contents("E:\x.csv"), [Delimiter=","])`,
			wantDiags:  1,
			wantPath:   `E:\x.csv`,
		},
		{
			name:       "web source",
			expression: `Web.Contents("https://x")`,
			wantDiags:  0,
		},
		{
			name:       "UNC path",
			expression: `File.Contents("\\server\share\f.csv")`,
			wantDiags:  0,
		},
		{
			name:       "path built from a parameter",
			expression: `File.Contents(Root & "\f.csv")`,
			wantDiags:  0,
		},
		{
			name:       "no closing quote is skipped",
			expression: `File.Contents("C:\data\f.csv`,
			wantDiags:  0,
		},
		{
			name:       "no literal at all",
			expression: `File.Contents(Path)`,
			wantDiags:  0,
		},
		{
			name:       "drive path literal before the reference is ignored",
			expression: `Note = "C:\old", Source = File.Contents("https://x")`,
			wantDiags:  0,
		},
		{
			name:       "custom function list",
			expression: `Excel.Workbook(Binary.Buffer("C:\book.xlsx"))`,
			opts:       map[string]any{"functions": []any{"Binary.Buffer"}},
			wantDiags:  1,
			wantPath:   `C:\book.xlsx`,
		},
		{
			name:       "empty expression",
			expression: "",
			wantDiags:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := &lint.Context{Queries: []pbix.Query{{Name: "Q", Expression: tt.expression}}}
			diags := checkLocalFilePath(ctx, tt.opts)

			assert.Len(t, diags, tt.wantDiags)
			if tt.wantDiags > 0 {
				assert.Equal(t, "PQ01", diags[0].RuleID)
				assert.Equal(t, "Q", diags[0].Subject)
				assert.Contains(t, diags[0].Message, tt.wantPath)
			}
		})
	}
}

func TestLocalPath(t *testing.T) {
	path, ok := LocalPath(`Folder.Files("C:\a") & File.Contents("D:\b")`, DefaultFunctions)
	assert.True(t, ok)
	assert.Equal(t, `C:\a`, path, "earliest reference wins")

	path, ok = LocalPath(`File.Contents("relative.csv")`, DefaultFunctions)
	assert.False(t, ok)
	assert.Equal(t, "relative.csv", path)

	_, ok = LocalPath(`File.Contents("C:\a")`, nil)
	assert.False(t, ok)
}

func TestPQ01_Registered(t *testing.T) {
	rule, ok := lint.GetByID("PQ01")
	require.True(t, ok)
	assert.Equal(t, lint.GroupPowerQuery, rule.Group)
	assert.Equal(t, lint.SeverityWarning, rule.Severity)
}
