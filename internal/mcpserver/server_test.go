package mcpserver

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/pbixlint/internal/analysis"
	"github.com/leapstack-labs/pbixlint/internal/testutil"
	"github.com/leapstack-labs/pbixlint/pkg/pbix"
)

func callRequest(args any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{Arguments: args},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok)
	return text.Text
}

func TestNew_RegistersTools(t *testing.T) {
	s := New(Config{Version: "test"})
	require.NotNil(t, s.MCP())
	assert.Equal(t, "pbix_best_practices_dax", ToolName(analysis.KindBestPracticesDAX))
}

func TestAnalysisHandler(t *testing.T) {
	dir := t.TempDir()
	modelPath := testutil.WriteContainer(t, dir, "sales.pbit", testutil.SampleSchema)
	loader := pbix.NewLoader(testutil.NewTestLogger(t))
	a := analysis.New(nil)
	logger := testutil.NewTestLogger(t)

	tests := []struct {
		name      string
		kind      analysis.Kind
		args      any
		wantError string
		wantKey   string
		wantLen   int
	}{
		{name: "tables", kind: analysis.KindTables, args: map[string]interface{}{"file_path": modelPath}, wantKey: "tables", wantLen: 2},
		{name: "query findings", kind: analysis.KindBestPracticesPowerQuery, args: map[string]interface{}{"file_path": modelPath}, wantKey: "power_query_best_practices_findings", wantLen: 1},
		{name: "schema", kind: analysis.KindSchema, args: map[string]interface{}{"file_path": modelPath}, wantKey: "schema", wantLen: 5},
		{name: "missing argument", kind: analysis.KindTables, args: map[string]interface{}{}, wantError: "file_path parameter is required"},
		{name: "bad arguments", kind: analysis.KindTables, args: "nope", wantError: "invalid arguments format"},
		{name: "not found", kind: analysis.KindTables, args: map[string]interface{}{"file_path": filepath.Join(dir, "gone.pbix")}, wantError: "file not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := createAnalysisHandler(tt.kind, loader, a, logger)
			result, err := handler(context.Background(), callRequest(tt.args))
			require.NoError(t, err, "tool failures are results, not protocol errors")

			text := resultText(t, result)
			if tt.wantError != "" {
				assert.True(t, result.IsError)
				assert.Contains(t, text, tt.wantError)
				return
			}

			assert.False(t, result.IsError)
			var body map[string][]map[string]any
			require.NoError(t, json.Unmarshal([]byte(text), &body))
			assert.Len(t, body[tt.wantKey], tt.wantLen)
		})
	}
}

func TestReportHandler(t *testing.T) {
	modelPath := testutil.WriteBIM(t, t.TempDir(), "model.bim", testutil.SampleSchema)
	handler := createReportHandler(pbix.NewLoader(nil), analysis.New(nil), testutil.NewTestLogger(t))

	result, err := handler(context.Background(), callRequest(map[string]interface{}{"file_path": modelPath}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &body))
	for _, kind := range analysis.Kinds() {
		assert.Contains(t, body, kind.ResponseKey())
	}
}
