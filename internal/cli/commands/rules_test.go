package commands

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/pbixlint/pkg/lint"
)

func executeRules(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRulesCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestRulesCommand_List(t *testing.T) {
	out, err := executeRules(t)
	require.NoError(t, err)

	// A buffer is not a terminal, so auto mode renders markdown.
	assert.Contains(t, out, "# Best-Practice Rules")
	assert.Contains(t, out, "## DAX Rules")
	assert.Contains(t, out, "## Power Query Rules")
	assert.Contains(t, out, "**DX01**")
	assert.Contains(t, out, "**PQ01**")
}

func TestRulesCommand_ShowRule(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantOut []string
	}{
		{
			name:    "markdown",
			args:    []string{"DX01"},
			wantOut: []string{"# DX01 - dax.in-list-literal", "```dax"},
		},
		{
			name:    "lower case id",
			args:    []string{"pq01"},
			wantOut: []string{"# PQ01 - powerquery.local-file-path", "```powerquery"},
		},
		{
			name:    "text",
			args:    []string{"DX01", "--format", "text"},
			wantOut: []string{"DX01 - dax.in-list-literal", "Description"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := executeRules(t, tt.args...)
			require.NoError(t, err)
			for _, want := range tt.wantOut {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestRulesCommand_NotFound(t *testing.T) {
	_, err := executeRules(t, "INVALID99")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestRulesCommand_InvalidFormat(t *testing.T) {
	_, err := executeRules(t, "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid output mode")
}

func TestRulesCommand_JSON(t *testing.T) {
	out, err := executeRules(t, "--format", "json")
	require.NoError(t, err)

	var result RulesOutput
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, 1, result.Count.DAX)
	assert.Equal(t, 1, result.Count.PowerQuery)
	assert.Equal(t, 2, result.Count.Total)
	assert.Equal(t, "DX01", result.Rules[0].ID)
	assert.Equal(t, lint.SeverityInfo, result.Rules[0].DefaultSeverity)
}

func TestRulesCommand_YAMLGroupFilter(t *testing.T) {
	out, err := executeRules(t, "--format", "yaml", "--group", "powerquery")
	require.NoError(t, err)

	var result RulesOutput
	require.NoError(t, yaml.Unmarshal([]byte(out), &result))
	require.Len(t, result.Rules, 1)
	assert.Equal(t, "PQ01", result.Rules[0].ID)
	assert.Equal(t, 0, result.Count.DAX)
}

func TestRulesCommand_Verbose(t *testing.T) {
	out, err := executeRules(t, "--verbose", "--format", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "Best-Practice Rules (2)")
	assert.Contains(t, out, "Why:")
}

func TestFilterRules(t *testing.T) {
	rules := []lint.RuleInfo{
		{ID: "DX01", Group: lint.GroupDAX},
		{ID: "PQ01", Group: lint.GroupPowerQuery},
	}

	tests := []struct {
		name  string
		group string
		want  []string
	}{
		{name: "no filter", group: "", want: []string{"DX01", "PQ01"}},
		{name: "dax", group: "dax", want: []string{"DX01"}},
		{name: "case insensitive", group: "PowerQuery", want: []string{"PQ01"}},
		{name: "unknown group", group: "sql", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, r := range filterRules(rules, tt.group) {
				got = append(got, r.ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTruncateOneLine(t *testing.T) {
	assert.Equal(t, "short", truncateOneLine("short", 10))
	assert.Equal(t, "a b", truncateOneLine("a\nb", 10))
	assert.Equal(t, "abcdefg...", truncateOneLine("abcdefghijklmnop", 10))
}
