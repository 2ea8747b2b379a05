package lint

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseSeverity(t *testing.T) {
	tests := []struct {
		in     string
		want   Severity
		wantOK bool
	}{
		{"error", SeverityError, true},
		{"WARNING", SeverityWarning, true},
		{" info ", SeverityInfo, true},
		{"hint", SeverityHint, true},
		{"fatal", SeverityWarning, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseSeverity(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestFinding_Encoding(t *testing.T) {
	f := Finding{RuleID: "DX01", Severity: SeverityInfo, Subject: "M", Message: "msg"}

	data, err := json.Marshal(f)
	require.NoError(t, err)
	assert.JSONEq(t, `{"rule_id":"DX01","severity":"info","subject":"M","message":"msg"}`, string(data))

	var back Finding
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, f, back)

	out, err := yaml.Marshal(f)
	require.NoError(t, err)
	assert.Contains(t, string(out), "severity: info")

	assert.Equal(t, "[DX01] M: msg", f.String())
}

func TestRegistry(t *testing.T) {
	saved := GetAll()
	t.Cleanup(func() {
		Clear()
		for _, r := range saved {
			Register(r)
		}
	})

	Clear()
	assert.Equal(t, 0, Count())

	noop := func(*Context, map[string]any) []Finding { return nil }
	Register(RuleDef{ID: "B02", Group: "g1", Check: noop})
	Register(RuleDef{ID: "A01", Group: "g1", Check: noop})
	Register(RuleDef{ID: "C03", Group: "g2", Check: noop})

	assert.Equal(t, 3, Count())

	var ids []string
	for _, r := range GetAll() {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"A01", "B02", "C03"}, ids)

	group := GetByGroup("g1")
	require.Len(t, group, 2)
	assert.Equal(t, "A01", group[0].ID)

	_, ok := GetByID("Z99")
	assert.False(t, ok)
}

func TestBuildDocURL(t *testing.T) {
	t.Cleanup(ResetDocsBaseURL)

	assert.Equal(t, DefaultDocsBaseURL+"#dx01", BuildDocURL("DX01"))

	SetDocsBaseURL("http://localhost:8000/rules/")
	assert.Equal(t, "http://localhost:8000/rules#pq01", BuildDocURL("PQ01"))
}

func TestGetIntOption(t *testing.T) {
	tests := []struct {
		name string
		opts map[string]any
		want int
	}{
		{name: "nil options", opts: nil, want: 3},
		{name: "missing key", opts: map[string]any{"other": 1}, want: 3},
		{name: "int", opts: map[string]any{"n": 7}, want: 7},
		{name: "json number", opts: map[string]any{"n": float64(8)}, want: 8},
		{name: "yaml number", opts: map[string]any{"n": uint64(9)}, want: 9},
		{name: "env string", opts: map[string]any{"n": " 10 "}, want: 10},
		{name: "bad string", opts: map[string]any{"n": "ten"}, want: 3},
		{name: "wrong type", opts: map[string]any{"n": true}, want: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetIntOption(tt.opts, "n", 3))
		})
	}
}

func TestGetStringSliceOption(t *testing.T) {
	def := []string{"x"}
	tests := []struct {
		name string
		opts map[string]any
		want []string
	}{
		{name: "missing", opts: map[string]any{}, want: def},
		{name: "strings", opts: map[string]any{"s": []string{"a", "b"}}, want: []string{"a", "b"}},
		{name: "decoded list", opts: map[string]any{"s": []any{"a", 1, "b"}}, want: []string{"a", "b"}},
		{name: "env string", opts: map[string]any{"s": "a, b,,c"}, want: []string{"a", "b", "c"}},
		{name: "wrong type", opts: map[string]any{"s": 4}, want: def},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetStringSliceOption(tt.opts, "s", def))
		})
	}
}
