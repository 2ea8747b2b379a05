package analysis_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/pbixlint/internal/analysis"
	"github.com/leapstack-labs/pbixlint/internal/testutil"
	"github.com/leapstack-labs/pbixlint/pkg/lint"
	"github.com/leapstack-labs/pbixlint/pkg/pbix"
)

// pathOnly is a model with no capabilities.
type pathOnly struct{}

func (pathOnly) Path() string { return "bare" }

func loadSample(t *testing.T, schema string) pbix.Model {
	t.Helper()
	path := testutil.WriteBIM(t, t.TempDir(), "model.bim", schema)
	m, err := pbix.NewLoader(testutil.NewTestLogger(t)).Load(context.Background(), path)
	require.NoError(t, err)
	return m
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    analysis.Kind
		wantErr bool
	}{
		{in: "tables", want: analysis.KindTables},
		{in: "DAX_MEASURES", want: analysis.KindMeasures},
		{in: "best-practices-dax", want: analysis.KindBestPracticesDAX},
		{in: " power_query ", want: analysis.KindPowerQuery},
		{in: "schema", want: analysis.KindSchema},
		{in: "columns", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := analysis.ParseKind(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, analysis.ErrUnknownKind)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKind_ResponseKey(t *testing.T) {
	want := map[analysis.Kind]string{
		analysis.KindTables:                  "tables",
		analysis.KindMeasures:                "dax_measures",
		analysis.KindRelationships:           "relationships",
		analysis.KindPowerQuery:              "power_queries",
		analysis.KindBestPracticesDAX:        "dax_best_practices_findings",
		analysis.KindBestPracticesPowerQuery: "power_query_best_practices_findings",
	}
	kinds := analysis.Kinds()
	require.Len(t, kinds, len(want))
	for _, k := range kinds {
		assert.Equal(t, want[k], k.ResponseKey(), k)
	}
	assert.Equal(t, "schema", analysis.KindSchema.ResponseKey())
	assert.NotContains(t, kinds, analysis.KindSchema)
	assert.Contains(t, analysis.AllKinds(), analysis.KindSchema)
}

func TestExtract_Unavailable(t *testing.T) {
	t.Run("missing capability", func(t *testing.T) {
		v := analysis.Tables(pathOnly{})
		require.False(t, v.OK())
		var unavailable *analysis.AttributeUnavailableError
		require.ErrorAs(t, v.Err, &unavailable)
		assert.Equal(t, "tables", unavailable.View)
	})

	t.Run("section absent from file", func(t *testing.T) {
		m := loadSample(t, `{"model": {"tables": []}}`)
		assert.True(t, analysis.Tables(m).OK())
		assert.False(t, analysis.Relationships(m).OK())
	})

	t.Run("encodes as a single error record", func(t *testing.T) {
		data, err := json.Marshal(analysis.Measures(pathOnly{}))
		require.NoError(t, err)
		assert.JSONEq(t, `[{"error": "could not read \"dax_measures\" from the model"}]`, string(data))
	})

	t.Run("empty view encodes as empty array", func(t *testing.T) {
		data, err := json.Marshal(analysis.Measures(loadSample(t, `{"model": {"tables": []}}`)))
		require.NoError(t, err)
		assert.JSONEq(t, `[]`, string(data))
	})
}

func TestAnalyzer_Run(t *testing.T) {
	m := loadSample(t, testutil.SampleSchema)
	a := analysis.New(nil)

	tests := []struct {
		kind    analysis.Kind
		wantLen int
	}{
		{kind: analysis.KindTables, wantLen: 2},
		{kind: analysis.KindMeasures, wantLen: 2},
		{kind: analysis.KindRelationships, wantLen: 2},
		{kind: analysis.KindPowerQuery, wantLen: 3},
		{kind: analysis.KindBestPracticesDAX, wantLen: 1},
		{kind: analysis.KindBestPracticesPowerQuery, wantLen: 1},
		{kind: analysis.KindSchema, wantLen: 5},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			got, err := a.Run(m, tt.kind)
			require.NoError(t, err)

			data, err := json.Marshal(got)
			require.NoError(t, err)
			var records []map[string]any
			require.NoError(t, json.Unmarshal(data, &records))
			assert.Len(t, records, tt.wantLen)
		})
	}

	_, err := a.Run(m, analysis.Kind("nope"))
	assert.ErrorIs(t, err, analysis.ErrUnknownKind)
}

func TestAnalyzer_Findings(t *testing.T) {
	m := loadSample(t, testutil.SampleSchema)

	t.Run("default config", func(t *testing.T) {
		a := analysis.New(nil)

		dax := a.DAXFindings(m)
		require.True(t, dax.OK())
		require.Len(t, dax.Items, 1)
		assert.Equal(t, "Region Filter", dax.Items[0].Subject)

		pq := a.PowerQueryFindings(m)
		require.True(t, pq.OK())
		require.Len(t, pq.Items, 1)
		assert.Equal(t, "Sales", pq.Items[0].Subject)
		assert.Contains(t, pq.Items[0].Message, `C:\data\sales.csv`)
	})

	t.Run("disabled rule", func(t *testing.T) {
		a := analysis.New(lint.NewConfig().Disable("DX01"))
		assert.Empty(t, a.DAXFindings(m).Items)
		assert.Len(t, a.PowerQueryFindings(m).Items, 1)
	})

	t.Run("missing measures propagate as unavailable", func(t *testing.T) {
		v := analysis.New(nil).DAXFindings(pathOnly{})
		assert.False(t, v.OK())
	})
}

func TestAnalyzer_All(t *testing.T) {
	report := analysis.New(nil).All(loadSample(t, testutil.SampleSchema))
	assert.Equal(t, 2, report.FindingCount())

	data, err := json.Marshal(report)
	require.NoError(t, err)

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &decoded))
	for _, k := range analysis.Kinds() {
		assert.Contains(t, decoded, k.ResponseKey())

		payload, ok := report.Get(k)
		require.True(t, ok)
		single, err := json.Marshal(payload)
		require.NoError(t, err)
		assert.JSONEq(t, string(single), string(decoded[k.ResponseKey()]))
	}

	_, ok := report.Get(analysis.KindSchema)
	assert.False(t, ok)

	t.Run("yaml", func(t *testing.T) {
		out, err := yaml.Marshal(report)
		require.NoError(t, err)
		assert.Contains(t, string(out), "dax_best_practices_findings:")
		assert.Contains(t, string(out), "rule_id: DX01")
	})
}
