package analysis

import (
	"github.com/leapstack-labs/pbixlint/pkg/lint"
	"github.com/leapstack-labs/pbixlint/pkg/pbix"
)

// Report aggregates the six report analyses of one model.
// Field tags match the per-kind response keys.
type Report struct {
	Tables             View[pbix.Table]        `json:"tables" yaml:"tables"`
	Measures           View[pbix.Measure]      `json:"dax_measures" yaml:"dax_measures"`
	Relationships      View[pbix.Relationship] `json:"relationships" yaml:"relationships"`
	Queries            View[pbix.Query]        `json:"power_queries" yaml:"power_queries"`
	DAXFindings        View[lint.Finding]      `json:"dax_best_practices_findings" yaml:"dax_best_practices_findings"`
	PowerQueryFindings View[lint.Finding]      `json:"power_query_best_practices_findings" yaml:"power_query_best_practices_findings"`
}

// Get returns the payload of one kind, in the same form Run returns it.
func (r *Report) Get(kind Kind) (any, bool) {
	switch kind {
	case KindTables:
		return r.Tables, true
	case KindMeasures:
		return r.Measures, true
	case KindRelationships:
		return r.Relationships, true
	case KindPowerQuery:
		return r.Queries, true
	case KindBestPracticesDAX:
		return r.DAXFindings, true
	case KindBestPracticesPowerQuery:
		return r.PowerQueryFindings, true
	default:
		return nil, false
	}
}

// FindingCount returns the number of findings across both scanners.
func (r *Report) FindingCount() int {
	return r.DAXFindings.Len() + r.PowerQueryFindings.Len()
}
