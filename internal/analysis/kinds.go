package analysis

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownKind is returned by ParseKind for names outside the Kind set.
var ErrUnknownKind = errors.New("unknown analysis kind")

// Kind names one analysis.
type Kind string

// Analysis kinds. The string values are the URL segments of the HTTP API.
const (
	KindTables                  Kind = "tables"
	KindMeasures                Kind = "dax_measures"
	KindRelationships           Kind = "relationships"
	KindPowerQuery              Kind = "power_query"
	KindBestPracticesDAX        Kind = "best_practices_dax"
	KindBestPracticesPowerQuery Kind = "best_practices_power_query"
	KindSchema                  Kind = "schema"
)

// reportKinds are the analyses included in a full Report, in display order.
var reportKinds = []Kind{
	KindTables,
	KindMeasures,
	KindRelationships,
	KindPowerQuery,
	KindBestPracticesDAX,
	KindBestPracticesPowerQuery,
}

var kindInfo = map[Kind]struct {
	key   string
	title string
}{
	KindTables:                  {"tables", "Tables"},
	KindMeasures:                {"dax_measures", "DAX Measures"},
	KindRelationships:           {"relationships", "Relationships"},
	KindPowerQuery:              {"power_queries", "Power Query (M)"},
	KindBestPracticesDAX:        {"dax_best_practices_findings", "DAX Best Practices"},
	KindBestPracticesPowerQuery: {"power_query_best_practices_findings", "Power Query Best Practices"},
	KindSchema:                  {"schema", "Schema"},
}

// Kinds returns the analyses included in a full report.
func Kinds() []Kind {
	out := make([]Kind, len(reportKinds))
	copy(out, reportKinds)
	return out
}

// AllKinds returns every kind, including the schema view.
func AllKinds() []Kind {
	return append(Kinds(), KindSchema)
}

// ParseKind validates a kind name. Matching is case-insensitive and accepts
// dashes in place of underscores.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	if _, ok := kindInfo[k]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
	return k, nil
}

// ResponseKey is the JSON key the payload of k is returned under.
func (k Kind) ResponseKey() string {
	if info, ok := kindInfo[k]; ok {
		return info.key
	}
	return string(k)
}

// Title is the human-readable heading for k.
func (k Kind) Title() string {
	if info, ok := kindInfo[k]; ok {
		return info.title
	}
	return string(k)
}

// IsFindings reports whether k produces lint findings.
func (k Kind) IsFindings() bool {
	return k == KindBestPracticesDAX || k == KindBestPracticesPowerQuery
}
