package analysis

import (
	"fmt"

	"github.com/leapstack-labs/pbixlint/pkg/lint"
	"github.com/leapstack-labs/pbixlint/pkg/pbix"

	// Register the built-in scanner rules.
	_ "github.com/leapstack-labs/pbixlint/pkg/lint/rules"
)

// Analyzer runs analyses against loaded models.
// It holds no per-model state and is safe for concurrent use.
type Analyzer struct {
	lint *lint.Analyzer
}

// New creates an Analyzer. A nil config enables every rule with its
// default severity.
func New(cfg *lint.Config) *Analyzer {
	return &Analyzer{lint: lint.NewAnalyzer(cfg)}
}

type runFunc func(a *Analyzer, m pbix.Model) any

var dispatch = map[Kind]runFunc{
	KindTables:                  func(_ *Analyzer, m pbix.Model) any { return Tables(m) },
	KindMeasures:                func(_ *Analyzer, m pbix.Model) any { return Measures(m) },
	KindRelationships:           func(_ *Analyzer, m pbix.Model) any { return Relationships(m) },
	KindPowerQuery:              func(_ *Analyzer, m pbix.Model) any { return Queries(m) },
	KindBestPracticesDAX:        func(a *Analyzer, m pbix.Model) any { return a.DAXFindings(m) },
	KindBestPracticesPowerQuery: func(a *Analyzer, m pbix.Model) any { return a.PowerQueryFindings(m) },
	KindSchema:                  func(_ *Analyzer, m pbix.Model) any { return Schema(m) },
}

// Run executes one analysis. The returned value is a View of the records
// for kind; only an unknown kind produces an error.
func (a *Analyzer) Run(m pbix.Model, kind Kind) (any, error) {
	fn, ok := dispatch[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return fn(a, m), nil
}

// DAXFindings scans the measures of m.
func (a *Analyzer) DAXFindings(m pbix.Model) View[lint.Finding] {
	measures := Measures(m)
	if !measures.OK() {
		return View[lint.Finding]{Err: measures.Err}
	}
	return items(a.lint.AnalyzeGroup(&lint.Context{Measures: measures.Items}, lint.GroupDAX))
}

// PowerQueryFindings scans the queries of m.
func (a *Analyzer) PowerQueryFindings(m pbix.Model) View[lint.Finding] {
	queries := Queries(m)
	if !queries.OK() {
		return View[lint.Finding]{Err: queries.Err}
	}
	return items(a.lint.AnalyzeGroup(&lint.Context{Queries: queries.Items}, lint.GroupPowerQuery))
}

// All runs every report analysis against m.
func (a *Analyzer) All(m pbix.Model) *Report {
	return &Report{
		Tables:             Tables(m),
		Measures:           Measures(m),
		Relationships:      Relationships(m),
		Queries:            Queries(m),
		DAXFindings:        a.DAXFindings(m),
		PowerQueryFindings: a.PowerQueryFindings(m),
	}
}
