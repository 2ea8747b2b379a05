// Package lint provides the best-practices scanners for Power BI models.
//
// # Architecture
//
//  1. Root package (pkg/lint/): shared types, the rule registry, Config and the Analyzer
//  2. Rule packages (pkg/lint/rules/...): one package per rule group, registered via init()
//
// # Rule Registration
//
// Rules register themselves when their packages are imported:
//
//	import _ "github.com/leapstack-labs/pbixlint/pkg/lint/rules" // registers all rules
//
// # Rule Groups
//
//   - DX (dax): checks over DAX measure expressions
//   - PQ (powerquery): checks over Power Query (M) expressions
//
// # Configuration
//
//	config := lint.NewConfig()
//	config.Disable("PQ01")
//	config.SetSeverity("DX01", lint.SeverityWarning)
//	config.SetRuleOptions("DX01", map[string]any{"max_commas": 5})
//
// # Running
//
//	analyzer := lint.NewAnalyzer(config)
//	findings := analyzer.AnalyzeGroup(&lint.Context{Measures: measures}, lint.GroupDAX)
//
// Rules are stateless and findings are recomputed on every call.
package lint
