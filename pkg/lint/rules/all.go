// Package rules registers all built-in lint rules.
// Import this package to register every rule with the global registry.
package rules

import (
	// Blank imports trigger init() functions that register rules with the global registry.
	_ "github.com/leapstack-labs/pbixlint/pkg/lint/rules/dax"        // registers DX* rules
	_ "github.com/leapstack-labs/pbixlint/pkg/lint/rules/powerquery" // registers PQ* rules
)
