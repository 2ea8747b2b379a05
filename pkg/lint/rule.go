package lint

// Rule groups.
const (
	GroupDAX        = "dax"
	GroupPowerQuery = "powerquery"
)

// CheckFunc inspects the context and returns findings.
// The opts parameter contains rule-specific options from configuration.
type CheckFunc func(ctx *Context, opts map[string]any) []Finding

// RuleDef is a data-driven rule definition.
// Rules are stateless - all context comes via the Check function parameters.
type RuleDef struct {
	ID          string    // Unique identifier, e.g., "DX01"
	Name        string    // Human-readable name, e.g., "dax.in-list-literal"
	Group       string    // Category: "dax" or "powerquery"
	Description string    // One-line description
	Severity    Severity  // Default severity
	Check       CheckFunc // The check function
	ConfigKeys  []string  // Option keys this rule accepts

	// Documentation
	Rationale   string
	BadExample  string
	GoodExample string
}

// RuleInfo provides metadata about a rule for documentation/tooling.
type RuleInfo struct {
	ID              string   `json:"id" yaml:"id"`
	Name            string   `json:"name" yaml:"name"`
	Group           string   `json:"group" yaml:"group"`
	Description     string   `json:"description" yaml:"description"`
	DefaultSeverity Severity `json:"default_severity" yaml:"default_severity"`
	ConfigKeys      []string `json:"config_keys,omitempty" yaml:"config_keys,omitempty"`
	Rationale       string   `json:"rationale,omitempty" yaml:"rationale,omitempty"`
	BadExample      string   `json:"bad_example,omitempty" yaml:"bad_example,omitempty"`
	GoodExample     string   `json:"good_example,omitempty" yaml:"good_example,omitempty"`
	DocURL          string   `json:"doc_url" yaml:"doc_url"`
}

// Info extracts the documentation view of a rule.
func (r RuleDef) Info() RuleInfo {
	return RuleInfo{
		ID:              r.ID,
		Name:            r.Name,
		Group:           r.Group,
		Description:     r.Description,
		DefaultSeverity: r.Severity,
		ConfigKeys:      r.ConfigKeys,
		Rationale:       r.Rationale,
		BadExample:      r.BadExample,
		GoodExample:     r.GoodExample,
		DocURL:          BuildDocURL(r.ID),
	}
}
