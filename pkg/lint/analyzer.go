package lint

// Analyzer runs registered rules against a Context.
type Analyzer struct {
	config *Config
}

// NewAnalyzer creates a new analyzer with optional configuration.
func NewAnalyzer(config *Config) *Analyzer {
	if config == nil {
		config = NewConfig()
	}
	return &Analyzer{config: config}
}

// Analyze runs every enabled rule.
func (a *Analyzer) Analyze(ctx *Context) []Finding {
	return a.run(ctx, GetAll())
}

// AnalyzeGroup runs the enabled rules of one group.
func (a *Analyzer) AnalyzeGroup(ctx *Context, group string) []Finding {
	return a.run(ctx, GetByGroup(group))
}

func (a *Analyzer) run(ctx *Context, rules []RuleDef) []Finding {
	findings := []Finding{}
	if ctx == nil {
		return findings
	}

	for _, rule := range rules {
		if a.config.IsDisabled(rule.ID) {
			continue
		}

		found := rule.Check(ctx, a.config.GetRuleOptions(rule.ID))

		for i := range found {
			found[i].Severity = a.config.GetSeverity(rule.ID, found[i].Severity)
		}
		findings = append(findings, found...)
	}
	return findings
}
