package lint

import (
	"fmt"
	"strings"
)

// DefaultDocsBaseURL is the rule reference generated by scripts/gendocs.
const DefaultDocsBaseURL = "https://github.com/leapstack-labs/pbixlint/blob/main/docs/reference/rules.md"

// DocsBaseURL can be overridden for a local or mirrored copy of the docs.
var DocsBaseURL = DefaultDocsBaseURL

// BuildDocURL constructs a documentation URL for a rule. Rule pages are
// anchors on a single page.
func BuildDocURL(ruleID string) string {
	return fmt.Sprintf("%s#%s", DocsBaseURL, strings.ToLower(ruleID))
}

// SetDocsBaseURL overrides the default documentation base URL.
func SetDocsBaseURL(url string) {
	DocsBaseURL = strings.TrimSuffix(url, "/")
}

// ResetDocsBaseURL resets to the default documentation URL.
func ResetDocsBaseURL() {
	DocsBaseURL = DefaultDocsBaseURL
}
