package enrichment

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// stripPolicy removes every tag, keeping text content only.
var stripPolicy = bluemonday.StrictPolicy()

// StripMarkup removes markup from a rich-text field on a best-effort basis,
// without validating the markup. The sanitizer entity-escapes its output, so
// entities are unescaped back to plain text. Empty input yields the empty
// string.
func StripMarkup(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(stripPolicy.Sanitize(s)))
}
