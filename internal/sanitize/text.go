package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// StrictPolicy removes all HTML tags and attributes.
var StrictPolicy = bluemonday.StrictPolicy()

const maxPasses = 4

// Text strips all HTML from user input and trims surrounding whitespace.
// Output is stored as plain text and served as JSON, so entities escaped by
// the policy are decoded again; the policy is reapplied until decoding no
// longer yields markup.
func Text(input string) string {
	out := input
	for i := 0; i < maxPasses; i++ {
		next := html.UnescapeString(StrictPolicy.Sanitize(out))
		if next == out {
			break
		}
		out = next
	}
	return strings.TrimSpace(out)
}
