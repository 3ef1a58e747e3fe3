package sanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// StrictPolicy removes all HTML tags and attributes.
// Use for fields that should only contain plain text (event names, usernames).
var StrictPolicy = bluemonday.StrictPolicy()

// Text strips all HTML tags and returns trimmed plain text.
func Text(input string) string {
	return strings.TrimSpace(StrictPolicy.Sanitize(input))
}
