package notify

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strictPolicy = bluemonday.StrictPolicy()

// PlainText strips markup from server-supplied messages so they can be shown
// on a terminal. Entities are decoded after sanitizing.
func PlainText(message string) string {
	if !strings.ContainsAny(message, "<&") {
		return strings.TrimSpace(message)
	}
	return strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(message)))
}
