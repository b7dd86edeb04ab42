package feedparser

import (
	"html"
	"regexp"
	"strings"
)

var tagRe = regexp.MustCompile(`(?s)<[^>]*>`)

// CleanHTML decodes entities, strips tags and collapses whitespace.
// Entities are decoded first so escaped markup (&lt;p&gt;) is stripped too.
func CleanHTML(s string) string {
	if s == "" {
		return ""
	}
	s = html.UnescapeString(s)
	s = tagRe.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}
