package textutil

import (
	"regexp"
	"strings"
)

// Extract returns the first capture group of the first match of
// `pattern` in `body`, or `fallback` when there is no match. A miss
// is an expected outcome when scanning server-rendered markup, never
// an error.
func Extract(pattern *regexp.Regexp, body string, fallback string) string {
	m := pattern.FindStringSubmatch(body)
	if m == nil || len(m) < 2 {
		return fallback
	}
	return m[1]
}

// ExtractStrict is Extract with the capture trimmed of surrounding
// whitespace; an all-whitespace capture counts as the placeholder "0".
func ExtractStrict(pattern *regexp.Regexp, body string, fallback string) string {
	m := pattern.FindStringSubmatch(body)
	if m == nil || len(m) < 2 {
		return fallback
	}
	v := strings.TrimSpace(m[1])
	if v == "" {
		return "0"
	}
	return v
}

// Field binds a label to the pattern that locates its value in a
// response body. Scrape targets are declared as tables of these so
// the patterns can be tested without any network code.
type Field struct {
	Name     string
	Pattern  *regexp.Regexp
	Fallback string
}

func (f Field) Extract(body string) string {
	return Extract(f.Pattern, body, f.Fallback)
}
