// Package template renders stored notification templates against a flat
// variable mapping.
package template

import (
	"regexp"
	"sort"
)

// Render replaces every case-insensitive occurrence of {{key}} in tmpl with
// the mapped value, inserted verbatim (no escaping). Placeholders without a
// matching key are left untouched. Keys are applied in sorted order so the
// result does not depend on map iteration order.
func Render(tmpl string, variables map[string]string) string {
	if tmpl == "" || len(variables) == 0 {
		return tmpl
	}

	keys := make([]string, 0, len(variables))
	for key := range variables {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	result := tmpl
	for _, key := range keys {
		pattern := regexp.MustCompile(`(?i)` + regexp.QuoteMeta("{{"+key+"}}"))
		result = pattern.ReplaceAllLiteralString(result, variables[key])
	}

	return result
}
