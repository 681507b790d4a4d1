// Package policy decides which shell command segments the Bash tool may run.
//
// The filter is an allow-list applied per segment: a command line is split on
// ';' and '&' and every piece is judged on its own, so an allowed command
// cannot carry a disallowed one along with it.
package policy

import "strings"

// exactAllowed are the only commands other than ls that may run.
var exactAllowed = map[string]bool{
	"ls":                 true,
	"rm README_old.md":   true,
	"rm ./README_old.md": true,
}

// Segments splits a raw command line on ';' and '&', trims each piece, drops
// empty pieces and collapses internal whitespace. Order is preserved.
func Segments(raw string) []string {
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ';' || r == '&'
	})
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if seg := Normalize(p); seg != "" {
			out = append(out, seg)
		}
	}
	return out
}

// Normalize collapses runs of whitespace to single spaces and trims the ends.
func Normalize(segment string) string {
	return strings.Join(strings.Fields(segment), " ")
}

// Allowed reports whether a normalized segment may be executed.
func Allowed(segment string) bool {
	return exactAllowed[segment] || strings.HasPrefix(segment, "ls ")
}
