package tools

import (
	"strconv"
	"unicode/utf8"
)

// TruncateToolOutput caps s at maxRunes runes, including the marker that
// reports the original length. maxRunes <= 0 returns s unchanged. The start
// of s is kept; the model can ask again for a narrower result.
func TruncateToolOutput(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return s
	}
	total := utf8.RuneCountInString(s)
	if total <= maxRunes {
		return s
	}
	suffix := "\n...[output truncated, total " + strconv.Itoa(total) + " runes]"
	keep := maxRunes - utf8.RuneCountInString(suffix)
	if keep < 1 {
		keep = 1
	}
	r := []rune(s)
	return string(r[:keep]) + suffix
}
