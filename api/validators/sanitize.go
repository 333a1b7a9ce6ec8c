package validators

import (
	"strings"
	"unicode"
)

// CleanText drops control characters, collapses runs of whitespace to one
// space and cuts the result to maxRunes (0 means no limit).
func CleanText(input string, maxRunes int) string {
	var b strings.Builder
	b.Grow(len(input))
	n := 0
	space := false
	for _, r := range strings.TrimSpace(input) {
		if maxRunes > 0 && n == maxRunes {
			break
		}
		switch {
		case unicode.IsSpace(r):
			space = true
			continue
		case unicode.IsControl(r):
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
			n++
			if maxRunes > 0 && n == maxRunes {
				break
			}
		}
		space = false
		b.WriteRune(r)
		n++
	}
	return strings.TrimRight(b.String(), " ")
}
