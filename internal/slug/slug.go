// Package slug derives anchor identifiers from heading text.
//
// Both the outline extractor and the heading renderer call Slug.
package slug

import "strings"

// Slug lower-cases text, collapses every run of characters outside
// [a-z0-9] into a single '-', and trims one leading and one trailing '-'.
// Non-ASCII letters count as separators.
func Slug(text string) string {
	lower := strings.ToLower(text)

	var b strings.Builder
	b.Grow(len(lower))
	inSep := false
	for _, r := range lower {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			inSep = false
			continue
		}
		if !inSep {
			b.WriteByte('-')
			inSep = true
		}
	}

	out := b.String()
	out = strings.TrimPrefix(out, "-")
	out = strings.TrimSuffix(out, "-")
	return out
}
