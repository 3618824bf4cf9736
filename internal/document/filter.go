package document

import "strings"

// FilterByTerm returns the lines of d that contain term, compared
// case-insensitively, in their original order. An empty term returns d
// itself. Filtering can drop heading lines, and with them their anchors.
func FilterByTerm(d *Document, term string) *Document {
	if term == "" {
		return d
	}
	needle := strings.ToLower(term)
	kept := make([]string, 0, len(d.lines))
	origin := make([]int, 0, len(d.lines))
	for i, line := range d.lines {
		if strings.Contains(strings.ToLower(line), needle) {
			kept = append(kept, line)
			origin = append(origin, d.Origin(i))
		}
	}
	return &Document{id: d.id, lines: kept, root: d.Root(), origin: origin}
}
