package document

import (
	"regexp"
	"strings"

	"github.com/dgallion1/manview/internal/slug"
)

// MaxLinkableLevel is the deepest heading level that gets an interactive
// anchor when rendered. Deeper levels stay in the outline for display only.
const MaxLinkableLevel = 3

var headingLine = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)

// HeadingOccurrence is one heading found in a document.
type HeadingOccurrence struct {
	Level    int    `json:"level"`
	Text     string `json:"text"`
	AnchorID string `json:"anchor_id"`
	Ordinal  int    `json:"ordinal"`
}

// Indent is the display indentation step for the heading (level - 1).
func (h HeadingOccurrence) Indent() int { return h.Level - 1 }

// Linkable reports whether the rendered heading carries an anchor.
func (h HeadingOccurrence) Linkable() bool { return h.Level <= MaxLinkableLevel }

// Outline is the flat, document-ordered list of headings.
type Outline []HeadingOccurrence

// Anchors returns the anchor ids in outline order, including duplicates.
func (o Outline) Anchors() []string {
	ids := make([]string, len(o))
	for i, h := range o {
		ids[i] = h.AnchorID
	}
	return ids
}

// Find returns the first occurrence carrying anchor.
func (o Outline) Find(anchor string) (HeadingOccurrence, bool) {
	for _, h := range o {
		if h.AnchorID == anchor {
			return h, true
		}
	}
	return HeadingOccurrence{}, false
}

// ExtractOutline scans d for ATX heading lines ("#" to "######" followed by
// whitespace and text). Lines whose heading text is blank are skipped.
// Duplicate heading texts share the same anchor id.
func ExtractOutline(d *Document) Outline {
	return extract(d, func(text string, _ int) string { return slug.Slug(text) })
}

// ExtractUniqueOutline is ExtractOutline with colliding anchors suffixed by
// the heading ordinal. The first occurrence keeps the plain anchor.
func ExtractUniqueOutline(d *Document) Outline {
	return extract(d, slug.NewDisambiguator().Anchor)
}

// UniqueHeadingAnchors maps the index of every heading line of d to the
// anchor ExtractUniqueOutline gives that heading in d.Root(). Anchors of a
// filtered document therefore match the outline of the full document.
func UniqueHeadingAnchors(d *Document) map[int]string {
	root := d.Root()
	outline, lines := extractLines(root, slug.NewDisambiguator().Anchor)
	byRoot := make(map[int]string, len(outline))
	for i, h := range outline {
		byRoot[lines[i]] = h.AnchorID
	}

	anchors := make(map[int]string)
	for i := range d.lines {
		if id, ok := byRoot[d.Origin(i)]; ok {
			anchors[i] = id
		}
	}
	return anchors
}

func extract(d *Document, anchor func(text string, ordinal int) string) Outline {
	outline, _ := extractLines(d, anchor)
	return outline
}

// extractLines also returns the line index of each outline entry.
func extractLines(d *Document, anchor func(text string, ordinal int) string) (Outline, []int) {
	outline := Outline{}
	var lines []int
	for i, line := range d.lines {
		m := headingLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		text := strings.TrimSpace(m[2])
		if text == "" {
			continue
		}
		ordinal := len(outline)
		outline = append(outline, HeadingOccurrence{
			Level:    len(m[1]),
			Text:     text,
			AnchorID: anchor(text, ordinal),
			Ordinal:  ordinal,
		})
		lines = append(lines, i)
	}
	return outline, lines
}
