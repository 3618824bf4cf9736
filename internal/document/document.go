// Package document holds the immutable line model of a loaded manual page
// together with the two passes computed from it: outline extraction and
// line filtering.
package document

import "strings"

// Document is an immutable ordered sequence of text lines identified by an
// opaque id. Derived views (such as a filtered document) are new values.
type Document struct {
	id    string
	lines []string

	root   *Document // unfiltered document, nil when d is one
	origin []int     // index in root of each line
}

// New splits text into lines. CRLF line endings are normalised to LF.
func New(id, text string) *Document {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var lines []string
	if text != "" {
		lines = strings.Split(text, "\n")
	}
	return &Document{id: id, lines: lines}
}

// FromLines builds a Document from already split lines. The slice is copied.
func FromLines(id string, lines []string) *Document {
	cp := make([]string, len(lines))
	copy(cp, lines)
	return &Document{id: id, lines: cp}
}

// ID returns the document id.
func (d *Document) ID() string { return d.id }

// Len returns the number of lines.
func (d *Document) Len() int { return len(d.lines) }

// Line returns line i (0-based).
func (d *Document) Line(i int) string { return d.lines[i] }

// Lines returns a copy of the document lines.
func (d *Document) Lines() []string {
	cp := make([]string, len(d.lines))
	copy(cp, d.lines)
	return cp
}

// Root returns the unfiltered document d was derived from, or d itself.
func (d *Document) Root() *Document {
	if d.root == nil {
		return d
	}
	return d.root
}

// Origin returns the index in Root() of line i.
func (d *Document) Origin(i int) int {
	if d.origin == nil {
		return i
	}
	return d.origin[i]
}

// Text joins the lines back into a single string.
func (d *Document) Text() string {
	return strings.Join(d.lines, "\n")
}

// Empty reports whether the document has no content at all.
func (d *Document) Empty() bool {
	return strings.TrimSpace(d.Text()) == ""
}
