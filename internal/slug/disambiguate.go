package slug

import "strconv"

// Disambiguator hands out anchors that are unique within one pass over a
// document. The first occurrence of an anchor is returned unchanged; later
// collisions get the heading ordinal appended ("-<ordinal>").
//
// A Disambiguator is not safe for concurrent use. Create one per pass.
type Disambiguator struct {
	seen map[string]struct{}
}

// NewDisambiguator returns an empty Disambiguator.
func NewDisambiguator() *Disambiguator {
	return &Disambiguator{seen: make(map[string]struct{})}
}

// Anchor returns Slug(text), suffixed with ordinal when that anchor was
// already handed out earlier in the pass.
func (d *Disambiguator) Anchor(text string, ordinal int) string {
	base := Slug(text)
	id := base
	if _, dup := d.seen[id]; dup {
		id = base + "-" + strconv.Itoa(ordinal)
	}
	d.seen[id] = struct{}{}
	return id
}
