// Package tracker decides which section of a rendered page is currently
// active for a given scroll position.
package tracker

// DefaultOffset activates a section slightly before it reaches the top of
// the viewport, leaving room for a fixed header bar.
const DefaultOffset = 100

// Position is a rendered heading anchor and its top edge, measured from the
// top of the document.
type Position struct {
	ID  string  `json:"id"`
	Top float64 `json:"top"`
}

// Active returns the id of the last heading, in document order, whose top is
// at or above scrollY+offset. Headings without an id never match. It returns
// "" when no heading qualifies.
func Active(headings []Position, scrollY, offset float64) string {
	threshold := scrollY + offset
	current := ""
	for _, h := range headings {
		if h.ID == "" {
			continue
		}
		if h.Top <= threshold {
			current = h.ID
		}
	}
	return current
}

// State is the tracker state.
type State int

const (
	NoneActive State = iota
	SectionActive
)

func (s State) String() string {
	if s == SectionActive {
		return "active"
	}
	return "none"
}

// Tracker holds the active section of one rendered view. Each scroll event
// recomputes the result from scratch; the latest event wins.
//
// A Tracker is not safe for concurrent use.
type Tracker struct {
	offset   float64
	current  string
	detached bool
}

// New returns a Tracker in the NoneActive state.
func New(offset float64) *Tracker {
	return &Tracker{offset: offset}
}

// OnScroll handles one scroll event. headings are the anchors currently
// rendered, in document order. Events after Detach are ignored.
func (t *Tracker) OnScroll(headings []Position, scrollY float64) {
	if t.detached {
		return
	}
	t.current = Active(headings, scrollY, t.offset)
}

// Current returns the active anchor id, or "" in the NoneActive state.
func (t *Tracker) Current() string { return t.current }

// State reports whether a section is active.
func (t *Tracker) State() State {
	if t.current == "" {
		return NoneActive
	}
	return SectionActive
}

// Offset returns the activation offset.
func (t *Tracker) Offset() float64 { return t.offset }

// Retain drops the active id when it is no longer among the rendered
// anchors, e.g. after a search filtered its heading away.
func (t *Tracker) Retain(rendered map[string]bool) {
	if t.current != "" && !rendered[t.current] {
		t.current = ""
	}
}

// Detach tears the tracker down. It returns to NoneActive and ignores
// further scroll events.
func (t *Tracker) Detach() {
	t.detached = true
	t.current = ""
}

// Detached reports whether Detach was called.
func (t *Tracker) Detached() bool { return t.detached }
