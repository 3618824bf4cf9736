// Package view models one rendered page instance: the loaded document, its
// outline, the current search term and the active section.
package view

import (
	"sync"
	"time"

	"github.com/dgallion1/manview/internal/document"
	"github.com/dgallion1/manview/internal/render"
	"github.com/dgallion1/manview/internal/tracker"
)

// View owns the mutable search and active-section state of a rendered page.
type View struct {
	mu sync.Mutex

	ID        string
	DocID     string
	Theme     render.Theme
	CreatedAt time.Time
	UpdatedAt time.Time

	doc      *document.Document
	outline  document.Outline
	term     string
	filtered *document.Document
	page     *render.Page
	live     map[string]bool // outline anchors present in the rendered page
	tracker  *tracker.Tracker

	// Highest sequence number applied per event stream.
	searchSeq uint64
	scrollSeq uint64
}

// OutlineEntry is an outline heading as shown next to the page.
type OutlineEntry struct {
	document.HeadingOccurrence
	Indent   int  `json:"indent"`
	Linkable bool `json:"linkable"`
	Present  bool `json:"present"` // anchor exists in the current rendered view
	Active   bool `json:"active"`
}

// Snapshot is a read-only, JSON-safe copy of view state.
type Snapshot struct {
	ID            string         `json:"view_id"`
	DocID         string         `json:"doc_id"`
	Theme         render.Theme   `json:"theme"`
	SearchTerm    string         `json:"search_term"`
	SearchSeq     uint64         `json:"search_seq"`
	Active        string         `json:"active"`
	State         string         `json:"state"`
	Outline       []OutlineEntry `json:"outline"`
	Anchors       []string       `json:"anchors"`
	HTML          string         `json:"html"`
	Lines         int            `json:"lines"`
	FilteredLines int            `json:"filtered_lines"`
}

// setPage installs a freshly rendered page and drops an active id whose
// anchor is no longer live. Rendered headings without an outline entry
// (quoted or indented ones) are never live.
func (v *View) setPage(filtered *document.Document, page *render.Page) {
	outline := make(map[string]bool, len(v.outline))
	for _, id := range v.outline.Anchors() {
		outline[id] = true
	}
	v.filtered = filtered
	v.page = page
	v.live = make(map[string]bool, len(page.Anchors))
	for _, a := range page.Anchors {
		if outline[a.ID] {
			v.live[a.ID] = true
		}
	}
	v.tracker.Retain(v.live)
	v.UpdatedAt = time.Now()
}

// scroll feeds one scroll event to the tracker. Positions whose id is not
// live in this view never match.
func (v *View) scroll(headings []tracker.Position, scrollY float64) string {
	live := make([]tracker.Position, len(headings))
	for i, h := range headings {
		if v.live[h.ID] {
			live[i] = h
		} else {
			live[i] = tracker.Position{Top: h.Top}
		}
	}
	v.tracker.OnScroll(live, scrollY)
	v.UpdatedAt = time.Now()
	return v.tracker.Current()
}

// stale reports whether seq is older than the last event applied on a
// stream, and records it otherwise. Zero means unsequenced and always
// applies.
func stale(last *uint64, seq uint64) bool {
	if seq == 0 {
		return false
	}
	if seq <= *last {
		return true
	}
	*last = seq
	return false
}

// Active returns the active anchor id, or "".
func (v *View) Active() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.tracker.Current()
}

// Snapshot returns a copy of the view state.
func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	active := v.tracker.Current()
	entries := make([]OutlineEntry, len(v.outline))
	for i, h := range v.outline {
		entries[i] = OutlineEntry{
			HeadingOccurrence: h,
			Indent:            h.Indent(),
			Linkable:          h.Linkable(),
			Present:           v.live[h.AnchorID],
			Active:            active != "" && h.AnchorID == active,
		}
	}
	return Snapshot{
		ID:            v.ID,
		DocID:         v.DocID,
		Theme:         v.Theme,
		SearchTerm:    v.term,
		SearchSeq:     v.searchSeq,
		Active:        active,
		State:         v.tracker.State().String(),
		Outline:       entries,
		Anchors:       v.page.AnchorIDs(),
		HTML:          v.page.HTML,
		Lines:         v.doc.Len(),
		FilteredLines: v.filtered.Len(),
	}
}
