package view

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/manview/internal/document"
	"github.com/dgallion1/manview/internal/render"
	"github.com/dgallion1/manview/internal/tracker"
)

const grepPage = "# Intro\n\nhello\n\n## Usage\n\nrun it\n\n## Options\n\n-v verbose\n"

type mapLoader map[string]string

func (l mapLoader) Load(_ context.Context, id string) (*document.Document, error) {
	text, ok := l[id]
	if !ok {
		return nil, fmt.Errorf("no document %q", id)
	}
	return document.New(id, text), nil
}

func newTestManager(t *testing.T, opts Options) *Manager {
	t.Helper()
	r, err := render.New(render.Options{Disambiguate: opts.Disambiguate})
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}
	if opts.ScrollOffset == 0 {
		opts.ScrollOffset = tracker.DefaultOffset
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewManager(mapLoader{
		"grep":   grepPage,
		"dup":    "## Notes\n\na\n\n## Notes\n\nb\n",
		"opts":   "# Intro\n\n# Opts\n\nalpha\n\n## Opts\n",
		"quoted": "# Name\n\n> ## Quoted\n\n   ## Indented\n",
	}, r, log, opts)
}

func positions() []tracker.Position {
	return []tracker.Position{
		{ID: "intro", Top: 0},
		{ID: "usage", Top: 500},
		{ID: "options", Top: 1000},
	}
}

func TestOpen_Snapshot(t *testing.T) {
	m := newTestManager(t, Options{})
	v, err := m.Open(context.Background(), "grep", render.ThemeLight)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if v.ID == "" {
		t.Fatal("expected view id")
	}

	snap := v.Snapshot()
	if snap.DocID != "grep" || snap.Theme != render.ThemeLight {
		t.Errorf("unexpected snapshot header %+v", snap)
	}
	if snap.State != "none" || snap.Active != "" {
		t.Errorf("new view should have no active section, got %q/%q", snap.State, snap.Active)
	}
	if len(snap.Outline) != 3 {
		t.Fatalf("expected 3 outline entries, got %d", len(snap.Outline))
	}
	for _, e := range snap.Outline {
		if !e.Present || !e.Linkable {
			t.Errorf("entry %q should be present and linkable", e.Text)
		}
	}
	if snap.Outline[1].Indent != 1 {
		t.Errorf("level 2 indent = %d, want 1", snap.Outline[1].Indent)
	}
	if snap.Lines != snap.FilteredLines {
		t.Errorf("unfiltered view line counts differ: %d vs %d", snap.Lines, snap.FilteredLines)
	}
	if m.Count() != 1 {
		t.Errorf("Count = %d, want 1", m.Count())
	}
}

func TestOpen_LoaderError(t *testing.T) {
	m := newTestManager(t, Options{})
	if _, err := m.Open(context.Background(), "missing", render.ThemeLight); err == nil {
		t.Fatal("expected error for missing document")
	}
	if m.Count() != 0 {
		t.Errorf("failed open should not register a view")
	}
}

func TestScroll_SetsActiveSection(t *testing.T) {
	m := newTestManager(t, Options{})
	v, _ := m.Open(context.Background(), "grep", render.ThemeDark)

	active, err := m.Scroll(v.ID, positions(), 450)
	if err != nil {
		t.Fatalf("Scroll: %v", err)
	}
	if active != "usage" {
		t.Errorf("active = %q, want usage", active)
	}

	snap := v.Snapshot()
	if snap.State != "active" {
		t.Errorf("state = %q, want active", snap.State)
	}
	for _, e := range snap.Outline {
		if e.Active != (e.AnchorID == "usage") {
			t.Errorf("entry %q active = %v", e.AnchorID, e.Active)
		}
	}

	active, _ = m.Scroll(v.ID, positions(), 0)
	if active != "intro" {
		t.Errorf("active at top = %q, want intro", active)
	}
}

func TestSearch_DropsFilteredActiveSection(t *testing.T) {
	m := newTestManager(t, Options{})
	ctx := context.Background()
	v, _ := m.Open(ctx, "grep", render.ThemeLight)

	if _, err := m.Scroll(v.ID, positions(), 450); err != nil {
		t.Fatalf("Scroll: %v", err)
	}
	if _, err := m.Search(ctx, v.ID, "VERBOSE"); err != nil {
		t.Fatalf("Search: %v", err)
	}

	snap := v.Snapshot()
	if snap.SearchTerm != "VERBOSE" {
		t.Errorf("search term = %q", snap.SearchTerm)
	}
	if snap.Active != "" || snap.State != "none" {
		t.Errorf("active section should be dropped, got %q", snap.Active)
	}
	if snap.FilteredLines != 1 {
		t.Errorf("filtered lines = %d, want 1", snap.FilteredLines)
	}
	if len(snap.Anchors) != 0 {
		t.Errorf("expected no rendered anchors, got %v", snap.Anchors)
	}
	for _, e := range snap.Outline {
		if e.Present {
			t.Errorf("entry %q should not be present in filtered view", e.AnchorID)
		}
	}
	if len(snap.Outline) != 3 {
		t.Errorf("outline should still describe the whole document")
	}
}

func TestSearch_KeepsSurvivingActiveSection(t *testing.T) {
	m := newTestManager(t, Options{})
	ctx := context.Background()
	v, _ := m.Open(ctx, "grep", render.ThemeLight)

	m.Scroll(v.ID, positions(), 950)
	if got := v.Active(); got != "options" {
		t.Fatalf("active = %q, want options", got)
	}
	if _, err := m.Search(ctx, v.ID, "option"); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if got := v.Active(); got != "options" {
		t.Errorf("active after search = %q, want options", got)
	}

	// Clearing the term restores every anchor.
	m.Search(ctx, v.ID, "")
	if snap := v.Snapshot(); len(snap.Anchors) != 3 {
		t.Errorf("anchors after clearing = %v", snap.Anchors)
	}
}

func TestScroll_IgnoresUnrenderedHeadings(t *testing.T) {
	m := newTestManager(t, Options{})
	ctx := context.Background()
	v, _ := m.Open(ctx, "grep", render.ThemeLight)
	m.Search(ctx, v.ID, "options")

	active, err := m.Scroll(v.ID, []tracker.Position{{ID: "intro", Top: 0}}, 0)
	if err != nil {
		t.Fatalf("Scroll: %v", err)
	}
	if active != "" {
		t.Errorf("unrendered heading became active: %q", active)
	}
}

// linkableAnchors lists the outline anchors a rendered page must carry.
func linkableAnchors(snap Snapshot) []string {
	var ids []string
	for _, e := range snap.Outline {
		if e.Linkable && e.Present {
			ids = append(ids, e.AnchorID)
		}
	}
	return ids
}

func TestOpen_DisambiguatedOutline(t *testing.T) {
	m := newTestManager(t, Options{Disambiguate: true})
	v, err := m.Open(context.Background(), "dup", render.ThemeLight)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	snap := v.Snapshot()
	if len(snap.Outline) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(snap.Outline))
	}
	if snap.Outline[0].AnchorID != "notes" || snap.Outline[1].AnchorID != "notes-1" {
		t.Errorf("anchors = %q, %q", snap.Outline[0].AnchorID, snap.Outline[1].AnchorID)
	}
	if got := strings.Join(snap.Anchors, ","); got != "notes,notes-1" {
		t.Errorf("rendered anchors = %s, want notes,notes-1", got)
	}
}

func TestSearch_DisambiguatedAnchorsMatchOutline(t *testing.T) {
	m := newTestManager(t, Options{Disambiguate: true})
	ctx := context.Background()
	v, err := m.Open(ctx, "opts", render.ThemeLight)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	snap := v.Snapshot()
	if got := strings.Join(snap.Anchors, ","); got != "intro,opts,opts-2" {
		t.Fatalf("rendered anchors = %s", got)
	}
	if got := strings.Join(linkableAnchors(snap), ","); got != strings.Join(snap.Anchors, ",") {
		t.Errorf("outline %s disagrees with render %v", got, snap.Anchors)
	}

	// "## opts" drops the intro and the earlier level 1 duplicate; the
	// surviving heading keeps the anchor the full outline gave it.
	for _, term := range []string{"opts", "## opts"} {
		if _, err := m.Search(ctx, v.ID, term); err != nil {
			t.Fatalf("Search(%q): %v", term, err)
		}
		snap = v.Snapshot()
		if got := strings.Join(linkableAnchors(snap), ","); got != strings.Join(snap.Anchors, ",") {
			t.Errorf("term %q: outline %s disagrees with render %v", term, got, snap.Anchors)
		}
	}
	if got := strings.Join(snap.Anchors, ","); got != "opts-2" {
		t.Errorf("anchors after filtering = %s, want opts-2", got)
	}

	active, _ := m.Scroll(v.ID, []tracker.Position{{ID: "opts-2", Top: 0}}, 0)
	if active != "opts-2" {
		t.Errorf("active = %q, want opts-2", active)
	}
}

func TestScroll_IgnoresHeadingsOutsideOutline(t *testing.T) {
	m := newTestManager(t, Options{})
	v, err := m.Open(context.Background(), "quoted", render.ThemeLight)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	snap := v.Snapshot()
	if len(snap.Outline) != 1 || snap.Outline[0].AnchorID != "name" {
		t.Fatalf("unexpected outline %+v", snap.Outline)
	}

	headings := []tracker.Position{
		{ID: "name", Top: 0},
		{ID: "quoted", Top: 40},
		{ID: "indented", Top: 80},
	}
	active, err := m.Scroll(v.ID, headings, 0)
	if err != nil {
		t.Fatalf("Scroll: %v", err)
	}
	if active != "name" {
		t.Errorf("active = %q, want name", active)
	}
	if _, ok := v.outline.Find(active); !ok {
		t.Errorf("active %q has no outline entry", active)
	}
}

func TestSearchSeq_DropsStaleEvents(t *testing.T) {
	m := newTestManager(t, Options{})
	ctx := context.Background()
	v, _ := m.Open(ctx, "grep", render.ThemeLight)

	if _, err := m.SearchSeq(ctx, v.ID, "usage", 2); err != nil {
		t.Fatalf("SearchSeq: %v", err)
	}
	if _, err := m.SearchSeq(ctx, v.ID, "verbose", 1); err != nil {
		t.Fatalf("SearchSeq: %v", err)
	}
	snap := v.Snapshot()
	if snap.SearchTerm != "usage" || snap.SearchSeq != 2 {
		t.Errorf("stale search applied: term %q seq %d", snap.SearchTerm, snap.SearchSeq)
	}

	// Unsequenced searches always apply.
	m.Search(ctx, v.ID, "")
	if got := v.Snapshot().SearchTerm; got != "" {
		t.Errorf("term = %q, want empty", got)
	}
}

func TestScrollSeq_DropsStaleEvents(t *testing.T) {
	m := newTestManager(t, Options{})
	v, _ := m.Open(context.Background(), "grep", render.ThemeLight)

	if active, _ := m.ScrollSeq(v.ID, positions(), 950, 5); active != "options" {
		t.Fatalf("active = %q, want options", active)
	}
	if active, _ := m.ScrollSeq(v.ID, positions(), 0, 4); active != "options" {
		t.Errorf("stale scroll changed active to %q", active)
	}
	if active, _ := m.ScrollSeq(v.ID, positions(), 0, 6); active != "intro" {
		t.Errorf("active = %q, want intro", active)
	}
}

func TestClose(t *testing.T) {
	m := newTestManager(t, Options{})
	v, _ := m.Open(context.Background(), "grep", render.ThemeLight)

	if err := m.Close(v.ID); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := m.Get(v.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after close: %v", err)
	}
	if _, err := m.Scroll(v.ID, positions(), 0); !errors.Is(err, ErrNotFound) {
		t.Errorf("Scroll after close: %v", err)
	}
	if err := m.Close(v.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Close: %v", err)
	}
}

func TestSweep_ExpiresIdleViews(t *testing.T) {
	m := newTestManager(t, Options{TTL: time.Minute})
	ctx := context.Background()
	idle, _ := m.Open(ctx, "grep", render.ThemeLight)
	fresh, _ := m.Open(ctx, "grep", render.ThemeLight)

	idle.mu.Lock()
	idle.UpdatedAt = time.Now().Add(-time.Hour)
	idle.mu.Unlock()

	m.sweep()

	if _, err := m.Get(idle.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("idle view should be expired")
	}
	if _, err := m.Get(fresh.ID); err != nil {
		t.Errorf("fresh view should survive: %v", err)
	}
	if !idle.tracker.Detached() {
		t.Errorf("expired view tracker should be detached")
	}
}

func TestManager_StartStop(t *testing.T) {
	m := newTestManager(t, Options{CleanupInterval: time.Millisecond})
	m.Start(context.Background())
	m.Stop()
}

func TestStore_CleanupDoesNotHoldRegistryDuringViewLock(t *testing.T) {
	m := newTestManager(t, Options{TTL: time.Minute})
	ctx := context.Background()
	busy, _ := m.Open(ctx, "grep", render.ThemeLight)
	other, _ := m.Open(ctx, "grep", render.ThemeLight)

	busy.mu.Lock()
	swept := make(chan struct{})
	go func() {
		m.views.Cleanup()
		close(swept)
	}()

	// Lookups proceed while the sweep waits on the busy view.
	got := make(chan error, 1)
	go func() {
		_, err := m.Get(other.ID)
		got <- err
	}()
	select {
	case err := <-got:
		if err != nil {
			t.Errorf("Get: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Error("Get blocked behind a locked view")
	}

	busy.mu.Unlock()
	<-swept
}
