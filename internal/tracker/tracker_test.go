package tracker

import "testing"

var page = []Position{
	{ID: "name", Top: 0},
	{ID: "synopsis", Top: 300},
	{ID: "", Top: 450}, // level 4 heading, no anchor
	{ID: "options", Top: 800},
}

func TestActive(t *testing.T) {
	cases := []struct {
		scrollY float64
		want    string
	}{
		{0, "name"},
		{199, "name"},
		{200, "synopsis"},
		{500, "synopsis"},
		{700, "options"},
		{5000, "options"},
	}
	for _, c := range cases {
		if got := Active(page, c.scrollY, DefaultOffset); got != c.want {
			t.Errorf("Active(scrollY=%v) = %q, want %q", c.scrollY, got, c.want)
		}
	}
}

func TestActive_NoneQualifies(t *testing.T) {
	headings := []Position{{ID: "a", Top: 500}, {ID: "b", Top: 900}}
	if got := Active(headings, 0, DefaultOffset); got != "" {
		t.Errorf("expected no active section, got %q", got)
	}
}

func TestActive_LastInDocumentOrderWins(t *testing.T) {
	// Out-of-order tops can happen with floated elements; order, not
	// position, decides.
	headings := []Position{{ID: "a", Top: 50}, {ID: "b", Top: 10}, {ID: "c", Top: 400}}
	if got := Active(headings, 0, DefaultOffset); got != "b" {
		t.Errorf("expected %q, got %q", "b", got)
	}
}

func TestActive_NoAnchors(t *testing.T) {
	if got := Active(nil, 1000, DefaultOffset); got != "" {
		t.Errorf("expected empty, got %q", got)
	}
	unanchored := []Position{{Top: 0}, {Top: 10}}
	if got := Active(unanchored, 1000, DefaultOffset); got != "" {
		t.Errorf("expected empty for unanchored headings, got %q", got)
	}
}

func TestTracker_StateMachine(t *testing.T) {
	tr := New(DefaultOffset)
	if tr.State() != NoneActive || tr.Current() != "" {
		t.Fatalf("expected initial NoneActive, got %v %q", tr.State(), tr.Current())
	}

	tr.OnScroll(page, 250)
	if tr.State() != SectionActive || tr.Current() != "synopsis" {
		t.Errorf("expected Active(synopsis), got %v %q", tr.State(), tr.Current())
	}

	tr.OnScroll(page[3:], 0)
	if tr.State() != NoneActive {
		t.Errorf("expected NoneActive after scrolling above all headings, got %q", tr.Current())
	}

	tr.OnScroll(page, 900)
	if tr.Current() != "options" {
		t.Errorf("expected options, got %q", tr.Current())
	}
}

func TestTracker_Retain(t *testing.T) {
	tr := New(DefaultOffset)
	tr.OnScroll(page, 900)

	tr.Retain(map[string]bool{"options": true})
	if tr.Current() != "options" {
		t.Errorf("expected options kept, got %q", tr.Current())
	}

	tr.Retain(map[string]bool{"name": true})
	if tr.Current() != "" {
		t.Errorf("expected active id cleared, got %q", tr.Current())
	}
}

func TestTracker_Detach(t *testing.T) {
	tr := New(DefaultOffset)
	tr.OnScroll(page, 900)
	tr.Detach()
	if !tr.Detached() || tr.Current() != "" {
		t.Fatalf("expected detached tracker with no active id")
	}
	tr.OnScroll(page, 900)
	if tr.Current() != "" {
		t.Errorf("expected scroll after detach to be ignored, got %q", tr.Current())
	}
}

func TestState_String(t *testing.T) {
	if NoneActive.String() != "none" || SectionActive.String() != "active" {
		t.Error("unexpected state names")
	}
}
