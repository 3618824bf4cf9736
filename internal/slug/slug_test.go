package slug

import "testing"

func TestSlug_Examples(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Getting Started", "getting-started"},
		{"---Edge---", "edge"},
		{"install-guide", "install-guide"},
		{"A", "a"},
		{"Overview", "overview"},
		{"  Leading and trailing  ", "leading-and-trailing"},
		{"ls(1) -- list directory", "ls-1-list-directory"},
		{"`grep` options", "grep-options"},
		{"**Bold** Title", "bold-title"},
		{"2nd Section", "2nd-section"},
		{"Résumé", "r-sum"},
		{"日本語", ""},
		{"", ""},
		{"---", ""},
		{"a__b..c", "a-b-c"},
		{"UPPER CASE", "upper-case"},
	}
	for _, c := range cases {
		if got := Slug(c.in); got != c.want {
			t.Errorf("Slug(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestSlug_Deterministic(t *testing.T) {
	inputs := []string{"Getting Started", "SYNOPSIS", "-x, --extended", "Ünïcödé heading"}
	for _, in := range inputs {
		if a, b := Slug(in), Slug(in); a != b {
			t.Errorf("Slug(%q) not deterministic: %q vs %q", in, a, b)
		}
	}
}

func TestSlug_IdempotentOnCleanInput(t *testing.T) {
	inputs := []string{"install-guide", "getting-started", "a1-b2", "x"}
	for _, in := range inputs {
		if got := Slug(in); got != in {
			t.Errorf("Slug(%q) = %q, expected unchanged", in, got)
		}
		if twice := Slug(Slug(in)); twice != in {
			t.Errorf("Slug(Slug(%q)) = %q", in, twice)
		}
	}
}

func TestSlug_OutputAlphabet(t *testing.T) {
	got := Slug("Hello, World! -- 100% (done) ~ ok?")
	for _, r := range got {
		if !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-') {
			t.Fatalf("unexpected rune %q in %q", r, got)
		}
	}
	if got != "hello-world-100-done-ok" {
		t.Errorf("got %q", got)
	}
}

func TestDisambiguator_FirstOccurrenceUnsuffixed(t *testing.T) {
	d := NewDisambiguator()
	if got := d.Anchor("Overview", 0); got != "overview" {
		t.Errorf("first anchor = %q, want %q", got, "overview")
	}
	if got := d.Anchor("Options", 1); got != "options" {
		t.Errorf("second anchor = %q, want %q", got, "options")
	}
	if got := d.Anchor("Overview", 2); got != "overview-2" {
		t.Errorf("duplicate anchor = %q, want %q", got, "overview-2")
	}
	if got := d.Anchor("overview", 5); got != "overview-5" {
		t.Errorf("case-folded duplicate = %q, want %q", got, "overview-5")
	}
}

func TestDisambiguator_FreshPassesAgree(t *testing.T) {
	texts := []string{"Name", "Options", "Name", "See Also", "Options"}
	run := func() []string {
		d := NewDisambiguator()
		var out []string
		for i, tx := range texts {
			out = append(out, d.Anchor(tx, i))
		}
		return out
	}
	a, b := run(), run()
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("pass mismatch at %d: %q vs %q", i, a[i], b[i])
		}
	}
	want := []string{"name", "options", "name-2", "see-also", "options-4"}
	for i := range want {
		if a[i] != want[i] {
			t.Errorf("anchor %d = %q, want %q", i, a[i], want[i])
		}
	}
}
