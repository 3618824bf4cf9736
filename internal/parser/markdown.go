package parser

import (
	"bytes"
	"io"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// MarkdownParser passes markdown through, rewriting setext headings
// ("Title" underlined with === or ---) as ATX headings so the line-based
// outline sees them.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (string, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	src = bytes.TrimPrefix(src, utf8BOM)
	src = bytes.ReplaceAll(src, []byte("\r\n"), []byte("\n"))
	return normalizeSetext(src), nil
}

func normalizeSetext(src []byte) string {
	lines := strings.Split(string(src), "\n")

	// Byte offset at which each line starts.
	starts := make([]int, len(lines))
	off := 0
	for i, l := range lines {
		starts[i] = off
		off += len(l) + 1
	}
	lineOf := func(pos int) int {
		return sort.Search(len(starts), func(i int) bool { return starts[i] > pos }) - 1
	}

	type rewrite struct {
		first, last int // inclusive line range, underline included
		text        string
		level       int
	}
	var rewrites []rewrite

	doc := goldmark.New().Parser().Parse(text.NewReader(src))
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		h, ok := n.(*ast.Heading)
		if !ok || h.Lines().Len() == 0 {
			continue
		}
		first := lineOf(h.Lines().At(0).Start)
		if strings.HasPrefix(strings.TrimLeft(lines[first], " "), "#") {
			continue // already ATX
		}
		last := lineOf(h.Lines().At(h.Lines().Len()-1).Start) + 1
		if last >= len(lines) {
			continue
		}
		var parts []string
		for i := 0; i < h.Lines().Len(); i++ {
			seg := h.Lines().At(i)
			parts = append(parts, strings.TrimSpace(string(seg.Value(src))))
		}
		rewrites = append(rewrites, rewrite{
			first: first,
			last:  last,
			text:  strings.Join(parts, " "),
			level: h.Level,
		})
	}
	if len(rewrites) == 0 {
		return string(src)
	}

	out := make([]string, 0, len(lines))
	next := 0
	for i := 0; i < len(lines); i++ {
		if next < len(rewrites) && i == rewrites[next].first {
			rw := rewrites[next]
			out = append(out, strings.Repeat("#", rw.level)+" "+rw.text)
			i = rw.last
			next++
			continue
		}
		out = append(out, lines[i])
	}
	return strings.Join(out, "\n")
}
