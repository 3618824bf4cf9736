package render

import (
	"bytes"
	"sort"
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/dgallion1/manview/internal/document"
	"github.com/dgallion1/manview/internal/slug"
)

// AnchorClass marks the scroll affordance appended to anchored headings.
const AnchorClass = "heading-anchor"

// AssignAnchor derives the rendered anchor for a heading from its text
// content. It must stay identical to the outline's derivation.
func AssignAnchor(headingText string) string {
	return slug.Slug(headingText)
}

// HeadingText returns the plain text content of a heading node, with inline
// formatting stripped.
func HeadingText(h *ast.Heading, source []byte) string {
	var buf bytes.Buffer
	writeInlineText(&buf, h, source)
	return strings.TrimSpace(buf.String())
}

func writeInlineText(buf *bytes.Buffer, n ast.Node, source []byte) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(t.Value)
		case *ast.AutoLink:
			buf.Write(t.Label(source))
		case *ast.RawHTML:
			// Raw HTML is not rendered, so it contributes no text.
		default:
			writeInlineText(buf, c, source)
		}
	}
}

// headingAnchorsKey carries a *lineAnchors through the parser context when
// colliding anchors are disambiguated.
var headingAnchorsKey = parser.NewContextKey()

// lineAnchors assigns anchors by source line instead of by heading text.
type lineAnchors struct {
	starts []int          // byte offset of each line in the source
	byLine map[int]string // line index -> anchor
}

func newLineAnchors(doc *document.Document) *lineAnchors {
	starts := make([]int, doc.Len())
	off := 0
	for i := range starts {
		starts[i] = off
		off += len(doc.Line(i)) + 1
	}
	return &lineAnchors{starts: starts, byLine: document.UniqueHeadingAnchors(doc)}
}

func (l *lineAnchors) lookup(offset int) (string, bool) {
	line := sort.Search(len(l.starts), func(i int) bool { return l.starts[i] > offset }) - 1
	id, ok := l.byLine[line]
	return id, ok
}

// anchorTransformer stamps an id attribute on every heading of level 1-3
// while the document is converted for display. By default the id is the
// slug of the rendered heading text; outline extraction derives its ids
// independently and both sides only share slug.Slug. With a *lineAnchors
// in the parser context, headings that are outline entries take the
// disambiguated anchor of their source line.
type anchorTransformer struct{}

func (t *anchorTransformer) Transform(doc *ast.Document, reader text.Reader, pc parser.Context) {
	source := reader.Source()
	byLine, _ := pc.Get(headingAnchorsKey).(*lineAnchors)

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		if h.Level > document.MaxLinkableLevel {
			return ast.WalkSkipChildren, nil
		}
		txt := HeadingText(h, source)
		if txt == "" {
			return ast.WalkSkipChildren, nil
		}

		id := AssignAnchor(txt)
		if byLine != nil && h.Lines().Len() > 0 {
			if unique, ok := byLine.lookup(h.Lines().At(0).Start); ok {
				id = unique
			}
		}
		if id != "" {
			h.SetAttributeString("id", []byte(id))
		}
		return ast.WalkSkipChildren, nil
	})
}

// headingRenderer renders headings with their anchor and, for anchored
// headings, a link that asks the viewer to scroll to the section.
type headingRenderer struct{}

func (r *headingRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindHeading, r.renderHeading)
}

func (r *headingRenderer) renderHeading(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*ast.Heading)
	if entering {
		_, _ = w.WriteString("<h")
		_ = w.WriteByte("0123456"[n.Level])
		if n.Attributes() != nil {
			html.RenderAttributes(w, n, html.HeadingAttributeFilter)
		}
		_ = w.WriteByte('>')
		return ast.WalkContinue, nil
	}

	if id := headingID(n); id != "" {
		_, _ = w.WriteString(`<a class="` + AnchorClass + `" href="#`)
		_, _ = w.Write(util.EscapeHTML([]byte(id)))
		_, _ = w.WriteString(`" data-scroll-to="`)
		_, _ = w.Write(util.EscapeHTML([]byte(id)))
		_, _ = w.WriteString(`" aria-label="Scroll to section">#</a>`)
	}
	_, _ = w.WriteString("</h")
	_ = w.WriteByte("0123456"[n.Level])
	_, _ = w.WriteString(">\n")
	return ast.WalkContinue, nil
}

func headingID(n *ast.Heading) string {
	v, ok := n.AttributeString("id")
	if !ok {
		return ""
	}
	switch id := v.(type) {
	case []byte:
		return string(id)
	case string:
		return id
	}
	return ""
}
