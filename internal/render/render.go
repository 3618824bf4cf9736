// Package render converts manual page markdown into HTML for display.
//
// Headings of level 1-3 get an anchor id derived from their rendered text
// and a scroll affordance; fenced code blocks are highlighted with a chroma
// style picked by the theme.
package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"

	"github.com/dgallion1/manview/internal/document"
)

// ErrRender indicates markdown conversion failed.
var ErrRender = errors.New("render failed")

// Options configures a Renderer.
type Options struct {
	LightStyle   string // chroma style for ThemeLight
	DarkStyle    string // chroma style for ThemeDark
	Disambiguate bool   // suffix colliding anchors with their ordinal in the full document
	Stats        *Stats // optional latency recorder
}

// Page is the rendered form of a document.
type Page struct {
	HTML    string   `json:"html"`
	Theme   Theme    `json:"theme"`
	Anchors []Anchor `json:"anchors"`
}

// AnchorIDs returns the ids of the rendered anchors in document order.
func (p *Page) AnchorIDs() []string {
	ids := make([]string, len(p.Anchors))
	for i, a := range p.Anchors {
		ids[i] = a.ID
	}
	return ids
}

// Renderer holds one goldmark instance per theme.
type Renderer struct {
	md           map[Theme]goldmark.Markdown
	disambiguate bool
	stats        *Stats
}

// New builds a Renderer. Unknown chroma style names are rejected.
func New(opts Options) (*Renderer, error) {
	if opts.LightStyle == "" {
		opts.LightStyle = "github"
	}
	if opts.DarkStyle == "" {
		opts.DarkStyle = "monokai"
	}
	for _, name := range []string{opts.LightStyle, opts.DarkStyle} {
		if _, ok := styles.Registry[name]; !ok {
			return nil, fmt.Errorf("unknown highlight style %q", name)
		}
	}
	return &Renderer{
		md: map[Theme]goldmark.Markdown{
			ThemeLight: newMarkdown(opts.LightStyle),
			ThemeDark:  newMarkdown(opts.DarkStyle),
		},
		disambiguate: opts.Disambiguate,
		stats:        opts.Stats,
	}, nil
}

func newMarkdown(style string) goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(
			extension.GFM, // Tables, strikethrough, autolinks, task lists
			highlighting.NewHighlighting(
				highlighting.WithStyle(style),
				highlighting.WithFormatOptions(
					chromahtml.WithLineNumbers(true),
				),
			),
		),
		goldmark.WithParserOptions(
			parser.WithASTTransformers(
				util.Prioritized(&anchorTransformer{}, 100),
				util.Prioritized(presentationTransformer{}, 200),
			),
		),
		goldmark.WithRendererOptions(
			// Must win over the default heading renderer (priority 1000).
			renderer.WithNodeRenderers(util.Prioritized(&headingRenderer{}, 100)),
		),
	)
}

// Render converts doc to an HTML fragment and lists the anchors it
// contains. Goldmark does not take a context, so conversion runs in a
// goroutine and Render returns early on cancellation.
func (r *Renderer) Render(ctx context.Context, doc *document.Document, theme Theme) (*Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	md, ok := r.md[theme]
	if !ok {
		return nil, fmt.Errorf("%w: unknown theme %q", ErrRender, theme)
	}

	type result struct {
		page *Page
		err  error
	}
	done := make(chan result, 1)
	start := time.Now()

	pctx := parser.NewContext()
	if r.disambiguate {
		pctx.Set(headingAnchorsKey, newLineAnchors(doc))
	}

	go func() {
		var buf bytes.Buffer
		if err := md.Convert([]byte(doc.Text()), &buf, parser.WithContext(pctx)); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrRender, err)}
			return
		}
		anchors, err := CollectAnchors(bytes.NewReader(buf.Bytes()))
		if err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrRender, err)}
			return
		}
		done <- result{page: &Page{HTML: buf.String(), Theme: theme, Anchors: anchors}}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-done:
		if res.err == nil && r.stats != nil {
			r.stats.Observe(time.Since(start))
		}
		return res.page, res.err
	}
}
