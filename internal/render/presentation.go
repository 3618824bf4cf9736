package render

import (
	"github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// CSS classes attached to presentation-only nodes.
const (
	classCodeSpan   = "doc-code"
	classBlockquote = "doc-blockquote"
	classTable      = "doc-table"
)

// presentationTransformer tags inline code, block quotes and tables with
// classes the page stylesheet targets.
type presentationTransformer struct{}

func (presentationTransformer) Transform(doc *ast.Document, _ text.Reader, _ parser.Context) {
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n.Kind() {
		case ast.KindCodeSpan:
			n.SetAttributeString("class", []byte(classCodeSpan))
			return ast.WalkSkipChildren, nil
		case ast.KindBlockquote:
			n.SetAttributeString("class", []byte(classBlockquote))
		case extast.KindTable:
			n.SetAttributeString("class", []byte(classTable))
		}
		return ast.WalkContinue, nil
	})
}
