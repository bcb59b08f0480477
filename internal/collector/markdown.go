package collector

import (
	"bytes"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/dgallion1/docoutline/internal/outline"
)

// MarkdownCollector handles Markdown files using goldmark. ATX and setext
// headings get the stylesheet size for their level; a paragraph that is
// nothing but strong emphasis is marked bold.
type MarkdownCollector struct{}

func (c *MarkdownCollector) Collect(r io.Reader, filename string) ([]outline.Span, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	var out flowSpans
	var walk func(n ast.Node)
	walk = func(n ast.Node) {
		switch node := n.(type) {
		case *ast.Heading:
			out.add(extractText(node, src), headingSize(node.Level), true)
		case *ast.Paragraph, *ast.TextBlock:
			out.add(extractText(node, src), bodySize, strongOnly(node, src))
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			for _, line := range strings.Split(extractText(node, src), "\n") {
				out.add(line, bodySize, false)
			}
		case *ast.ThematicBreak, *ast.HTMLBlock:
		default:
			for ch := n.FirstChild(); ch != nil; ch = ch.NextSibling() {
				walk(ch)
			}
		}
	}
	walk(doc)
	return out.spans, nil
}

// extractText gets the text content of a goldmark AST node.
func extractText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	if n.Type() == ast.TypeBlock {
		lines := n.Lines()
		if !n.HasChildren() {
			for i := 0; i < lines.Len(); i++ {
				line := lines.At(i)
				buf.Write(line.Value(src))
			}
			return strings.TrimSpace(buf.String())
		}
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(t.Value)
		default:
			buf.WriteString(extractText(c, src))
		}
	}
	return strings.TrimSpace(buf.String())
}

// strongOnly reports whether every visible inline of a block sits inside a
// level-2 emphasis (**bold**).
func strongOnly(block ast.Node, src []byte) bool {
	seen := false
	for c := block.FirstChild(); c != nil; c = c.NextSibling() {
		if em, ok := c.(*ast.Emphasis); ok && em.Level == 2 {
			seen = true
			continue
		}
		if t, ok := c.(*ast.Text); ok && len(bytes.TrimSpace(t.Value(src))) == 0 {
			continue
		}
		return false
	}
	return seen
}
