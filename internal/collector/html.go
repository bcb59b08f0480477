package collector

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/dgallion1/docoutline/internal/outline"
)

// HTMLCollector handles HTML files. Heading tags get the stylesheet size for
// their level and are bold; block text gets body size and is bold only when
// every word sits inside <b> or <strong>.
type HTMLCollector struct{}

func (c *HTMLCollector) Collect(r io.Reader, filename string) ([]outline.Span, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var out flowSpans
	var walk func(n *html.Node, bold bool)
	walk = func(n *html.Node, bold bool) {
		switch n.Type {
		case html.TextNode:
			out.add(n.Data, bodySize, bold)
			return
		case html.ElementNode:
			if level := headingLevel(n.Data); level > 0 {
				out.add(textContent(n), headingSize(level), true)
				return
			}
			switch n.Data {
			case "script", "style", "nav", "noscript", "template", "head":
				return
			case "p", "li", "td", "th", "dt", "dd", "blockquote", "caption", "figcaption", "pre":
				out.add(textContent(n), bodySize, bold || strongOnlyHTML(n))
				return
			case "b", "strong":
				bold = true
			}
		}
		for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
			walk(ch, bold)
		}
	}

	if body := findBody(doc); body != nil {
		walk(body, false)
	} else {
		walk(doc, false)
	}
	return out.spans, nil
}

func headingLevel(tag string) int {
	switch tag {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	case "h4":
		return 4
	case "h5":
		return 5
	case "h6":
		return 6
	}
	return 0
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}

// strongOnlyHTML reports whether n has visible text and all of it is wrapped
// in <b> or <strong>.
func strongOnlyHTML(n *html.Node) bool {
	seen, plain := false, false
	var visit func(*html.Node, bool)
	visit = func(n *html.Node, bold bool) {
		if n.Type == html.TextNode && strings.TrimSpace(n.Data) != "" {
			if bold {
				seen = true
			} else {
				plain = true
			}
		}
		if n.Type == html.ElementNode && (n.Data == "b" || n.Data == "strong") {
			bold = true
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c, bold)
		}
	}
	visit(n, false)
	return seen && !plain
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
