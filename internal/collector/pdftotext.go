package collector

import (
	"bytes"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/dgallion1/docoutline/internal/outline"
)

// pdftotextSpans runs poppler's pdftotext in bbox mode. It reports no font
// sizes, so each line's box height stands in for the size.
func pdftotextSpans(path string) ([]outline.Span, error) {
	cmd := exec.Command("pdftotext", "-bbox-layout", "-enc", "UTF-8", path, "-")
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("pdftotext: %w", err)
	}
	return parseBBoxLayout(bytes.NewReader(out))
}

// parseBBoxLayout reads pdftotext's XHTML bbox output:
//
//	<page width=".." height=".."><flow><block><line xMin yMin xMax yMax>
//	<word ...>text</word>...
//
// Coordinates are already top-down.
func parseBBoxLayout(r io.Reader) ([]outline.Span, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse bbox layout: %w", err)
	}

	var spans []outline.Span
	page := 0
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "page":
				page++
			case "line":
				var words []string
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					if c.Type == html.ElementNode && c.Data == "word" {
						words = append(words, textContent(c))
					}
				}
				text := cleanText(strings.Join(words, " "))
				size := attrFloat(n, "ymax") - attrFloat(n, "ymin")
				if text != "" && page > 0 {
					spans = append(spans, outline.Span{
						Text:     text,
						FontSize: size,
						X:        attrFloat(n, "xmin"),
						Y:        attrFloat(n, "ymin"),
						Page:     page,
					})
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return spans, nil
}

// attrFloat reads a numeric attribute. The HTML parser lowercases names.
func attrFloat(n *html.Node, key string) float64 {
	for _, a := range n.Attr {
		if a.Key == key {
			v, err := strconv.ParseFloat(strings.TrimSpace(a.Val), 64)
			if err == nil {
				return v
			}
		}
	}
	return 0
}
