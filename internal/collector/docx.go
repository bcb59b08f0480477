package collector

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fumiama/go-docx"

	"github.com/dgallion1/docoutline/internal/outline"
)

// docxBodySize is Word's Normal style size.
const docxBodySize = 11.0

// Sizes Word's built-in styles use when a run carries no explicit w:sz.
var docxStyleSizes = map[string]float64{
	"title":    28,
	"subtitle": 15,
	"heading1": 16,
	"heading2": 13,
	"heading3": 12,
	"heading4": 11,
	"heading5": 11,
	"heading6": 11,
}

// DOCXCollector handles .docx files. Each paragraph becomes one span on
// page 1; DOCX has no fixed pagination.
type DOCXCollector struct{}

func (c *DOCXCollector) Collect(r io.Reader, filename string) ([]outline.Span, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read docx: %w", err)
	}
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	var out flowSpans
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		text, size, bold := docxParagraph(para)
		out.add(text, size, bold)
	}
	return out.spans, nil
}

// docxParagraph flattens a paragraph's runs. The span size is the largest
// run size; the span is bold when every run with visible text is bold.
func docxParagraph(para *docx.Paragraph) (string, float64, bool) {
	style := docxStyle(para)
	styleSize, styled := docxStyleSizes[style]
	if !styled {
		styleSize = docxBodySize
	}

	var buf strings.Builder
	size := 0.0
	allBold, anyText := true, false
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		var runText strings.Builder
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				runText.WriteString(t.Text)
			}
		}
		if runText.Len() == 0 {
			continue
		}
		buf.WriteString(runText.String())
		if strings.TrimSpace(runText.String()) == "" {
			continue
		}
		anyText = true

		runSize := styleSize
		bold := styled && strings.HasPrefix(style, "heading")
		if rp := run.RunProperties; rp != nil {
			if rp.Size != nil {
				if hp, err := strconv.ParseFloat(rp.Size.Val, 64); err == nil && hp > 0 {
					runSize = hp / 2
				}
			}
			if rp.Bold != nil {
				bold = true
			}
		}
		if runSize > size {
			size = runSize
		}
		allBold = allBold && bold
	}
	if size == 0 {
		size = styleSize
	}
	return buf.String(), size, anyText && allBold
}

// docxStyle returns the paragraph style id lowercased without spaces, so
// "Heading1" and "heading 1" compare equal.
func docxStyle(para *docx.Paragraph) string {
	if para.Properties == nil || para.Properties.Style == nil {
		return ""
	}
	return strings.ToLower(strings.ReplaceAll(para.Properties.Style.Val, " ", ""))
}
