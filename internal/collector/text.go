package collector

import (
	"bufio"
	"io"
	"strings"

	"github.com/dgallion1/docoutline/internal/outline"
)

// TextCollector handles plain text files. Every non-empty line becomes a
// body-size span; a form feed starts a new page.
type TextCollector struct{}

func (c *TextCollector) Collect(r io.Reader, filename string) ([]outline.Span, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var spans []outline.Span
	page, line := 1, 0
	emit := func(s string) {
		s = cleanText(s)
		if s != "" {
			spans = append(spans, outline.Span{
				Text:     s,
				FontSize: bodySize,
				Y:        float64(line) * lineStep,
				Page:     page,
			})
		}
		line++
	}

	for scanner.Scan() {
		parts := strings.Split(scanner.Text(), "\f")
		for i, part := range parts {
			if i > 0 {
				page++
				line = 0
			}
			emit(part)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return spans, nil
}
