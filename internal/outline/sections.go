package outline

import (
	"encoding/json"
	"io"
	"strings"
)

// Section is the body text found under one heading.
type Section struct {
	HeadingText  string `json:"heading_text"`
	HeadingLevel Level  `json:"heading_level"`
	Page         int    `json:"page"`
	Content      string `json:"content"`
}

// Sections groups the non-heading spans that follow each heading up to the
// next one. Text before the first heading is not part of any section.
func (a *Analysis) Sections() []Section {
	if a == nil || len(a.Headings) == 0 {
		return []Section{}
	}
	out := make([]Section, 0, len(a.Headings))
	for k, h := range a.Headings {
		end := len(a.Spans)
		if k+1 < len(a.Headings) {
			end = a.Headings[k+1].Index
		}
		var lines []string
		for i := h.Index + 1; i < end; i++ {
			if a.claimed[i] {
				continue
			}
			lines = append(lines, a.Spans[i].Text)
		}
		out = append(out, Section{
			HeadingText:  h.Text,
			HeadingLevel: h.Level,
			Page:         h.Page,
			Content:      strings.Join(lines, "\n"),
		})
	}
	return out
}

// WriteJSON writes v as indented JSON without escaping HTML characters.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
