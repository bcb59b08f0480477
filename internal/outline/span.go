package outline

import (
	"math"
	"strings"
)

// Span is a run of text sharing one font size and weight, as emitted by a collector.
type Span struct {
	Text     string  // Rendered text, trimmed
	FontSize float64 // Points
	Bold     bool
	X        float64 // Left edge; breaks ties between spans on one line
	Y        float64 // Distance from the top of the page, increasing downward
	Page     int     // 1-indexed
}

// Level is a heading rank in the outline.
type Level string

const (
	H1 Level = "H1"
	H2 Level = "H2"
	H3 Level = "H3"
)

// levelByRank maps 0,1,2 to H1,H2,H3.
var levelByRank = [...]Level{H1, H2, H3}

// levelForDepth caps a 1-based depth at H3.
func levelForDepth(depth int) Level {
	if depth < 1 {
		depth = 1
	}
	if depth > len(levelByRank) {
		depth = len(levelByRank)
	}
	return levelByRank[depth-1]
}

// Entry is one heading in the outline.
type Entry struct {
	Level Level  `json:"level"`
	Text  string `json:"text"`
	Page  int    `json:"page"`
}

// Result is the serialized outline of one document.
type Result struct {
	Title   string  `json:"title"`
	Outline []Entry `json:"outline"`
}

// Empty returns the result used for documents that yield nothing.
func Empty() Result {
	return Result{Outline: []Entry{}}
}

// Skipped records a span dropped before classification.
type Skipped struct {
	Index  int    // Position in the input slice
	Page   int
	Reason string
}

// Sanitize drops malformed spans and trims the text of the rest. The input is
// not modified.
func Sanitize(spans []Span) ([]Span, []Skipped) {
	valid := make([]Span, 0, len(spans))
	var skipped []Skipped
	for i, s := range spans {
		s.Text = strings.TrimSpace(s.Text)
		if reason := malformed(s); reason != "" {
			skipped = append(skipped, Skipped{Index: i, Page: s.Page, Reason: reason})
			continue
		}
		valid = append(valid, s)
	}
	return valid, skipped
}

func malformed(s Span) string {
	switch {
	case s.Text == "":
		return "empty text"
	case math.IsNaN(s.FontSize) || math.IsInf(s.FontSize, 0) || s.FontSize <= 0:
		return "non-positive font size"
	case s.Page < 1:
		return "page out of range"
	case math.IsNaN(s.Y) || math.IsInf(s.Y, 0) || math.IsNaN(s.X) || math.IsInf(s.X, 0):
		return "non-finite position"
	}
	return ""
}
