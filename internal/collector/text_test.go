package collector

import (
	"strings"
	"testing"
)

func TestTextCollector_LinesAndPages(t *testing.T) {
	input := "Title line\n\n  indented body  \nlast on page one\fPage two first\nsecond"
	spans, err := (&TextCollector{}).Collect(strings.NewReader(input), "notes.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []struct {
		text string
		page int
		y    float64
	}{
		{"Title line", 1, 0},
		{"indented body", 1, 2 * lineStep},
		{"last on page one", 1, 3 * lineStep},
		{"Page two first", 2, 0},
		{"second", 2, lineStep},
	}
	if len(spans) != len(want) {
		t.Fatalf("expected %d spans, got %d: %+v", len(want), len(spans), spans)
	}
	for i, w := range want {
		s := spans[i]
		if s.Text != w.text || s.Page != w.page || s.Y != w.y {
			t.Errorf("span[%d]: expected %q p%d y%v, got %q p%d y%v", i, w.text, w.page, w.y, s.Text, s.Page, s.Y)
		}
		if s.FontSize != bodySize || s.Bold {
			t.Errorf("span[%d]: expected plain body text, got size %v bold %v", i, s.FontSize, s.Bold)
		}
	}
}

func TestTextCollector_EmptyInput(t *testing.T) {
	spans, err := (&TextCollector{}).Collect(strings.NewReader(""), "empty.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(spans) != 0 {
		t.Errorf("expected 0 spans for empty input, got %d", len(spans))
	}
}

func TestTextCollector_Normalizes(t *testing.T) {
	spans, err := (&TextCollector{}).Collect(strings.NewReader("ﬁeld   notes"), "x.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(spans) != 1 || spans[0].Text != "field notes" {
		t.Errorf("expected normalized text, got %+v", spans)
	}
}
