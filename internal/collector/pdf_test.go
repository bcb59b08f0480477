package collector

import (
	"strings"
	"testing"

	pdflib "github.com/ledongthuc/pdf"
)

// glyphs lays out s one glyph per rune starting at x, each half an em wide.
func glyphs(s string, x, y, size float64, font string) []pdflib.Text {
	var out []pdflib.Text
	w := size / 2
	for _, r := range s {
		out = append(out, pdflib.Text{Font: font, FontSize: size, X: x, Y: y, W: w, S: string(r)})
		x += w
	}
	return out
}

func TestGroupGlyphs(t *testing.T) {
	var in []pdflib.Text
	// Body line first in stream order; the grouping must still put the
	// title on top.
	in = append(in, glyphs("Hello", 72, 650, 11, "Times")...)
	in = append(in, glyphs("world", 72+5*5.5+3, 650, 11, "Times")...)
	in = append(in, glyphs("7", 500, 650, 11, "Times")...)
	in = append(in, glyphs("Report", 100, 700, 24, "ABCDEF+Helvetica-Bold")...)
	in = append(in, pdflib.Text{S: "", FontSize: 11, X: 10, Y: 10})

	spans := groupGlyphs(in, 792, 3)

	want := []struct {
		text string
		size float64
		bold bool
		x, y float64
	}{
		{"Report", 24, true, 100, 92},
		{"Hello world", 11, false, 72, 142},
		{"7", 11, false, 500, 142},
	}
	if len(spans) != len(want) {
		t.Fatalf("expected %d spans, got %d: %+v", len(want), len(spans), spans)
	}
	for i, w := range want {
		s := spans[i]
		if s.Text != w.text || s.FontSize != w.size || s.Bold != w.bold || s.X != w.x || s.Y != w.y || s.Page != 3 {
			t.Errorf("span[%d]: expected %+v, got %+v", i, w, s)
		}
	}
}

func TestGroupGlyphs_FontChangeSplits(t *testing.T) {
	var in []pdflib.Text
	in = append(in, glyphs("Note", 72, 500, 10, "Arial-BoldMT")...)
	in = append(in, pdflib.Text{Font: "ArialMT", FontSize: 10, X: 92, Y: 500, W: 3, S: " "})
	in = append(in, glyphs("plain words", 95, 500.4, 10, "ArialMT")...)

	spans := groupGlyphs(in, 800, 1)
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d: %+v", len(spans), spans)
	}
	if spans[0].Text != "Note" || !spans[0].Bold {
		t.Errorf("expected bold %q, got %+v", "Note", spans[0])
	}
	if spans[1].Text != "plain words" || spans[1].Bold {
		t.Errorf("expected regular %q, got %+v", "plain words", spans[1])
	}
}

func TestGroupGlyphs_DropsInvalid(t *testing.T) {
	in := []pdflib.Text{
		{Font: "F", FontSize: 0, X: 1, Y: 1, S: "x"},
		{Font: "F", FontSize: -3, X: 1, Y: 1, S: "y"},
	}
	if spans := groupGlyphs(in, 100, 1); len(spans) != 0 {
		t.Errorf("expected no spans, got %+v", spans)
	}
}

func TestIsBoldFont(t *testing.T) {
	tests := map[string]bool{
		"ABCDEF+Helvetica-Bold": true,
		"Arial-BoldMT":          true,
		"Lato-Black":            true,
		"Montserrat-SemiBold":   true,
		"SourceSans-Heavy":      true,
		"TimesNewRomanPSMT":     false,
		"Helvetica-Oblique":     false,
	}
	for name, want := range tests {
		if got := isBoldFont(name); got != want {
			t.Errorf("isBoldFont(%q): expected %v, got %v", name, want, got)
		}
	}
}

func TestParseBBoxLayout(t *testing.T) {
	input := `<!DOCTYPE html>
<html xmlns="http://www.w3.org/1999/xhtml">
<head><title></title></head>
<body>
<doc>
  <page width="612.000000" height="792.000000">
    <flow>
      <block xMin="72.000000" yMin="70.000000" xMax="300.000000" yMax="94.000000">
        <line xMin="72.000000" yMin="70.000000" xMax="300.000000" yMax="94.000000">
          <word xMin="72.000000" yMin="70.000000" xMax="150.000000" yMax="94.000000">Annual</word>
          <word xMin="155.000000" yMin="70.000000" xMax="300.000000" yMax="94.000000">Report</word>
        </line>
      </block>
    </flow>
  </page>
  <page width="612.000000" height="792.000000">
    <flow>
      <block>
        <line xMin="72" yMin="100" xMax="200" yMax="112"><word>Body</word></line>
      </block>
    </flow>
  </page>
</doc>
</body>
</html>`

	spans, err := parseBBoxLayout(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d: %+v", len(spans), spans)
	}
	first := spans[0]
	if first.Text != "Annual Report" || first.FontSize != 24 || first.X != 72 || first.Y != 70 || first.Page != 1 {
		t.Errorf("unexpected first span: %+v", first)
	}
	if spans[1].Text != "Body" || spans[1].Page != 2 || spans[1].FontSize != 12 {
		t.Errorf("unexpected second span: %+v", spans[1])
	}
}

func TestPDFCollector_RejectsGarbage(t *testing.T) {
	c := &PDFCollector{}
	if _, err := c.Collect(strings.NewReader("definitely not a pdf"), "bad.pdf"); err == nil {
		t.Error("expected error for non-pdf input")
	}
}
