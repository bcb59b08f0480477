package collector

import (
	"strings"
	"testing"
)

func TestHTMLCollector_Structure(t *testing.T) {
	input := `<html><head><title>Ignored</title><style>p{}</style></head><body>
<nav><a href="/">Home</a></nav>
<h1>Handbook</h1>
<p>Opening paragraph.</p>
<h3>Details</h3>
<p><strong>Bold lead</strong></p>
<p><b>Mixed</b> emphasis here</p>
<ul><li>Item one</li></ul>
<script>var x = 1;</script>
<div>Loose text</div>
</body></html>`

	spans, err := (&HTMLCollector{}).Collect(strings.NewReader(input), "page.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []struct {
		text string
		size float64
		bold bool
	}{
		{"Handbook", 24, true},
		{"Opening paragraph.", bodySize, false},
		{"Details", 14.04, true},
		{"Bold lead", bodySize, true},
		{"Mixed emphasis here", bodySize, false},
		{"Item one", bodySize, false},
		{"Loose text", bodySize, false},
	}
	if len(spans) != len(want) {
		t.Fatalf("expected %d spans, got %d: %+v", len(want), len(spans), spans)
	}
	for i, w := range want {
		s := spans[i]
		if s.Text != w.text || s.FontSize != w.size || s.Bold != w.bold {
			t.Errorf("span[%d]: expected %q %v bold=%v, got %q %v bold=%v", i, w.text, w.size, w.bold, s.Text, s.FontSize, s.Bold)
		}
	}
}

func TestHTMLCollector_HeadingLevelsClamp(t *testing.T) {
	spans, err := (&HTMLCollector{}).Collect(strings.NewReader("<h6>Tiny</h6><h2>Mid</h2>"), "x.htm")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	if spans[0].FontSize != 8.04 || spans[1].FontSize != 18 {
		t.Errorf("expected sizes 8.04 and 18, got %v and %v", spans[0].FontSize, spans[1].FontSize)
	}
}
