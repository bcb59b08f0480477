package outline

import (
	"strings"
	"testing"
)

func TestBuildProfile_BucketsWithinTolerance(t *testing.T) {
	spans := []Span{
		{Text: strings.Repeat("a", 40), FontSize: 11.0, Page: 1},
		{Text: strings.Repeat("b", 40), FontSize: 11.2, Page: 1},
		{Text: strings.Repeat("c", 10), FontSize: 11.4, Page: 1},
		{Text: "Head", FontSize: 12.0, Page: 1},
		{Text: "Big", FontSize: 18.0, Page: 2},
	}
	p := BuildProfile(spans, DefaultConfig())

	if len(p.Buckets) != 3 {
		t.Fatalf("expected 3 buckets, got %d: %+v", len(p.Buckets), p.Buckets)
	}
	if p.Buckets[0].Low != 11.0 || p.Buckets[0].High != 11.4 {
		t.Errorf("expected first bucket [11, 11.4], got [%v, %v]", p.Buckets[0].Low, p.Buckets[0].High)
	}
	if p.Buckets[0].Chars != 90 || p.Buckets[0].Spans != 3 {
		t.Errorf("expected 90 chars in 3 spans, got %d in %d", p.Buckets[0].Chars, p.Buckets[0].Spans)
	}
	if p.Body != 0 {
		t.Errorf("expected body bucket 0, got %d", p.Body)
	}
	if got := p.BucketOf(11.45); got != 0 {
		t.Errorf("expected 11.45 to fall in bucket 0, got %d", got)
	}
	if got := p.BucketOf(30); got != -1 {
		t.Errorf("expected 30 to fall outside every bucket, got %d", got)
	}
}

func TestBuildProfile_BodyByCharacterVolume(t *testing.T) {
	// More spans at 14pt, but more characters at 10pt.
	spans := []Span{
		{Text: "One", FontSize: 14, Page: 1},
		{Text: "Two", FontSize: 14, Page: 1},
		{Text: "Three", FontSize: 14, Page: 1},
		{Text: strings.Repeat("body ", 20), FontSize: 10, Page: 1},
	}
	p := BuildProfile(spans, DefaultConfig())
	if p.BodySize() != 10 {
		t.Errorf("expected body size 10, got %v", p.BodySize())
	}
	if p.AtLeastBody(9) {
		t.Error("expected 9pt to be below body size")
	}
	if !p.AtLeastBody(14) {
		t.Error("expected 14pt to be at or above body size")
	}
}

func TestBuildProfile_Empty(t *testing.T) {
	p := BuildProfile(nil, DefaultConfig())
	if p.Body != -1 || len(p.Buckets) != 0 {
		t.Errorf("expected empty profile, got %+v", p)
	}
	if p.BodySize() != 0 {
		t.Errorf("expected body size 0, got %v", p.BodySize())
	}
}

func TestBuildProfile_RepeatedFooter(t *testing.T) {
	var spans []Span
	for page := 1; page <= 5; page++ {
		spans = append(spans,
			Span{Text: "Page " + strings.Repeat("1", page), FontSize: 9, Y: 770, Page: page},
			Span{Text: "Chapter text", FontSize: 11, Y: float64(100 * page), Page: page},
		)
	}
	p := BuildProfile(spans, DefaultConfig())

	if !p.IsRepeated(Span{Text: "Page 42"}) {
		t.Error("expected page footer to be detected as repeated")
	}
	if p.IsRepeated(Span{Text: "Chapter text"}) {
		t.Error("expected text at varying positions not to count as a running header")
	}
}

func TestRepeatKey(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Page 9", "page #"},
		{"Page 10", "page #"},
		{"  Annual   Report 2024 ", "annual report #"},
		{"v1.2", "v#.#"},
	}
	for _, tt := range tests {
		if got := repeatKey(tt.in); got != tt.want {
			t.Errorf("repeatKey(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestBuildLevelMap(t *testing.T) {
	spans := []Span{
		{Text: strings.Repeat("x", 200), FontSize: 10, Page: 1},
		{Text: "T", FontSize: 30, Page: 1},
		{Text: "A", FontSize: 20, Page: 1},
		{Text: "B", FontSize: 16, Page: 1},
		{Text: "C", FontSize: 14, Page: 1},
		{Text: "D", FontSize: 12, Page: 1},
		{Text: "small", FontSize: 8, Page: 1},
	}
	p := BuildProfile(spans, DefaultConfig())

	m := BuildLevelMap(p, 30)
	if m.Len() != 3 {
		t.Fatalf("expected 3 levels, got %d", m.Len())
	}
	cases := []struct {
		size float64
		want Level
		ok   bool
	}{
		{30, "", false},
		{20, H1, true},
		{16, H2, true},
		{14, H3, true},
		{12, "", false},
		{10, "", false},
		{8, "", false},
	}
	for _, c := range cases {
		got, ok := m.LevelFor(c.size)
		if got != c.want || ok != c.ok {
			t.Errorf("LevelFor(%v): expected (%q, %v), got (%q, %v)", c.size, c.want, c.ok, got, ok)
		}
	}
	sizes := m.Sizes()
	if len(sizes) != 3 || sizes[0] != 20 || sizes[1] != 16 || sizes[2] != 14 {
		t.Errorf("expected sizes [20 16 14], got %v", sizes)
	}

	// Without a title the largest size becomes H1.
	m = BuildLevelMap(p)
	if lvl, _ := m.LevelFor(30); lvl != H1 {
		t.Errorf("expected 30pt to be H1 without a title, got %q", lvl)
	}
}

func TestBuildLevelMap_Partial(t *testing.T) {
	spans := []Span{
		{Text: strings.Repeat("x", 200), FontSize: 10, Page: 1},
		{Text: "A", FontSize: 14, Page: 1},
	}
	m := BuildLevelMap(BuildProfile(spans, DefaultConfig()))
	if m.Len() != 1 {
		t.Fatalf("expected 1 level, got %d", m.Len())
	}
	if lvl, ok := m.LevelFor(14); !ok || lvl != H1 {
		t.Errorf("expected 14pt to be H1, got %q", lvl)
	}
}

func TestBuildLevelMap_SingleSize(t *testing.T) {
	spans := []Span{
		{Text: "one", FontSize: 11, Page: 1},
		{Text: "two", FontSize: 11, Page: 2},
	}
	m := BuildLevelMap(BuildProfile(spans, DefaultConfig()), 11)
	if m.Len() != 0 {
		t.Errorf("expected empty level map, got %d levels", m.Len())
	}
	if _, ok := m.LevelFor(11); ok {
		t.Error("expected no level for the only size")
	}
}
