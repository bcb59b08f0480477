package collector

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"sort"
	"strings"
	"unicode/utf8"

	pdflib "github.com/ledongthuc/pdf"

	"github.com/dgallion1/docoutline/internal/outline"
)

// Glyph grouping thresholds, as multiples of the glyph's font size.
const (
	lineToleranceRatio = 0.3
	wordSpaceRatio     = 0.25
	columnGapRatio     = 4.0
)

// PDFCollector handles PDF files. It reads glyph positions with
// ledongthuc/pdf and falls back to pdftotext when enabled.
type PDFCollector struct {
	// Preflight validates the file with pdfcpu before reading glyphs.
	Preflight         bool
	FallbackPdftotext bool
	Log               *slog.Logger
}

func (c *PDFCollector) Collect(r io.Reader, filename string) ([]outline.Span, error) {
	log := c.Log
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	// Both the reader and pdftotext want a file on disk.
	tmp, err := os.CreateTemp("", "docoutline-pdf-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	var spans []outline.Span
	if c.Preflight {
		err = preflight(tmpPath)
	}
	if err == nil {
		spans, err = readPDFSpans(tmpPath, log)
	}
	if (err != nil || len(spans) == 0) && c.FallbackPdftotext {
		log.Warn("falling back to pdftotext", "file", filename, "error", err)
		fb, fbErr := pdftotextSpans(tmpPath)
		switch {
		case fbErr == nil:
			return fb, nil
		case err == nil:
			log.Warn("pdftotext fallback failed", "file", filename, "error", fbErr)
		default:
			err = fmt.Errorf("%w (pdftotext: %v)", err, fbErr)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("extract pdf spans: %w", err)
	}
	return spans, nil
}

// readPDFSpans walks every page of the file. A page whose content stream
// cannot be decoded is skipped; a failure to open the file is an error.
func readPDFSpans(path string, log *slog.Logger) (spans []outline.Span, err error) {
	defer func() {
		if r := recover(); r != nil {
			spans, err = nil, fmt.Errorf("pdf reader panic: %v", r)
		}
	}()

	f, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		ps, err := pageSpans(page, i)
		if err != nil {
			log.Warn("skipping unreadable page", "page", i, "error", err)
			continue
		}
		spans = append(spans, ps...)
	}
	return spans, nil
}

func pageSpans(page pdflib.Page, num int) (spans []outline.Span, err error) {
	defer func() {
		if r := recover(); r != nil {
			spans, err = nil, fmt.Errorf("decode page content: %v", r)
		}
	}()
	glyphs := page.Content().Text
	return groupGlyphs(glyphs, pageTop(page, glyphs), num), nil
}

// pageTop is the upper edge of the page in PDF user space. MediaBox may be
// inherited from the parent Pages node; without one, the highest glyph
// stands in.
func pageTop(page pdflib.Page, glyphs []pdflib.Text) float64 {
	for _, box := range []pdflib.Value{page.V.Key("MediaBox"), page.V.Key("Parent").Key("MediaBox")} {
		if box.Len() == 4 {
			if top := box.Index(3).Float64(); top > 0 {
				return top
			}
		}
	}
	top := 0.0
	for _, g := range glyphs {
		top = math.Max(top, g.Y+g.FontSize)
	}
	return top
}

type glyphLine struct {
	baseline float64
	size     float64
	glyphs   []pdflib.Text
}

// groupGlyphs clusters glyphs into lines by baseline, orders lines top to
// bottom and glyphs left to right, then cuts each line into spans wherever
// the font, the size or a wide horizontal gap changes.
func groupGlyphs(glyphs []pdflib.Text, top float64, page int) []outline.Span {
	gs := make([]pdflib.Text, 0, len(glyphs))
	for _, g := range glyphs {
		if g.S == "" || !(g.FontSize > 0) || math.IsInf(g.FontSize, 0) || math.IsNaN(g.X) || math.IsNaN(g.Y) {
			continue
		}
		gs = append(gs, g)
	}
	sort.SliceStable(gs, func(i, j int) bool { return gs[i].Y > gs[j].Y })

	var lines []*glyphLine
	for _, g := range gs {
		if n := len(lines); n > 0 {
			l := lines[n-1]
			tol := math.Max(1, lineToleranceRatio*math.Min(l.size, g.FontSize))
			if math.Abs(l.baseline-g.Y) <= tol {
				l.glyphs = append(l.glyphs, g)
				continue
			}
		}
		lines = append(lines, &glyphLine{baseline: g.Y, size: g.FontSize, glyphs: []pdflib.Text{g}})
	}

	var spans []outline.Span
	for _, l := range lines {
		sort.SliceStable(l.glyphs, func(i, j int) bool { return l.glyphs[i].X < l.glyphs[j].X })
		spans = append(spans, splitLine(l, top, page)...)
	}
	return spans
}

func splitLine(l *glyphLine, top float64, page int) []outline.Span {
	var spans []outline.Span
	var buf strings.Builder
	var first pdflib.Text
	started := false
	prevEnd := 0.0

	flush := func() {
		if text := cleanText(buf.String()); text != "" && started {
			spans = append(spans, outline.Span{
				Text:     text,
				FontSize: math.Round(first.FontSize*100) / 100,
				Bold:     isBoldFont(first.Font),
				X:        first.X,
				Y:        math.Max(0, top-l.baseline),
				Page:     page,
			})
		}
		buf.Reset()
		started = false
	}

	for _, g := range l.glyphs {
		if strings.TrimSpace(g.S) == "" {
			buf.WriteByte(' ')
			prevEnd = glyphEnd(g)
			continue
		}
		if started {
			gap := g.X - prevEnd
			switch {
			case g.Font != first.Font, math.Abs(g.FontSize-first.FontSize) > 0.1, gap > columnGapRatio*g.FontSize:
				flush()
			case gap > wordSpaceRatio*g.FontSize:
				buf.WriteByte(' ')
			}
		}
		if !started {
			first = g
			started = true
		}
		buf.WriteString(g.S)
		prevEnd = glyphEnd(g)
	}
	flush()
	return spans
}

// glyphEnd estimates where a glyph stops when the font gave no width.
func glyphEnd(g pdflib.Text) float64 {
	w := g.W
	if w <= 0 {
		w = 0.5 * g.FontSize * float64(utf8.RuneCountInString(g.S))
	}
	return g.X + w
}

var boldMarkers = []string{"bold", "black", "heavy", "semibold", "demibold"}

// isBoldFont infers weight from the font's base name, e.g.
// "ABCDEF+Helvetica-Bold".
func isBoldFont(name string) bool {
	name = strings.ToLower(name)
	for _, m := range boldMarkers {
		if strings.Contains(name, m) {
			return true
		}
	}
	return false
}
