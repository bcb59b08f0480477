// Package collector turns raw document bytes into positioned text spans for
// the outline classifier. There is one Collector per input format.
package collector

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/dgallion1/docoutline/internal/outline"
)

// Collector extracts spans from a single document.
type Collector interface {
	Collect(r io.Reader, filename string) ([]outline.Span, error)
}

// Options tunes the collectors that have knobs. The zero value is usable.
type Options struct {
	PDFPreflight      bool
	FallbackPdftotext bool
	Log               *slog.Logger
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".pdf":      true,
	".docx":     true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".txt":      true,
}

// Point sizes used for formats that carry structure but no geometry. They
// follow the default browser stylesheet on a 12pt base.
const (
	bodySize = 12.0
	lineStep = 14.0
)

var headingSizes = [6]float64{24, 18, 14.04, 12, 9.96, 8.04}

// ForFile returns the collector for a filename.
func ForFile(filename string, opts Options) (Collector, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		return &PDFCollector{
			Preflight:         opts.PDFPreflight,
			FallbackPdftotext: opts.FallbackPdftotext,
			Log:               opts.Log,
		}, nil
	case ".docx":
		return &DOCXCollector{}, nil
	case ".md", ".markdown":
		return &MarkdownCollector{}, nil
	case ".html", ".htm":
		return &HTMLCollector{}, nil
	case ".txt":
		return &TextCollector{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %q", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	return SupportedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// cleanText applies NFKC so ligatures and compatibility forms compare equal,
// then collapses runs of whitespace.
func cleanText(s string) string {
	return strings.Join(strings.Fields(norm.NFKC.String(s)), " ")
}

func headingSize(level int) float64 {
	if level < 1 {
		level = 1
	}
	if level > len(headingSizes) {
		level = len(headingSizes)
	}
	return headingSizes[level-1]
}

// flowSpans accumulates spans for formats without page geometry: every span
// lands on page 1 and Y advances by one line per span.
type flowSpans struct {
	spans []outline.Span
}

func (f *flowSpans) add(text string, size float64, bold bool) {
	text = cleanText(text)
	if text == "" {
		return
	}
	f.spans = append(f.spans, outline.Span{
		Text:     text,
		FontSize: size,
		Bold:     bold,
		X:        0,
		Y:        float64(len(f.spans)) * lineStep,
		Page:     1,
	})
}
