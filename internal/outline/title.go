package outline

import (
	"sort"
	"strings"
)

// Title is the detected document title.
type Title struct {
	Text  string
	Size  float64   // Size of the first title span
	Sizes []float64 // Size of every title span, in Spans order
	Spans []int     // Indices into the page-1 spans that form the title
}

// Found reports whether a title was detected.
func (t Title) Found() bool {
	return t.Text != ""
}

// DetectTitle picks the largest text on page 1. Equally large spans that
// follow each other in reading order and sit within TitleGapFactor times the
// title size of each other are joined with a space. When every span on the
// page shares the largest size, only the first one is used.
func DetectTitle(page1 []Span, cfg Config) Title {
	cfg = cfg.WithDefaults()
	if len(page1) == 0 {
		return Title{}
	}

	maxSize := page1[0].FontSize
	for _, s := range page1[1:] {
		if s.FontSize > maxSize {
			maxSize = s.FontSize
		}
	}
	isMax := func(i int) bool { return maxSize-page1[i].FontSize <= cfg.SizeTolerance }

	order := make([]int, len(page1))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		sa, sb := page1[order[a]], page1[order[b]]
		if sa.Y != sb.Y {
			return sa.Y < sb.Y
		}
		return sa.X < sb.X
	})

	start := -1
	uniform := true
	for pos, i := range order {
		if !isMax(i) {
			uniform = false
			continue
		}
		if start < 0 {
			start = pos
		}
	}

	if start < 0 {
		return Title{}
	}

	run := []int{order[start]}
	if !uniform {
		maxGap := cfg.TitleGapFactor * maxSize
		for _, i := range order[start+1:] {
			prev := page1[run[len(run)-1]]
			if !isMax(i) || page1[i].Y-prev.Y > maxGap || len(run) >= cfg.MaxTitleSpans {
				break
			}
			run = append(run, i)
		}
	}

	parts := make([]string, len(run))
	sizes := make([]float64, len(run))
	for k, i := range run {
		parts[k] = page1[i].Text
		sizes[k] = page1[i].FontSize
	}
	return Title{
		Text:  strings.Join(parts, " "),
		Size:  sizes[0],
		Sizes: sizes,
		Spans: run,
	}
}
