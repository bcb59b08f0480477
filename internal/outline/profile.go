package outline

import (
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Bucket is a group of font sizes that differ by at most the size tolerance.
type Bucket struct {
	Low   float64 // Smallest member size
	High  float64 // Largest member size
	Spans int
	Chars int
}

// Size is the representative size of the bucket.
func (b Bucket) Size() float64 {
	return (b.Low + b.High) / 2
}

// FontProfile is the document-wide font-size histogram. It is built once per
// document and read-only afterwards.
type FontProfile struct {
	// Buckets are ordered by ascending size.
	Buckets []Bucket

	// Body is the index of the body-text bucket, or -1 for an empty document.
	Body int

	tolerance float64
	repeated  map[string]bool
}

// BuildProfile runs the first pass over all spans of a document.
func BuildProfile(spans []Span, cfg Config) *FontProfile {
	cfg = cfg.WithDefaults()
	p := &FontProfile{Body: -1, tolerance: cfg.SizeTolerance}
	if len(spans) == 0 {
		return p
	}

	sizes := make([]float64, len(spans))
	for i, s := range spans {
		sizes[i] = s.FontSize
	}
	sort.Float64s(sizes)
	for _, size := range sizes {
		n := len(p.Buckets)
		if n == 0 || size-p.Buckets[n-1].Low > cfg.SizeTolerance {
			p.Buckets = append(p.Buckets, Bucket{Low: size, High: size})
			continue
		}
		p.Buckets[n-1].High = size
	}

	for _, s := range spans {
		i := p.BucketOf(s.FontSize)
		if i < 0 {
			continue
		}
		p.Buckets[i].Spans++
		p.Buckets[i].Chars += utf8.RuneCountInString(s.Text)
	}

	// Most characters wins; ties go to more spans, then the smaller size.
	for i, b := range p.Buckets {
		if p.Body < 0 {
			p.Body = i
			continue
		}
		best := p.Buckets[p.Body]
		if b.Chars > best.Chars || (b.Chars == best.Chars && b.Spans > best.Spans) {
			p.Body = i
		}
	}

	p.repeated = findRepeated(spans, cfg)
	return p
}

// BucketOf returns the bucket index holding size, or the nearest bucket within
// tolerance, or -1.
func (p *FontProfile) BucketOf(size float64) int {
	if p == nil || len(p.Buckets) == 0 || math.IsNaN(size) {
		return -1
	}
	i := sort.Search(len(p.Buckets), func(i int) bool { return p.Buckets[i].High >= size })
	if i < len(p.Buckets) && p.Buckets[i].Low <= size {
		return i
	}
	best, bestDist := -1, p.tolerance
	for _, j := range []int{i - 1, i} {
		if j < 0 || j >= len(p.Buckets) {
			continue
		}
		d := math.Min(math.Abs(size-p.Buckets[j].Low), math.Abs(size-p.Buckets[j].High))
		if d <= bestDist {
			best, bestDist = j, d
		}
	}
	return best
}

// BodySize returns the representative body-text size, or 0 when empty.
func (p *FontProfile) BodySize() float64 {
	if p == nil || p.Body < 0 {
		return 0
	}
	return p.Buckets[p.Body].Size()
}

// AtLeastBody reports whether size falls in the body bucket or above it.
func (p *FontProfile) AtLeastBody(size float64) bool {
	if p == nil || p.Body < 0 {
		return true
	}
	if i := p.BucketOf(size); i >= 0 {
		return i >= p.Body
	}
	return size >= p.Buckets[p.Body].Low
}

// IsRepeated reports whether the span's text recurs as a running header or footer.
func (p *FontProfile) IsRepeated(s Span) bool {
	if p == nil || len(p.repeated) == 0 {
		return false
	}
	return p.repeated[repeatKey(s.Text)]
}

type occurrence struct {
	pages      map[int]bool
	minY, maxY float64
}

func findRepeated(spans []Span, cfg Config) map[string]bool {
	allPages := make(map[int]bool)
	seen := make(map[string]*occurrence)
	for _, s := range spans {
		allPages[s.Page] = true
		key := repeatKey(s.Text)
		o, ok := seen[key]
		if !ok {
			o = &occurrence{pages: make(map[int]bool), minY: s.Y, maxY: s.Y}
			seen[key] = o
		}
		o.pages[s.Page] = true
		o.minY = math.Min(o.minY, s.Y)
		o.maxY = math.Max(o.maxY, s.Y)
	}

	repeated := make(map[string]bool)
	for key, o := range seen {
		n := len(o.pages)
		if n < cfg.RepeatMinPages {
			continue
		}
		if float64(n)/float64(len(allPages)) < cfg.RepeatPageRatio {
			continue
		}
		if o.maxY-o.minY > cfg.RepeatYTolerance {
			continue
		}
		repeated[key] = true
	}
	return repeated
}

// repeatKey folds case, digit runs and whitespace so "Page 9" and "Page 10" match.
func repeatKey(text string) string {
	var b strings.Builder
	space, digit := false, false
	for _, r := range strings.TrimSpace(text) {
		if unicode.IsSpace(r) {
			space = true
			continue
		}
		if unicode.IsDigit(r) {
			if digit && !space {
				continue
			}
			r = '#'
		} else {
			r = unicode.ToLower(r)
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space, digit = false, r == '#'
		b.WriteRune(r)
	}
	return b.String()
}
