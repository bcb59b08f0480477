// Package outline turns styled text spans into a document title and an
// H1/H2/H3 heading outline.
//
// Classification runs in two passes. The first builds a FontProfile over
// every span of the document; the second walks the spans in reading order
// and evaluates the heading rules against that read-only profile.
package outline

import (
	"sort"
	"unicode/utf8"
)

// Heading is a span classified as a heading.
type Heading struct {
	Entry
	Index    int    // Position in Analysis.Spans
	Signal   string // Name of the rule that fired
	FontSize float64
	Y        float64
}

// Analysis is the full classification state of one document.
type Analysis struct {
	Spans        []Span // Valid spans in reading order: page, then Y, then X
	Skipped      []Skipped
	Title        Title
	TitleIndices []int // Positions of the title spans in Spans
	Profile      *FontProfile
	Levels       LevelMap
	Headings     []Heading

	claimed map[int]bool // title and heading spans, collapsed duplicates included
}

// Result returns the serializable outline.
func (a *Analysis) Result() Result {
	res := Empty()
	if a == nil {
		return res
	}
	res.Title = a.Title.Text
	for _, h := range a.Headings {
		res.Outline = append(res.Outline, h.Entry)
	}
	return res
}

// Classifier evaluates the heading rules. It is safe for concurrent use.
type Classifier struct {
	cfg   Config
	rules []Rule
	rc    ruleContext
}

// New creates a Classifier with the default rule table.
func New(cfg Config) *Classifier {
	cfg = cfg.WithDefaults()
	return &Classifier{
		cfg:   cfg,
		rules: DefaultRules(),
		rc:    ruleContext{cfg: cfg, exclude: compilePatterns(cfg.ExcludePatterns)},
	}
}

// WithRule returns a copy of c with r appended after the existing rules.
func (c *Classifier) WithRule(r Rule) *Classifier {
	cp := *c
	cp.rules = append(append([]Rule(nil), c.rules...), r)
	return &cp
}

// Config returns the effective thresholds.
func (c *Classifier) Config() Config {
	return c.cfg
}

// Classify returns the title and outline for one document's spans.
func (c *Classifier) Classify(spans []Span) Result {
	return c.Analyze(spans).Result()
}

// Analyze classifies spans and keeps the intermediate state. It never panics:
// any failure yields an empty analysis.
func (c *Classifier) Analyze(spans []Span) (a *Analysis) {
	defer func() {
		if r := recover(); r != nil {
			a = &Analysis{Profile: &FontProfile{Body: -1}, claimed: map[int]bool{}}
		}
	}()

	valid, skipped := Sanitize(spans)
	sort.SliceStable(valid, func(i, j int) bool {
		if valid[i].Page != valid[j].Page {
			return valid[i].Page < valid[j].Page
		}
		if valid[i].Y != valid[j].Y {
			return valid[i].Y < valid[j].Y
		}
		return valid[i].X < valid[j].X
	})

	a = &Analysis{Spans: valid, Skipped: skipped, claimed: make(map[int]bool)}

	var page1 []Span
	for _, s := range valid {
		if s.Page != 1 {
			break
		}
		page1 = append(page1, s)
	}
	a.Title = DetectTitle(page1, c.cfg)
	// Page-1 spans lead the sorted slice, so page-1 indices are global indices.
	a.TitleIndices = append(a.TitleIndices, a.Title.Spans...)
	for _, i := range a.TitleIndices {
		a.claimed[i] = true
	}

	a.Profile = BuildProfile(valid, c.cfg)
	a.Levels = BuildLevelMap(a.Profile, a.Title.Sizes...)

	rc := c.rc
	rc.profile = a.Profile
	rc.levels = a.Levels

	for i, s := range valid {
		if a.claimed[i] || !c.candidate(s, a.Profile, a.Levels) {
			continue
		}
		lvl, signal := c.evaluate(s, &rc)
		if signal == "" {
			continue
		}
		a.claimed[i] = true
		entry := Entry{Level: lvl, Text: s.Text, Page: s.Page}
		if n := len(a.Headings); n > 0 && a.Headings[n-1].Entry == entry {
			continue
		}
		a.Headings = append(a.Headings, Heading{
			Entry:    entry,
			Index:    i,
			Signal:   signal,
			FontSize: s.FontSize,
			Y:        s.Y,
		})
	}
	return a
}

// candidate filters spans that can never be headings. Repeated header and
// footer texts are dropped unless their size maps to a level on its own.
func (c *Classifier) candidate(s Span, p *FontProfile, levels LevelMap) bool {
	if !hasLetter(s.Text) || utf8.RuneCountInString(s.Text) > c.cfg.MaxHeadingRunes {
		return false
	}
	if !p.IsRepeated(s) {
		return true
	}
	_, mapped := levels.LevelFor(s.FontSize)
	return mapped
}

func (c *Classifier) evaluate(s Span, rc *ruleContext) (Level, string) {
	for _, r := range c.rules {
		if lvl, ok := r.Match(s, rc); ok {
			return lvl, r.Name
		}
	}
	return "", ""
}
