package outline

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"regexp"
)

// Config holds the classifier thresholds. Zero values fall back to defaults.
type Config struct {
	// SizeTolerance is the width of a font-size bucket in points.
	SizeTolerance float64 `yaml:"size_tolerance" json:"size_tolerance"`

	// TitleGapFactor bounds the vertical gap between title lines, as a multiple
	// of the title font size.
	TitleGapFactor float64 `yaml:"title_gap_factor" json:"title_gap_factor"`

	// MaxTitleSpans caps how many equally-large spans join into the title.
	MaxTitleSpans int `yaml:"max_title_spans" json:"max_title_spans"`

	// ShortTextMaxRunes is the length cutoff for bold, uppercase and numbered
	// headings.
	ShortTextMaxRunes int `yaml:"short_text_max_runes" json:"short_text_max_runes"`

	// MaxHeadingRunes is the hard length cutoff for any heading.
	MaxHeadingRunes int `yaml:"max_heading_runes" json:"max_heading_runes"`

	// MinUpperLetters is the minimum number of cased letters for the
	// uppercase signal.
	MinUpperLetters int `yaml:"min_upper_letters" json:"min_upper_letters"`

	// RepeatMinPages and RepeatPageRatio decide when a text that recurs across
	// pages is a running header or footer.
	RepeatMinPages  int     `yaml:"repeat_min_pages" json:"repeat_min_pages"`
	RepeatPageRatio float64 `yaml:"repeat_page_ratio" json:"repeat_page_ratio"`

	// RepeatYTolerance is how far apart, in points, occurrences of a running
	// header may sit vertically.
	RepeatYTolerance float64 `yaml:"repeat_y_tolerance" json:"repeat_y_tolerance"`

	// ExcludePatterns are case-insensitive regexps for uppercase spans that are
	// never headings (page footers, copyright lines).
	ExcludePatterns []string `yaml:"exclude_patterns" json:"exclude_patterns"`
}

// DefaultConfig returns the thresholds validated against the worked scenarios.
func DefaultConfig() Config {
	return Config{
		SizeTolerance:     0.5,
		TitleGapFactor:    1.6,
		MaxTitleSpans:     4,
		ShortTextMaxRunes: 80,
		MaxHeadingRunes:   200,
		MinUpperLetters:   3,
		RepeatMinPages:    3,
		RepeatPageRatio:   0.5,
		RepeatYTolerance:  5,
		ExcludePatterns: []string{
			`^page\s+\d+(\s+of\s+\d+)?$`,
			`^\d+\s+of\s+\d+$`,
			`^(copyright|©)`,
			`^all rights reserved`,
			`^(confidential|draft)$`,
		},
	}
}

// WithDefaults fills zero or negative fields from DefaultConfig.
func (c Config) WithDefaults() Config {
	d := DefaultConfig()
	if c.SizeTolerance <= 0 {
		c.SizeTolerance = d.SizeTolerance
	}
	if c.TitleGapFactor <= 0 {
		c.TitleGapFactor = d.TitleGapFactor
	}
	if c.MaxTitleSpans <= 0 {
		c.MaxTitleSpans = d.MaxTitleSpans
	}
	if c.ShortTextMaxRunes <= 0 {
		c.ShortTextMaxRunes = d.ShortTextMaxRunes
	}
	if c.MaxHeadingRunes <= 0 {
		c.MaxHeadingRunes = d.MaxHeadingRunes
	}
	if c.MinUpperLetters <= 0 {
		c.MinUpperLetters = d.MinUpperLetters
	}
	if c.RepeatMinPages <= 0 {
		c.RepeatMinPages = d.RepeatMinPages
	}
	if c.RepeatPageRatio <= 0 || c.RepeatPageRatio > 1 {
		c.RepeatPageRatio = d.RepeatPageRatio
	}
	if c.RepeatYTolerance <= 0 {
		c.RepeatYTolerance = d.RepeatYTolerance
	}
	if c.ExcludePatterns == nil {
		c.ExcludePatterns = d.ExcludePatterns
	}
	return c
}

// Validate reports patterns that do not compile.
func (c Config) Validate() error {
	for _, p := range c.ExcludePatterns {
		if _, err := regexp.Compile("(?i)" + p); err != nil {
			return fmt.Errorf("exclude pattern %q: %w", p, err)
		}
	}
	return nil
}

// Fingerprint identifies the effective thresholds, for cache keys.
func (c Config) Fingerprint() string {
	b, _ := json.Marshal(c.WithDefaults())
	h := sha256.Sum256(b)
	return hex.EncodeToString(h[:8])
}

func compilePatterns(patterns []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			continue
		}
		out = append(out, re)
	}
	return out
}
