package outline

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Rule is one heading signal. Rules are evaluated in order and the first one
// that fires decides the level.
type Rule struct {
	Name  string
	Match func(s Span, rc *ruleContext) (Level, bool)
}

type ruleContext struct {
	cfg     Config
	profile *FontProfile
	levels  LevelMap
	exclude []*regexp.Regexp
}

// DefaultRules is the precedence size > numbering > bold > uppercase.
func DefaultRules() []Rule {
	return []Rule{
		{Name: "size", Match: sizeRule},
		{Name: "numbering", Match: numberingRule},
		{Name: "bold", Match: boldRule},
		{Name: "uppercase", Match: uppercaseRule},
	}
}

var (
	numberedRe = regexp.MustCompile(`^(\d+(?:\.\d+)*)\.?\s+(.*)$`)
	letteredRe = regexp.MustCompile(`^[A-Z]\.\s+(.*)$`)
	runOnRe    = regexp.MustCompile(`[.,;]\s+\p{Ll}`)
)

func sizeRule(s Span, rc *ruleContext) (Level, bool) {
	return rc.levels.LevelFor(s.FontSize)
}

func numberingRule(s Span, rc *ruleContext) (Level, bool) {
	depth, rest := numberingDepth(s.Text)
	if depth == 0 || !rc.short(s.Text) || !hasLetter(rest) {
		return "", false
	}
	return levelForDepth(depth), true
}

func boldRule(s Span, rc *ruleContext) (Level, bool) {
	if !s.Bold || !rc.profile.AtLeastBody(s.FontSize) || !rc.short(s.Text) || sentenceLike(s.Text) {
		return "", false
	}
	return rc.sizeLevelOr(s.FontSize, H3), true
}

func uppercaseRule(s Span, rc *ruleContext) (Level, bool) {
	if !rc.profile.AtLeastBody(s.FontSize) || !rc.short(s.Text) || !allUpper(s.Text, rc.cfg.MinUpperLetters) {
		return "", false
	}
	for _, re := range rc.exclude {
		if re.MatchString(s.Text) {
			return "", false
		}
	}
	return rc.sizeLevelOr(s.FontSize, H3), true
}

func (rc *ruleContext) short(text string) bool {
	return utf8.RuneCountInString(text) <= rc.cfg.ShortTextMaxRunes
}

func (rc *ruleContext) sizeLevelOr(size float64, fallback Level) Level {
	if lvl, ok := rc.levels.LevelFor(size); ok {
		return lvl
	}
	return fallback
}

// numberingDepth returns the number of numeric groups in a leading section
// number ("1.2.3 Scope" -> 3), 1 for a letter marker ("A. Scope"), and the
// text after the marker.
func numberingDepth(text string) (int, string) {
	if m := numberedRe.FindStringSubmatch(text); m != nil {
		return strings.Count(m[1], ".") + 1, m[2]
	}
	if m := letteredRe.FindStringSubmatch(text); m != nil {
		return 1, m[1]
	}
	return 0, ""
}

// sentenceLike reports trailing or run-on punctuation typical of body text.
func sentenceLike(text string) bool {
	if strings.HasSuffix(text, ".") || strings.HasSuffix(text, ",") || strings.HasSuffix(text, ";") {
		return true
	}
	return runOnRe.MatchString(text)
}

func allUpper(text string, minLetters int) bool {
	upper := 0
	for _, r := range text {
		switch {
		case unicode.IsLower(r):
			return false
		case unicode.IsUpper(r):
			upper++
		}
	}
	return upper >= minLetters
}

func hasLetter(text string) bool {
	for _, r := range text {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
