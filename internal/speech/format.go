// Package speech rewrites prayer text so that a synthesis voice pauses in
// the right places. Formatting is pure and deterministic: the audio cache
// keys on its output.
package speech

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Rule is a single text transform in the formatting pipeline.
type Rule struct {
	Name  string
	Apply func(text string) string
}

// Formatter applies its rules in order.
type Formatter struct {
	Rules []Rule
}

// ReverentTerms are the titles followed by a pause. Matching is
// case-sensitive and whole-word.
var ReverentTerms = []string{"God", "Lord", "Jesus", "Christ", "Father"}

// TransitionPhrases are sentence openers followed by a pause.
var TransitionPhrases = []string{
	"Even now",
	"In this moment",
	"In this season",
	"Today",
	"And now",
	"Right now",
	"Above all",
}

var (
	reverentRe = regexp.MustCompile(`\b(` + strings.Join(ReverentTerms, "|") + `)\b`)
	amenRe     = regexp.MustCompile(`(?:\.\.\.|\.)?\s*\bAmen([.!]?)\s*$`)
)

// Default returns the formatter used in front of speech synthesis.
func Default() *Formatter {
	return &Formatter{Rules: []Rule{
		{Name: "reverent-pause", Apply: pauseAfterReverentTerms},
		{Name: "transition-pause", Apply: pauseAfterTransitions},
		{Name: "amen-pause", Apply: pauseBeforeAmen},
	}}
}

// Format runs every rule over text.
func (f *Formatter) Format(text string) string {
	for _, r := range f.Rules {
		text = r.Apply(text)
	}
	return text
}

var defaultFormatter = Default()

// Format formats text with the default rule set.
func Format(text string) string {
	return defaultFormatter.Format(text)
}

// pauseAfterReverentTerms inserts a comma after a reverent term when it is
// followed by more words. Consecutive titles ("Lord Jesus Christ") get a
// single comma after the last one. Terms already followed by punctuation
// are left alone.
func pauseAfterReverentTerms(text string) string {
	matches := reverentRe.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return text
	}

	var b strings.Builder
	b.Grow(len(text) + len(matches))
	last := 0
	for i, m := range matches {
		end := m[1]
		b.WriteString(text[last:end])
		last = end

		rest := text[end:]
		trimmed := strings.TrimLeftFunc(rest, unicode.IsSpace)
		if len(trimmed) == len(rest) || trimmed == "" {
			// Touching punctuation, a letter, or the end of the text.
			continue
		}
		if i+1 < len(matches) && matches[i+1][0] == end+(len(rest)-len(trimmed)) {
			continue
		}
		if r, _ := utf8.DecodeRuneInString(trimmed); unicode.IsPunct(r) {
			continue
		}
		b.WriteByte(',')
	}
	b.WriteString(text[last:])
	return b.String()
}

func pauseAfterTransitions(text string) string {
	for _, phrase := range TransitionPhrases {
		text = strings.ReplaceAll(text, phrase+" ", phrase+", ")
	}
	return text
}

// pauseBeforeAmen turns a closing "Amen" into "... Amen", keeping any
// terminal punctuation. A text that is only "Amen" is unchanged.
func pauseBeforeAmen(text string) string {
	loc := amenRe.FindStringSubmatchIndex(text)
	if loc == nil {
		return text
	}
	prefix := strings.TrimRightFunc(text[:loc[0]], unicode.IsSpace)
	if prefix == "" {
		return text
	}
	return prefix + "... Amen" + text[loc[2]:loc[3]]
}
