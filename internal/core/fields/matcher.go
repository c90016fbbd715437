package fields

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/joseph-ayodele/labreport-import/constants"
	"github.com/joseph-ayodele/labreport-import/internal/core/ocr"
)

// abbreviations up to this many runes must match a whole token
const shortPatternRunes = 4

// Match is a field found in a line. End is the byte offset in the
// normalized text just past the matched pattern.
type Match struct {
	Field Field
	End   int
}

// Matcher resolves free text to canonical keys using the registry.
type Matcher struct {
	fields []Field
}

func NewMatcher() *Matcher {
	return &Matcher{fields: registry}
}

// Match normalizes text and returns the first registered field that matches
// and is not skipped.
func (m *Matcher) Match(text string, skip func(constants.CanonicalKey) bool) (Match, bool) {
	return m.MatchNormalized(ocr.NormalizeLabel(text), skip)
}

// MatchNormalized is Match for text already passed through ocr.NormalizeLabel.
func (m *Matcher) MatchNormalized(norm string, skip func(constants.CanonicalKey) bool) (Match, bool) {
	if norm == "" {
		return Match{}, false
	}
	toks := tokenSpans(norm)
	for _, f := range m.fields {
		if skip != nil && skip(f.Key) {
			continue
		}
		if end, ok := matchField(f, norm, toks); ok {
			return Match{Field: f, End: end}, true
		}
	}
	return Match{}, false
}

// MatchAll returns every field matching text that is not skipped, in registry order.
func (m *Matcher) MatchAll(text string, skip func(constants.CanonicalKey) bool) []Match {
	norm := ocr.NormalizeLabel(text)
	if norm == "" {
		return nil
	}
	toks := tokenSpans(norm)
	var out []Match
	for _, f := range m.fields {
		if skip != nil && skip(f.Key) {
			continue
		}
		if end, ok := matchField(f, norm, toks); ok {
			out = append(out, Match{Field: f, End: end})
		}
	}
	return out
}

// HasAnyField reports whether text names any registered field.
func (m *Matcher) HasAnyField(text string) bool {
	_, ok := m.Match(text, nil)
	return ok
}

func matchField(f Field, norm string, toks []span) (int, bool) {
	end := -1
	for _, p := range f.Patterns {
		if e, ok := matchPattern(p, norm, toks); ok {
			end = e
			break
		}
	}
	if end < 0 {
		return 0, false
	}
	for _, ex := range f.Excludes {
		if strings.Contains(norm, ex) {
			return 0, false
		}
	}
	return end, true
}

func matchPattern(p, norm string, toks []span) (int, bool) {
	if p == "" {
		return 0, false
	}
	if utf8.RuneCountInString(p) <= shortPatternRunes && isWord(p) {
		for _, t := range toks {
			if norm[t.start:t.end] == p {
				return t.end, true
			}
		}
		return 0, false
	}
	if i := strings.Index(norm, p); i >= 0 {
		return i + len(p), true
	}
	return 0, false
}

type span struct{ start, end int }

// tokenSpans splits s into maximal runs of letters and digits.
func tokenSpans(s string) []span {
	var out []span
	start := -1
	for i, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			out = append(out, span{start, i})
			start = -1
		}
	}
	if start >= 0 {
		out = append(out, span{start, len(s)})
	}
	return out
}

func isWord(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
