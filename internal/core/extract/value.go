package extract

import (
	"math"
	"strings"

	"github.com/joseph-ayodele/labreport-import/constants"
	"github.com/joseph-ayodele/labreport-import/internal/core/fields"
	"github.com/joseph-ayodele/labreport-import/internal/core/ocr"
)

// lineInfo is a visual line with everything the passes ask about it
// computed once.
type lineInfo struct {
	line    ocr.VisualLine
	toks    []token
	norm    string // words normalized and joined by single spaces
	ends    []int  // byte offset in norm where each word ends
	center  float64
	named   bool // some registered field name occurs in the line
	pending bool
}

func describe(lines []ocr.VisualLine, m *fields.Matcher) []*lineInfo {
	out := make([]*lineInfo, len(lines))
	for i, l := range lines {
		li := &lineInfo{
			line:   l,
			toks:   classify(l.Words),
			center: l.CenterY(),
			ends:   make([]int, len(l.Words)),
		}
		var b strings.Builder
		for j, w := range l.Words {
			if j > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(ocr.NormalizeLabel(w.Text))
			li.ends[j] = b.Len()
		}
		li.norm = b.String()
		li.named = m.HasAnyField(li.norm)
		li.pending = IsPending(li.norm)
		out[i] = li
	}
	return out
}

// wordAt returns the index of the word that contains byte offset end-1 of norm.
func (li *lineInfo) wordAt(end int) int {
	for i, e := range li.ends {
		if e >= end {
			return i
		}
	}
	return len(li.ends) - 1
}

func (li *lineInfo) text() string { return li.line.Text() }

func (li *lineInfo) hasValue() bool {
	for _, t := range li.toks {
		if t.kind == tokValue {
			return true
		}
	}
	return false
}

// rangeOnlyAfter reports whether the words after index from hold a reference
// range but no value.
func (li *lineInfo) rangeOnlyAfter(from int) bool {
	var sawRange bool
	for _, t := range li.toks[min(from, len(li.toks)):] {
		switch t.kind {
		case tokValue:
			return false
		case tokRange:
			sawRange = true
		}
	}
	return sawRange
}

// numericOnly reports whether the line names no field and carries nothing
// but numbers, ranges, comparators and units.
func (li *lineInfo) numericOnly() bool {
	if li.named || !li.hasValue() {
		return false
	}
	for _, t := range li.toks {
		if t.kind == tokOther && t.text != "" && !isPunct(t.text) {
			return false
		}
	}
	return true
}

func isPunct(s string) bool {
	return strings.Trim(s, "-–—.,:;()[]|") == ""
}

func dist(a, b *lineInfo) float64 { return math.Abs(a.center - b.center) }

// firstValid returns the first candidate the validator accepts for key.
func firstValid(v *fields.Validator, key constants.CanonicalKey, vals []float64) (float64, bool) {
	for _, x := range vals {
		if v.Valid(key, x) {
			return x, true
		}
	}
	return 0, false
}
