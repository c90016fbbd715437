package extract

import (
	"math"
	"sort"

	"github.com/joseph-ayodele/labreport-import/constants"
	"github.com/joseph-ayodele/labreport-import/internal/core/fields"
)

// rescueCandidate pairs an unresolved key with a value from an unconsumed line.
type rescueCandidate struct {
	key      constants.CanonicalKey
	label    string
	value    float64
	distance int // lines between name and value; 0 when they share a line
}

type rescueInput struct {
	lines     []*lineInfo
	idx       int
	avgHeight float64
	tuning    Tuning
	matcher   *fields.Matcher
	validator *fields.Validator
	skip      func(constants.CanonicalKey) bool
}

type rescueFinder func(in *rescueInput) []rescueCandidate

// rescueFinders each propose candidates for one line; all proposals compete.
var rescueFinders = []rescueFinder{
	namedInLine,
	namedAbove,
}

// namedInLine covers a line whose own text names an unresolved field that
// the main pass could not pair with a value.
func namedInLine(in *rescueInput) []rescueCandidate {
	li := in.lines[in.idx]
	var out []rescueCandidate
	for _, m := range in.matcher.MatchAll(li.norm, in.skip) {
		from := li.wordAt(m.End) + 1
		if v, ok := firstValid(in.validator, m.Field.Key, values(li.toks[min(from, len(li.toks)):])); ok {
			out = append(out, rescueCandidate{key: m.Field.Key, label: m.Field.Label, value: v})
		}
	}
	return out
}

// namedAbove pairs a numeric-only line with names found in the preceding
// lines inside the wide rescue band.
func namedAbove(in *rescueInput) []rescueCandidate {
	li := in.lines[in.idx]
	if !li.numericOnly() {
		return nil
	}
	vals := values(li.toks)
	tol := in.tuning.RescueTolerance * in.avgHeight
	var out []rescueCandidate
	for d := 1; d <= in.tuning.RescueLookback && in.idx-d >= 0; d++ {
		prev := in.lines[in.idx-d]
		if dist(li, prev) > tol {
			break
		}
		for _, m := range in.matcher.MatchAll(prev.norm, in.skip) {
			if v, ok := firstValid(in.validator, m.Field.Key, vals); ok {
				out = append(out, rescueCandidate{key: m.Field.Key, label: m.Field.Label, value: v, distance: d})
			}
		}
	}
	return out
}

// pickRescue orders candidates: same line first, then nearest name, then the
// value closest to the key's range floor. Remaining ties keep proposal order,
// which follows the registry.
func pickRescue(cands []rescueCandidate, v *fields.Validator) (rescueCandidate, bool) {
	if len(cands) == 0 {
		return rescueCandidate{}, false
	}
	gap := func(c rescueCandidate) float64 {
		floor, ok := v.Floor(c.key)
		if !ok {
			return math.Inf(1)
		}
		return math.Abs(c.value - floor)
	}
	sort.SliceStable(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if a.distance != b.distance {
			return a.distance < b.distance
		}
		return gap(a) < gap(b)
	})
	return cands[0], true
}
