package extract

import (
	"sort"

	"github.com/joseph-ayodele/labreport-import/constants"
	"github.com/joseph-ayodele/labreport-import/internal/core/fields"
	"github.com/joseph-ayodele/labreport-import/internal/core/ocr"
)

// cascadeInput is one matched line and the page it sits on.
type cascadeInput struct {
	lines     []*lineInfo
	idx       int // matched line
	nameWord  int // index of the last word of the matched name
	nameEndX  int
	key       constants.CanonicalKey
	avgHeight float64
	consumed  []bool
	tuning    Tuning
	validator *fields.Validator
}

func (in *cascadeInput) cur() *lineInfo { return in.lines[in.idx] }

func (in *cascadeInput) valid(vals []float64) (float64, bool) {
	return firstValid(in.validator, in.key, vals)
}

// finding is an accepted value and the lines it was read from.
type finding struct {
	value   float64
	sources []int
}

type candidateFinder struct {
	name string
	find func(in *cascadeInput) (finding, bool)
}

// cascade is tried in order; the first finder yielding a range-valid value wins.
var cascade = []candidateFinder{
	{"same_line", sameLine},
	{"parallel_lines", parallelLines},
	{"next_lines", nextLines},
	{"previous_line", previousLine},
	{"combined_with_next", combinedWithNext},
	{"range_only_then_next", rangeOnlyThenNext},
}

func runCascade(in *cascadeInput) (finding, string, bool) {
	for _, f := range cascade {
		if got, ok := f.find(in); ok {
			return got, f.name, true
		}
	}
	return finding{}, "", false
}

func sameLine(in *cascadeInput) (finding, bool) {
	v, ok := in.valid(values(in.cur().toks[in.nameWord+1:]))
	return finding{value: v}, ok
}

// parallelLines covers a row OCR split into side-by-side text blocks.
func parallelLines(in *cascadeInput) (finding, bool) {
	cur := in.cur()
	tol := in.tuning.ParallelTolerance * in.avgHeight
	var near []int
	for j, li := range in.lines {
		if j == in.idx || in.consumed[j] || li.named {
			continue
		}
		if dist(cur, li) <= tol {
			near = append(near, j)
		}
	}
	sort.SliceStable(near, func(a, b int) bool {
		return dist(cur, in.lines[near[a]]) < dist(cur, in.lines[near[b]])
	})
	for _, j := range near {
		if v, ok := in.valid(valuesRightOf(in.lines[j].toks, in.nameEndX)); ok {
			return finding{value: v, sources: []int{j}}, true
		}
	}
	return finding{}, false
}

// nextLines looks below the name, stopping at the next named row.
func nextLines(in *cascadeInput) (finding, bool) {
	cur := in.cur()
	tol := in.tuning.NextLineTolerance * in.avgHeight
	for j := in.idx + 1; j < len(in.lines) && j <= in.idx+in.tuning.NextLinesLookahead; j++ {
		li := in.lines[j]
		if li.named || dist(cur, li) > tol {
			break
		}
		if in.consumed[j] {
			continue
		}
		if v, ok := in.valid(values(li.toks)); ok {
			return finding{value: v, sources: []int{j}}, true
		}
	}
	return finding{}, false
}

func previousLine(in *cascadeInput) (finding, bool) {
	j := in.idx - 1
	if j < 0 || in.consumed[j] {
		return finding{}, false
	}
	li := in.lines[j]
	if li.named || dist(in.cur(), li) > in.tuning.NextLineTolerance*in.avgHeight {
		return finding{}, false
	}
	v, ok := in.valid(values(li.toks))
	return finding{value: v, sources: []int{j}}, ok
}

// combinedWithNext rereads the rest of the matched line together with the
// next line, which also rejoins a decimal broken across them ("24." / "67").
func combinedWithNext(in *cascadeInput) (finding, bool) {
	j := in.idx + 1
	if j >= len(in.lines) || in.consumed[j] || in.lines[j].named {
		return finding{}, false
	}
	if dist(in.cur(), in.lines[j]) > in.tuning.NextLineTolerance*in.avgHeight {
		return finding{}, false
	}
	words := append(append([]ocr.RecognizedWord{}, in.cur().line.Words[in.nameWord+1:]...), in.lines[j].line.Words...)
	v, ok := in.valid(values(classify(joinSplitDecimals(words))))
	return finding{value: v, sources: []int{j}}, ok
}

// rangeOnlyThenNext handles a matched line that carries only the reference
// range; the value then sits on the following line whatever else it holds.
// A named following line is read but left for its own match.
func rangeOnlyThenNext(in *cascadeInput) (finding, bool) {
	j := in.idx + 1
	if j >= len(in.lines) || in.consumed[j] || !in.cur().rangeOnlyAfter(in.nameWord+1) {
		return finding{}, false
	}
	li := in.lines[j]
	v, ok := in.valid(values(li.toks))
	if !ok {
		return finding{}, false
	}
	if li.named {
		return finding{value: v}, true
	}
	return finding{value: v, sources: []int{j}}, true
}
