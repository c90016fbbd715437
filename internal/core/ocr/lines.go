package ocr

import (
	"math"
	"sort"
)

// BuildLines groups words into visual lines. Words are visited top to bottom;
// a word joins the most recently opened line when its vertical center lies
// within factor × average word height of that line's mean center.
// Each line is then ordered left to right.
func BuildLines(words []RecognizedWord, factor float64) []VisualLine {
	if len(words) == 0 {
		return nil
	}
	sorted := make([]RecognizedWord, len(words))
	copy(sorted, words)
	sort.SliceStable(sorted, func(i, j int) bool {
		ci, cj := sorted[i].Box.CenterY(), sorted[j].Box.CenterY()
		if ci != cj {
			return ci < cj
		}
		return sorted[i].Box.X1 < sorted[j].Box.X1
	})

	tol := factor * AverageWordHeight(sorted)

	var lines []VisualLine
	var sumCenter float64
	for _, w := range sorted {
		c := w.Box.CenterY()
		if n := len(lines); n > 0 {
			cur := &lines[n-1]
			mean := sumCenter / float64(len(cur.Words))
			if math.Abs(mean-c) <= tol {
				cur.Words = append(cur.Words, w)
				sumCenter += c
				continue
			}
		}
		lines = append(lines, VisualLine{Words: []RecognizedWord{w}})
		sumCenter = c
	}

	for i := range lines {
		ws := lines[i].Words
		sort.SliceStable(ws, func(a, b int) bool { return ws[a].Box.X1 < ws[b].Box.X1 })
	}
	return lines
}

// Height is the mean height of the line's words.
func (l VisualLine) Height() float64 {
	return AverageWordHeight(l.Words)
}
