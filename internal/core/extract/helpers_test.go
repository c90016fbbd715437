package extract

import (
	"strings"
	"unicode/utf8"

	"github.com/joseph-ayodele/labreport-import/internal/core/ocr"
)

// row lays words out left to right on one baseline, 20px tall.
type row struct {
	y     int
	x     int
	words string
}

func page(index int, rows ...row) ocr.PageWords {
	pw := ocr.PageWords{Index: index, MeanConfidence: 90}
	for _, r := range rows {
		x := r.x
		if x == 0 {
			x = 10
		}
		for _, w := range strings.Fields(r.words) {
			width := 12 * utf8.RuneCountInString(w)
			pw.Words = append(pw.Words, ocr.RecognizedWord{
				Text:       w,
				Box:        ocr.BBox{X1: x, Y1: r.y, X2: x + width, Y2: r.y + 20},
				Confidence: 90,
			})
			x += width + 10
		}
	}
	return pw
}

func words(ws ...string) []ocr.RecognizedWord {
	out := make([]ocr.RecognizedWord, len(ws))
	x := 0
	for i, w := range ws {
		out[i] = ocr.RecognizedWord{Text: w, Box: ocr.BBox{X1: x, Y1: 0, X2: x + 40, Y2: 20}}
		x += 50
	}
	return out
}
