package extract

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/joseph-ayodele/labreport-import/internal/core/ocr"
)

type tokenKind int

const (
	tokOther tokenKind = iota
	tokValue
	tokRange
	tokComparator // comparator words and the numbers they qualify
	tokUnit
)

type token struct {
	word  ocr.RecognizedWord
	text  string
	kind  tokenKind
	value float64
}

var (
	reValue     = regexp.MustCompile(`^\d{1,6}([.,]\d{1,4})?$`)
	reRangeWord = regexp.MustCompile(`^\d+([.,]\d+)?[-–—]\d+([.,]\d+)?$`)
	reOpenRange = regexp.MustCompile(`^\d+([.,]\d+)?[-–—]$`)
	reDashNum   = regexp.MustCompile(`^[-–—]\d+([.,]\d+)?$`)
	reSplitHead = regexp.MustCompile(`^\d{1,6}[.,]$`)
	reDigits    = regexp.MustCompile(`^\d{1,4}$`)
)

var comparatorWords = map[string]bool{
	"<": true, ">": true, "≤": true, "≥": true, "<=": true, ">=": true,
	"до": true, "от": true, "менее": true, "более": true, "меньше": true, "больше": true,
	"less": true, "more": true, "up": true, "to": true, "below": true, "above": true,
}

var unitWords = map[string]bool{
	"г": true, "мг": true, "мкг": true, "нг": true, "пг": true, "кг": true,
	"л": true, "мл": true, "дл": true, "фл": true,
	"ед": true, "ме": true, "мме": true, "мкме": true, "мед": true,
	"ммоль": true, "мкмоль": true, "нмоль": true, "пмоль": true, "моль": true,
	"мм": true, "ч": true, "сек": true, "x": true, "х": true, "×": true,
	"g": true, "mg": true, "ug": true, "ng": true, "pg": true,
	"l": true, "ml": true, "dl": true, "fl": true,
	"u": true, "iu": true, "mu": true, "miu": true, "uiu": true,
	"mmol": true, "umol": true, "nmol": true, "pmol": true, "mm": true, "h": true,
}

var pendingMarkers = []string{"выполняется", "в работе", "in progress", "pending"}

// PendingNote is the diagnostic recorded for a field the lab has not finished.
func PendingNote(name string) string {
	return name + ": pending (в работе)"
}

// IsPending reports whether text carries an in-progress marker.
func IsPending(text string) bool {
	norm := ocr.NormalizeLabel(text)
	for _, m := range pendingMarkers {
		if strings.Contains(norm, m) {
			return true
		}
	}
	return false
}

// cleanToken strips decoration OCR keeps around numbers: flags, footnote
// marks and enclosing brackets.
func cleanToken(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, "([")
	s = strings.TrimRight(s, "*↑↓)];:")
	return strings.TrimSpace(s)
}

// ParseNumber reads a decimal with either a point or a comma separator.
func ParseNumber(s string) (float64, bool) {
	s = cleanToken(s)
	if !reValue.MatchString(s) {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func isNumber(s string) bool { return reValue.MatchString(s) }

func isDash(s string) bool { return s == "-" || s == "–" || s == "—" }

func hasComparatorPrefix(s string) bool {
	return strings.HasPrefix(s, "<") || strings.HasPrefix(s, ">") ||
		strings.HasPrefix(s, "≤") || strings.HasPrefix(s, "≥")
}

func isUnit(s string) bool {
	if strings.ContainsAny(s, "/%^") {
		return true
	}
	return unitWords[strings.ToLower(s)]
}

func letterDigitMix(s string) bool {
	var letters, digits bool
	for _, r := range s {
		switch {
		case unicode.IsLetter(r):
			letters = true
		case unicode.IsDigit(r):
			digits = true
		}
	}
	return letters && digits
}

// classify labels each word. Ranges may be written as one word ("3.4-6.3")
// or spread over two or three ("3.4 -6.3", "3.4- 6.3", "3.4 - 6.3").
// Numbers qualified by a comparator are never values.
func classify(words []ocr.RecognizedWord) []token {
	toks := make([]token, len(words))
	for i, w := range words {
		toks[i] = token{word: w, text: cleanToken(w.Text)}
	}
	for i := range toks {
		t := &toks[i]
		if t.kind != tokOther {
			continue
		}
		lower := strings.ToLower(t.text)
		switch {
		case t.text == "":
		case comparatorWords[lower]:
			t.kind = tokComparator
			markQualified(toks, i)
		case hasComparatorPrefix(t.text):
			t.kind = tokComparator
		case reRangeWord.MatchString(t.text):
			t.kind = tokRange
		case reOpenRange.MatchString(t.text):
			t.kind = tokRange
			if i+1 < len(toks) && isNumber(toks[i+1].text) {
				toks[i+1].kind = tokRange
			}
		case isNumber(t.text):
			switch {
			case i+1 < len(toks) && reDashNum.MatchString(toks[i+1].text):
				t.kind, toks[i+1].kind = tokRange, tokRange
			case i+2 < len(toks) && isDash(toks[i+1].text) && isNumber(toks[i+2].text):
				t.kind, toks[i+1].kind, toks[i+2].kind = tokRange, tokRange, tokRange
			default:
				t.kind = tokValue
				t.value, _ = ParseNumber(t.text)
			}
		case letterDigitMix(t.text), isUnit(t.text):
			t.kind = tokUnit
		}
	}
	return toks
}

// markQualified marks the number following a comparator word, allowing one
// filler word in between ("less than 5").
func markQualified(toks []token, i int) {
	for j := i + 1; j < len(toks) && j <= i+2; j++ {
		if isNumber(toks[j].text) || reRangeWord.MatchString(toks[j].text) {
			toks[j].kind = tokComparator
			return
		}
	}
}

// joinSplitDecimals merges "24." "67" into one word "24.67".
func joinSplitDecimals(words []ocr.RecognizedWord) []ocr.RecognizedWord {
	out := make([]ocr.RecognizedWord, 0, len(words))
	for i := 0; i < len(words); i++ {
		w := words[i]
		if i+1 < len(words) && reSplitHead.MatchString(cleanToken(w.Text)) && reDigits.MatchString(cleanToken(words[i+1].Text)) {
			next := words[i+1]
			w = ocr.RecognizedWord{
				Text: cleanToken(w.Text) + cleanToken(next.Text),
				Box: ocr.BBox{
					X1: min(w.Box.X1, next.Box.X1), Y1: min(w.Box.Y1, next.Box.Y1),
					X2: max(w.Box.X2, next.Box.X2), Y2: max(w.Box.Y2, next.Box.Y2),
				},
				Confidence: min(w.Confidence, next.Confidence),
			}
			i++
		}
		out = append(out, w)
	}
	return out
}

func values(toks []token) []float64 {
	var out []float64
	for _, t := range toks {
		if t.kind == tokValue {
			out = append(out, t.value)
		}
	}
	return out
}

func valuesRightOf(toks []token, x int) []float64 {
	var out []float64
	for _, t := range toks {
		if t.kind == tokValue && t.word.Box.X1 >= x {
			out = append(out, t.value)
		}
	}
	return out
}
