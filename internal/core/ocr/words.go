package ocr

import (
	"image"
	"strings"
)

// BBox is a word's bounding box in page pixels.
type BBox struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

func (b BBox) CenterY() float64 { return float64(b.Y1+b.Y2) / 2 }
func (b BBox) Height() float64  { return float64(b.Y2 - b.Y1) }

// RecognizedWord is one OCR word. Confidence is on Tesseract's 0..100 scale.
type RecognizedWord struct {
	Text       string  `json:"text"`
	Box        BBox    `json:"box"`
	Confidence float64 `json:"confidence"`
}

// PageWords is the flat recognizer output for one page.
type PageWords struct {
	Index          int
	Words          []RecognizedWord
	MeanConfidence float64
}

// Page is one rasterized page.
type Page struct {
	Index  int
	Width  int
	Height int
	Image  image.Image
}

// PreparedPage is a page after preprocessing, ready for recognition.
type PreparedPage struct {
	Index  int
	Width  int
	Height int
	Gray   *image.Gray
	PNG    []byte
}

// VisualLine approximates one printed table row, words ordered left to right.
type VisualLine struct {
	Words []RecognizedWord
}

// Text joins the line's words with single spaces.
func (l VisualLine) Text() string {
	parts := make([]string, len(l.Words))
	for i, w := range l.Words {
		parts[i] = w.Text
	}
	return strings.Join(parts, " ")
}

// CenterY is the mean vertical center of the line's words.
func (l VisualLine) CenterY() float64 {
	if len(l.Words) == 0 {
		return 0
	}
	var sum float64
	for _, w := range l.Words {
		sum += w.Box.CenterY()
	}
	return sum / float64(len(l.Words))
}

// AverageWordHeight returns the mean box height, or 0 for no words.
func AverageWordHeight(words []RecognizedWord) float64 {
	if len(words) == 0 {
		return 0
	}
	var sum float64
	for _, w := range words {
		sum += w.Box.Height()
	}
	return sum / float64(len(words))
}
