package pipeline

import (
	"context"
	"image"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/joseph-ayodele/labreport-import/constants"
	"github.com/joseph-ayodele/labreport-import/internal/core/extract"
	"github.com/joseph-ayodele/labreport-import/internal/core/ocr"
)

var fixedNow = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

type fakeSource struct {
	pages int
	err   error
}

func (f fakeSource) Rasterize(context.Context, []byte) ([]ocr.Page, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]ocr.Page, f.pages)
	for i := range out {
		out[i] = ocr.Page{Index: i, Width: 10, Height: 10, Image: image.NewGray(image.Rect(0, 0, 10, 10))}
	}
	return out, nil
}

// fakePrep skips binarization; stages only look at Index and PNG.
type fakePrep struct{}

func (fakePrep) PreparePages(_ context.Context, pages []ocr.Page) ([]ocr.PreparedPage, error) {
	out := make([]ocr.PreparedPage, len(pages))
	for i, p := range pages {
		out[i] = ocr.PreparedPage{Index: p.Index, Width: p.Width, Height: p.Height, PNG: []byte("\x89PNG\r\n\x1a\npage")}
	}
	return out, nil
}

type fakeStrategy struct {
	name  constants.Strategy
	out   Outcome
	panic bool
	calls atomic.Int32
}

func (f *fakeStrategy) Name() constants.Strategy { return f.name }

func (f *fakeStrategy) Run(context.Context, *Document) Outcome {
	f.calls.Add(1)
	if f.panic {
		panic("stage blew up")
	}
	return f.out
}

type fakeVision struct {
	reply  string
	err    error
	images int
	prompt string
}

func (f *fakeVision) Complete(_ context.Context, prompt string, images [][]byte) (string, error) {
	f.prompt, f.images = prompt, len(images)
	return f.reply, f.err
}

// fakeRecognizer returns canned words per page index.
type fakeRecognizer struct {
	pages  map[int][]ocr.RecognizedWord
	errs   map[int]error
	closed *bool
}

func (f *fakeRecognizer) Recognize(_ context.Context, p ocr.PreparedPage) (ocr.PageWords, error) {
	if err := f.errs[p.Index]; err != nil {
		return ocr.PageWords{}, err
	}
	return ocr.FilterByConfidence(p.Index, f.pages[p.Index], 60), nil
}

func (f *fakeRecognizer) Close() error {
	*f.closed = true
	return nil
}

type fakeFactory struct {
	rec *fakeRecognizer
	err error
}

func (f fakeFactory) NewRecognizer(context.Context) (ocr.Recognizer, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.rec, nil
}

// line lays out words left to right on one row at y.
func line(y int, texts ...string) []ocr.RecognizedWord {
	out := make([]ocr.RecognizedWord, 0, len(texts))
	x := 10
	for _, t := range texts {
		w := 12 * utf8.RuneCountInString(t)
		out = append(out, ocr.RecognizedWord{Text: t, Box: ocr.BBox{X1: x, Y1: y, X2: x + w, Y2: y + 20}, Confidence: 90})
		x += w + 10
	}
	return out
}

func rows(lines ...[]ocr.RecognizedWord) []ocr.RecognizedWord {
	var out []ocr.RecognizedWord
	for _, l := range lines {
		out = append(out, l...)
	}
	return out
}

func newOCRStage(rec *fakeRecognizer) *OCRStage {
	return NewOCRStage(fakeFactory{rec: rec}, extract.NewDocumentExtractor(extract.DefaultTuning(), nil), nil)
}

func newVisionStage(client *fakeVision) *VisionStage {
	s := NewVisionStage(client, nil)
	s.now = func() time.Time { return fixedNow }
	return s
}

func newProcessor(src PageSource, strategies ...Strategy) *Processor {
	p := NewProcessor(nil, src, fakePrep{}, time.Minute, strategies...)
	p.now = func() time.Time { return fixedNow }
	return p
}
