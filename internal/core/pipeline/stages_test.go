package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/labreport-import/constants"
	"github.com/joseph-ayodele/labreport-import/internal/common"
	"github.com/joseph-ayodele/labreport-import/internal/core/extract"
	"github.com/joseph-ayodele/labreport-import/internal/core/ocr"
)

func doc(pages int) *Document {
	d := &Document{}
	for i := 0; i < pages; i++ {
		d.Pages = append(d.Pages, ocr.PreparedPage{Index: i, PNG: []byte("png")})
	}
	return d
}

func TestVisionStage_MapsRows(t *testing.T) {
	client := &fakeVision{reply: `{"rows":[
		{"name":"Тестостерон общий","result":24.67,"unit":"нмоль/л","reference":"8.33-30.19"},
		{"name":"Тестостерон","result":"12.0"},
		{"name":"Ферритин","result":"Выполняется"},
		{"name":"Ферритин","result":"55"},
		{"name":"Глюкоза","result":"55,0"},
		{"name":"Глюкоза","result":"<0.5"},
		{"name":"Кальцитонин","result":"3.1","unit":"пг/мл"}
	],"date":"2024-02-10"}`}
	out := newVisionStage(client).Run(context.Background(), doc(1))

	require.Equal(t, constants.OutcomeHasValues, out.Status)
	res := out.Result
	assert.Equal(t, map[constants.CanonicalKey]float64{constants.Testosterone: 24.67}, res.Values)
	assert.Equal(t, []string{extract.PendingNote("Ферритин"), "Кальцитонин: 3.1 пг/мл"}, res.UnrecognizedItems)
	assert.Equal(t, time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC), res.ReportDate)
	assert.Equal(t, constants.StrategyVision, res.Strategy)
	assert.Contains(t, client.prompt, "Глюкоза")
}

func TestVisionStage_MalformedReply(t *testing.T) {
	out := newVisionStage(&fakeVision{reply: `{"rows": "none"}`}).Run(context.Background(), doc(1))
	assert.Equal(t, constants.OutcomeError, out.Status)
	assert.True(t, errors.Is(out.Err, common.ErrMalformedReply))
}

func TestVisionStage_NoRowsDefaultsDate(t *testing.T) {
	out := newVisionStage(&fakeVision{reply: `{"rows":[]}`}).Run(context.Background(), doc(1))
	assert.Equal(t, constants.OutcomeNoValues, out.Status)
	assert.Equal(t, fixedNow, out.Result.ReportDate)
}

func TestVisionStage_NilClient(t *testing.T) {
	out := NewVisionStage(nil, nil).Run(context.Background(), doc(1))
	assert.True(t, errors.Is(out.Err, common.ErrNotConfigured))
}

func TestOCRStage_PageErrorIsNoted(t *testing.T) {
	closed := false
	rec := &fakeRecognizer{
		pages:  map[int][]ocr.RecognizedWord{1: rows(line(100, "Холестерин", "общий"), line(130, "5.2"))},
		errs:   map[int]error{0: errors.New("tesseract exploded")},
		closed: &closed,
	}
	out := newOCRStage(rec).Run(context.Background(), doc(2))

	require.Equal(t, constants.OutcomeHasValues, out.Status)
	assert.InDelta(t, 5.2, out.Result.Values[constants.Cholesterol], 1e-9)
	assert.Contains(t, out.Result.UnrecognizedItems, "page 1: tesseract exploded")
	assert.True(t, closed)
}

func TestOCRStage_AllPagesFail(t *testing.T) {
	closed := false
	rec := &fakeRecognizer{errs: map[int]error{0: errors.New("x")}, closed: &closed}
	out := newOCRStage(rec).Run(context.Background(), doc(1))
	assert.Equal(t, constants.OutcomeError, out.Status)
	assert.True(t, closed)
}

func TestOCRStage_AssetFailure(t *testing.T) {
	s := NewOCRStage(fakeFactory{err: common.TransientService("tessdata download failed", errors.New("502"))},
		extract.NewDocumentExtractor(extract.DefaultTuning(), nil), nil)
	out := s.Run(context.Background(), doc(1))
	assert.Equal(t, constants.OutcomeError, out.Status)
	assert.True(t, errors.Is(out.Err, common.ErrTransientService))
}
