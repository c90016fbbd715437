package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/labreport-import/constants"
	"github.com/joseph-ayodele/labreport-import/internal/common"
	"github.com/joseph-ayodele/labreport-import/internal/core/extract"
	"github.com/joseph-ayodele/labreport-import/internal/core/ocr"
	"github.com/joseph-ayodele/labreport-import/internal/entity"
)

func hasEntry(items []string, substr string) bool {
	for _, it := range items {
		if strings.Contains(it, substr) {
			return true
		}
	}
	return false
}

func TestProcessor_VisionCommaDecimal(t *testing.T) {
	client := &fakeVision{reply: `Sure! {"rows":[{"name":"Глюкоза","result":"5,5"}]}`}
	ocrStage := &fakeStrategy{name: constants.StrategyOCR}
	p := newProcessor(fakeSource{pages: 2}, newVisionStage(client), ocrStage)

	res := p.Extract(context.Background(), []byte("%PDF"), "checkup")

	assert.InDelta(t, 5.5, res.Values[constants.Glucose], 1e-9)
	assert.Equal(t, constants.StrategyVision, res.Strategy)
	assert.Equal(t, 2, client.images)
	assert.Zero(t, ocrStage.calls.Load())
}

func TestProcessor_FallsBackToOCROnTransientError(t *testing.T) {
	client := &fakeVision{err: common.TransientService("vision model unavailable", errors.New("dial tcp: refused"))}
	closed := false
	rec := &fakeRecognizer{
		pages:  map[int][]ocr.RecognizedWord{0: rows(line(100, "Глюкоза", "5.1", "ммоль/л", "3.3-5.5"))},
		closed: &closed,
	}
	p := newProcessor(fakeSource{pages: 1}, newVisionStage(client), newOCRStage(rec))

	res := p.Extract(context.Background(), []byte("%PDF"), "")

	assert.InDelta(t, 5.1, res.Values[constants.Glucose], 1e-9)
	assert.Equal(t, constants.StrategyOCR, res.Strategy)
	assert.Empty(t, res.UnrecognizedItems)
	assert.True(t, closed)
}

func TestProcessor_FatalDocument(t *testing.T) {
	s := &fakeStrategy{name: constants.StrategyOCR}
	p := newProcessor(fakeSource{err: common.FatalDocument("pdf validation failed", errors.New("no header"))}, s)

	res := p.Extract(context.Background(), []byte("garbage"), "")

	assert.Empty(t, res.Values)
	require.Len(t, res.UnrecognizedItems, 1)
	assert.Contains(t, res.UnrecognizedItems[0], "not a readable PDF")
	assert.Equal(t, fixedNow, res.ReportDate)
	assert.Equal(t, constants.StrategyNone, res.Strategy)
	assert.Zero(t, s.calls.Load())
}

func TestProcessor_NoPages(t *testing.T) {
	p := newProcessor(fakeSource{pages: 0}, &fakeStrategy{name: constants.StrategyOCR})
	res := p.Extract(context.Background(), nil, "")
	assert.Empty(t, res.Values)
	assert.True(t, hasEntry(res.UnrecognizedItems, "no pages"))
}

func TestProcessor_PanicBecomesDiagnostic(t *testing.T) {
	good := entity.NewExtractionResult()
	good.Accept(constants.TSH, 2.1)
	p := newProcessor(fakeSource{pages: 1},
		&fakeStrategy{name: constants.StrategyVision, panic: true},
		&fakeStrategy{name: constants.StrategyOCR, out: Outcome{Status: constants.OutcomeHasValues, Result: good}},
	)

	res := p.Extract(context.Background(), []byte("%PDF"), "")

	assert.Equal(t, 2.1, res.Values[constants.TSH])
}

func TestProcessor_NoValuesMergesDiagnostics(t *testing.T) {
	client := &fakeVision{reply: "I cannot read this scan."}
	closed := false
	rec := &fakeRecognizer{
		pages: map[int][]ocr.RecognizedWord{0: rows(
			line(100, "Глюкоза", "Выполняется"),
			line(200, "Дата", "взятия:", "05.03.2024"),
		)},
		closed: &closed,
	}
	p := newProcessor(fakeSource{pages: 1}, newVisionStage(client), newOCRStage(rec))

	res := p.Extract(context.Background(), []byte("%PDF"), "")

	assert.Empty(t, res.Values)
	assert.Equal(t, constants.StrategyNone, res.Strategy)
	assert.Contains(t, res.UnrecognizedItems, extract.PendingNote("Глюкоза"))
	assert.True(t, hasEntry(res.UnrecognizedItems, "vision:"))
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), res.ReportDate)
}

func TestProcessor_AllStrategiesEmpty(t *testing.T) {
	p := newProcessor(fakeSource{pages: 1},
		&fakeStrategy{name: constants.StrategyVision, out: errorOutcome(common.ErrNotConfigured)},
		&fakeStrategy{name: constants.StrategyOCR, out: resultOutcome(entity.NewExtractionResult())},
	)
	res := p.Extract(context.Background(), []byte("%PDF"), "")
	assert.Empty(t, res.Values)
	assert.Equal(t, []string{"vision: not configured"}, res.UnrecognizedItems)
	assert.Equal(t, fixedNow, res.ReportDate)
}

func TestProcessor_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := &fakeStrategy{name: constants.StrategyOCR}
	p := newProcessor(fakeSource{pages: 1}, s)

	res := p.Extract(ctx, []byte("%PDF"), "")

	assert.Empty(t, res.Values)
	assert.True(t, hasEntry(res.UnrecognizedItems, "context canceled"))
	assert.Zero(t, s.calls.Load())
}
