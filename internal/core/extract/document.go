package extract

import (
	"context"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/labreport-import/constants"
	"github.com/joseph-ayodele/labreport-import/internal/common"
	"github.com/joseph-ayodele/labreport-import/internal/core/fields"
	"github.com/joseph-ayodele/labreport-import/internal/core/ocr"
	"github.com/joseph-ayodele/labreport-import/internal/entity"
)

// Tuning holds the layout multipliers, all relative to a page's average word height.
type Tuning struct {
	LineTolerance      float64
	ParallelTolerance  float64
	NextLineTolerance  float64
	RescueTolerance    float64
	NextLinesLookahead int
	RescueLookback     int
}

func DefaultTuning() Tuning {
	return Tuning{
		LineTolerance:      0.5,
		ParallelTolerance:  2,
		NextLineTolerance:  3,
		RescueTolerance:    10,
		NextLinesLookahead: 3,
		RescueLookback:     5,
	}
}

// TuningFromConfig maps the extraction settings onto a Tuning, keeping
// defaults for unset values.
func TuningFromConfig(cfg common.ExtractConfig) Tuning {
	t := DefaultTuning()
	if cfg.LineTolerance > 0 {
		t.LineTolerance = cfg.LineTolerance
	}
	if cfg.ParallelTolerance > 0 {
		t.ParallelTolerance = cfg.ParallelTolerance
	}
	if cfg.NextLineTolerance > 0 {
		t.NextLineTolerance = cfg.NextLineTolerance
	}
	if cfg.RescueTolerance > 0 {
		t.RescueTolerance = cfg.RescueTolerance
	}
	if cfg.NextLinesLookahead > 0 {
		t.NextLinesLookahead = cfg.NextLinesLookahead
	}
	if cfg.RescueLookback > 0 {
		t.RescueLookback = cfg.RescueLookback
	}
	return t
}

// DocumentExtractor turns recognized words into an ExtractionResult.
type DocumentExtractor struct {
	matcher   *fields.Matcher
	validator *fields.Validator
	tuning    Tuning
	logger    *slog.Logger
	now       func() time.Time
}

func NewDocumentExtractor(tuning Tuning, logger *slog.Logger) *DocumentExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &DocumentExtractor{
		matcher:   fields.NewMatcher(),
		validator: fields.NewValidator(),
		tuning:    tuning,
		logger:    logger,
		now:       time.Now,
	}
}

// docState is shared by every page of one document.
type docState struct {
	res      entity.ExtractionResult
	reserved map[constants.CanonicalKey]bool // pending on the report
}

func (s *docState) skip(k constants.CanonicalKey) bool {
	return s.res.Has(k) || s.reserved[k]
}

// Extract runs the main pass and the rescue pass over each page in order.
// Values found on earlier pages win. A report date is always set; when the
// text has none the extraction time is used.
func (e *DocumentExtractor) Extract(ctx context.Context, pages []ocr.PageWords) (entity.ExtractionResult, error) {
	logger := common.Logger(ctx, e.logger)
	st := &docState{res: entity.NewExtractionResult(), reserved: map[constants.CanonicalKey]bool{}}
	st.res.Strategy = constants.StrategyOCR

	var texts []string
	for _, pw := range pages {
		if err := ctx.Err(); err != nil {
			return st.res, err
		}
		lines := ocr.BuildLines(pw.Words, e.tuning.LineTolerance)
		infos := describe(lines, e.matcher)
		avgH := ocr.AverageWordHeight(pw.Words)
		consumed := make([]bool, len(infos))

		matched := e.mainPass(logger, st, infos, consumed, avgH)
		rescued := e.rescuePass(logger, st, infos, consumed, avgH)

		for _, li := range infos {
			texts = append(texts, li.text())
		}
		logger.Info("extract.page.done",
			"page", pw.Index+1,
			"lines", len(infos),
			"words", len(pw.Words),
			"matched", matched,
			"rescued", rescued,
			"mean_confidence", pw.MeanConfidence,
		)
	}

	if d, ok := DetectReportDate(texts); ok {
		st.res.ReportDate = d
	} else {
		st.res.ReportDate = e.now()
	}
	return st.res, nil
}

func (e *DocumentExtractor) mainPass(logger *slog.Logger, st *docState, infos []*lineInfo, consumed []bool, avgH float64) int {
	accepted := 0
	for i, li := range infos {
		if consumed[i] {
			continue
		}
		m, ok := e.matcher.MatchNormalized(li.norm, st.skip)
		if !ok {
			continue
		}
		key := m.Field.Key
		nameWord := li.wordAt(m.End)

		if li.pending {
			st.reserved[key] = true
			st.res.AddUnrecognized(PendingNote(m.Field.Label))
			consumed[i] = true
			logger.Info("extract.field.pending", "key", key)
			continue
		}

		in := &cascadeInput{
			lines:     infos,
			idx:       i,
			nameWord:  nameWord,
			nameEndX:  li.line.Words[nameWord].Box.X2,
			key:       key,
			avgHeight: avgH,
			consumed:  consumed,
			tuning:    e.tuning,
			validator: e.validator,
		}
		found, finder, ok := runCascade(in)
		if !ok {
			// a value-less name followed by an in-progress marker
			if j := i + 1; j < len(infos) && !consumed[j] && !infos[j].named && infos[j].pending {
				st.reserved[key] = true
				st.res.AddUnrecognized(PendingNote(m.Field.Label))
				consumed[i], consumed[j] = true, true
				logger.Info("extract.field.pending", "key", key)
				continue
			}
			logger.Debug("extract.field.miss", "key", key, "line", li.text())
			continue
		}

		st.res.Accept(key, found.value)
		consumed[i] = true
		for _, j := range found.sources {
			consumed[j] = true
		}
		accepted++
		logger.Debug("extract.field.ok", "key", key, "value", found.value, "finder", finder)
	}
	return accepted
}

func (e *DocumentExtractor) rescuePass(logger *slog.Logger, st *docState, infos []*lineInfo, consumed []bool, avgH float64) int {
	rescued := 0
	for i, li := range infos {
		if consumed[i] || !li.hasValue() || li.pending {
			continue
		}
		in := &rescueInput{
			lines:     infos,
			idx:       i,
			avgHeight: avgH,
			tuning:    e.tuning,
			matcher:   e.matcher,
			validator: e.validator,
			skip:      st.skip,
		}
		var cands []rescueCandidate
		for _, f := range rescueFinders {
			cands = append(cands, f(in)...)
		}
		best, ok := pickRescue(cands, e.validator)
		if !ok {
			continue
		}
		st.res.Accept(best.key, best.value)
		consumed[i] = true
		rescued++
		logger.Debug("extract.field.rescued", "key", best.key, "name", best.label, "value", best.value, "distance", best.distance)
	}
	return rescued
}
