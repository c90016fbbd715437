package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/labreport-import/constants"
	"github.com/joseph-ayodele/labreport-import/internal/common"
	"github.com/joseph-ayodele/labreport-import/internal/core/ocr"
	"github.com/joseph-ayodele/labreport-import/internal/entity"
)

// PageSource turns PDF bytes into page bitmaps.
type PageSource interface {
	Rasterize(ctx context.Context, pdf []byte) ([]ocr.Page, error)
}

// PagePreparer produces the binarized pages every strategy reads.
type PagePreparer interface {
	PreparePages(ctx context.Context, pages []ocr.Page) ([]ocr.PreparedPage, error)
}

// Document is the request-scoped input shared by all strategies.
type Document struct {
	Label string
	Pages []ocr.PreparedPage
}

// Strategy is one extraction path.
type Strategy interface {
	Name() constants.Strategy
	Run(ctx context.Context, doc *Document) Outcome
}

// Outcome tags what a strategy produced. Result carries diagnostics even
// when Status is OutcomeNoValues or OutcomeError.
type Outcome struct {
	Status constants.OutcomeStatus
	Result entity.ExtractionResult
	Err    error
}

func errorOutcome(err error) Outcome {
	return Outcome{Status: constants.OutcomeError, Result: entity.NewExtractionResult(), Err: err}
}

func resultOutcome(res entity.ExtractionResult) Outcome {
	if res.HasValues() {
		return Outcome{Status: constants.OutcomeHasValues, Result: res}
	}
	return Outcome{Status: constants.OutcomeNoValues, Result: res}
}

// Processor rasterizes and preprocesses a document once, then tries each
// strategy in order until one produces a validated value.
type Processor struct {
	logger     *slog.Logger
	source     PageSource
	prep       PagePreparer
	strategies []Strategy
	timeout    time.Duration
	now        func() time.Time
}

func NewProcessor(logger *slog.Logger, source PageSource, prep PagePreparer, timeout time.Duration, strategies ...Strategy) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		logger:     logger,
		source:     source,
		prep:       prep,
		strategies: strategies,
		timeout:    timeout,
		now:        time.Now,
	}
}

// Extract never fails: unreadable documents, service outages and malformed
// model output all end up as entries in UnrecognizedItems.
func (p *Processor) Extract(ctx context.Context, pdf []byte, label string) entity.ExtractionResult {
	rid := uuid.New().String()
	ctx = common.WithLabel(common.WithRequestID(ctx, rid), label)
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	logger := common.Logger(ctx, p.logger)
	start := time.Now()
	logger.Info("pipeline.extract.start", "bytes", len(pdf), "strategies", len(p.strategies))

	doc, err := p.prepare(ctx, pdf, label)
	if err != nil {
		logger.Error("pipeline.extract.fatal", "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		res := entity.NewExtractionResult()
		res.ReportDate = p.now()
		res.AddUnrecognized(documentNote(err))
		return res
	}

	var diagnostics entity.ExtractionResult
	var reportDate time.Time
	for _, s := range p.strategies {
		if err := ctx.Err(); err != nil {
			diagnostics.AddUnrecognized(fmt.Sprintf("%s: %v", s.Name(), err))
			break
		}
		out := p.run(ctx, s, doc)
		logger.Info("pipeline.strategy.done",
			"strategy", s.Name(),
			"status", out.Status,
			"values", len(out.Result.Values),
			"error", out.Err,
		)
		if out.Status == constants.OutcomeHasValues {
			logger.Info("pipeline.extract.ok",
				"strategy", s.Name(),
				"values", len(out.Result.Values),
				"unrecognized", len(out.Result.UnrecognizedItems),
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
			return out.Result
		}
		diagnostics.MergeDiagnostics(out.Result)
		if out.Err != nil {
			diagnostics.AddUnrecognized(fmt.Sprintf("%s: %v", s.Name(), out.Err))
		}
		if reportDate.IsZero() {
			reportDate = out.Result.ReportDate
		}
	}

	res := entity.NewExtractionResult()
	res.MergeDiagnostics(diagnostics)
	res.ReportDate = reportDate
	if res.ReportDate.IsZero() {
		res.ReportDate = p.now()
	}
	logger.Warn("pipeline.extract.no_values",
		"unrecognized", len(res.UnrecognizedItems),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res
}

func (p *Processor) prepare(ctx context.Context, pdf []byte, label string) (doc *Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("pipeline.prepare.panic", "panic", r, "stack", string(debug.Stack()))
			err = common.FatalDocument("page preparation panicked", fmt.Errorf("%v", r))
		}
	}()
	pages, err := p.source.Rasterize(ctx, pdf)
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, common.FatalDocument("document has no pages", nil)
	}
	prepared, err := p.prep.PreparePages(ctx, pages)
	if err != nil {
		return nil, err
	}
	return &Document{Label: label, Pages: prepared}, nil
}

func (p *Processor) run(ctx context.Context, s Strategy, doc *Document) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			common.Logger(ctx, p.logger).Error("pipeline.strategy.panic",
				"strategy", s.Name(), "panic", r, "stack", string(debug.Stack()))
			out = errorOutcome(fmt.Errorf("internal error: %v", r))
		}
	}()
	out = s.Run(ctx, doc)
	if out.Result.Values == nil {
		out.Result.Values = make(map[constants.CanonicalKey]float64)
	}
	return out
}

func documentNote(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return fmt.Sprintf("document: extraction stopped: %v", err)
	case errors.Is(err, common.ErrFatalDocument):
		return fmt.Sprintf("document: not a readable PDF: %v", err)
	default:
		return fmt.Sprintf("document: %v", err)
	}
}
