package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/labreport-import/constants"
	"github.com/joseph-ayodele/labreport-import/internal/common"
	"github.com/joseph-ayodele/labreport-import/internal/core/extract"
	"github.com/joseph-ayodele/labreport-import/internal/core/ocr"
)

// OCRStage recognizes words locally and runs the layout extractor over them.
type OCRStage struct {
	factory   ocr.RecognizerFactory
	extractor *extract.DocumentExtractor
	logger    *slog.Logger
}

func NewOCRStage(factory ocr.RecognizerFactory, extractor *extract.DocumentExtractor, logger *slog.Logger) *OCRStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &OCRStage{factory: factory, extractor: extractor, logger: logger}
}

func (s *OCRStage) Name() constants.Strategy { return constants.StrategyOCR }

// Run creates one recognizer for this document and closes it afterwards.
// A page that fails to recognize is noted and skipped.
func (s *OCRStage) Run(ctx context.Context, doc *Document) Outcome {
	logger := common.Logger(ctx, s.logger)
	rec, err := s.factory.NewRecognizer(ctx)
	if err != nil {
		return errorOutcome(err)
	}
	defer func() {
		if cerr := rec.Close(); cerr != nil {
			logger.Warn("ocr.recognizer.close_error", "error", cerr)
		}
	}()

	var notes []string
	pages := make([]ocr.PageWords, 0, len(doc.Pages))
	for _, p := range doc.Pages {
		if err := ctx.Err(); err != nil {
			return errorOutcome(err)
		}
		pw, err := rec.Recognize(ctx, p)
		if err != nil {
			if ctx.Err() != nil {
				return errorOutcome(ctx.Err())
			}
			logger.Warn("ocr.recognize.page_error", "page", p.Index+1, "error", err)
			notes = append(notes, fmt.Sprintf("page %d: %v", p.Index+1, err))
			continue
		}
		pages = append(pages, pw)
	}
	if len(pages) == 0 && len(doc.Pages) > 0 {
		return errorOutcome(errors.New("no page could be recognized"))
	}

	res, err := s.extractor.Extract(ctx, pages)
	if err != nil {
		return errorOutcome(err)
	}
	for _, n := range notes {
		res.AddUnrecognized(n)
	}
	return resultOutcome(res)
}
