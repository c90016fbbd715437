package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joseph-ayodele/labreport-import/constants"
	"github.com/joseph-ayodele/labreport-import/internal/common"
	"github.com/joseph-ayodele/labreport-import/internal/core/extract"
	"github.com/joseph-ayodele/labreport-import/internal/core/fields"
	"github.com/joseph-ayodele/labreport-import/internal/core/llm"
	"github.com/joseph-ayodele/labreport-import/internal/entity"
)

// VisionStage sends every prepared page to a multimodal model in one request
// and maps the returned rows through the same matcher and validator as OCR.
type VisionStage struct {
	client    llm.VisionClient
	matcher   *fields.Matcher
	validator *fields.Validator
	logger    *slog.Logger
	now       func() time.Time
}

func NewVisionStage(client llm.VisionClient, logger *slog.Logger) *VisionStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &VisionStage{
		client:    client,
		matcher:   fields.NewMatcher(),
		validator: fields.NewValidator(),
		logger:    logger,
		now:       time.Now,
	}
}

func (s *VisionStage) Name() constants.Strategy { return constants.StrategyVision }

func (s *VisionStage) Run(ctx context.Context, doc *Document) Outcome {
	if s.client == nil {
		return errorOutcome(common.ErrNotConfigured)
	}
	images := make([][]byte, 0, len(doc.Pages))
	for _, p := range doc.Pages {
		images = append(images, p.PNG)
	}
	reply, err := s.client.Complete(ctx, llm.BuildExtractionPrompt(knownLabels()), images)
	if err != nil {
		return errorOutcome(err)
	}
	if err := ctx.Err(); err != nil {
		return errorOutcome(err)
	}
	parsed, err := llm.ParseReply(reply)
	if err != nil {
		common.Logger(ctx, s.logger).Warn("llm.vision.malformed_reply", "error", err, "reply_len", len(reply))
		return errorOutcome(err)
	}
	if len(parsed.Dropped) > 0 {
		common.Logger(ctx, s.logger).Warn("llm.vision.rows_dropped", "dropped", parsed.Dropped)
	}
	return resultOutcome(s.apply(ctx, parsed))
}

// apply maps reply rows onto canonical keys. Rows are taken in order and the
// first valid value for a key wins.
func (s *VisionStage) apply(ctx context.Context, reply llm.LabReply) entity.ExtractionResult {
	logger := common.Logger(ctx, s.logger)
	res := entity.NewExtractionResult()
	res.Strategy = constants.StrategyVision
	reserved := map[constants.CanonicalKey]bool{}
	skip := func(k constants.CanonicalKey) bool { return res.Has(k) || reserved[k] }

	for _, row := range reply.Rows {
		result := row.Result.String()
		m, ok := s.matcher.Match(row.Name, skip)
		if !ok {
			if _, known := s.matcher.Match(row.Name, nil); !known {
				res.AddUnrecognized(rowNote(row))
			}
			continue
		}
		key := m.Field.Key
		if extract.IsPending(result) {
			reserved[key] = true
			res.AddUnrecognized(extract.PendingNote(m.Field.Label))
			logger.Info("extract.field.pending", "key", key, "strategy", constants.StrategyVision)
			continue
		}
		v, ok := llm.NormalizeDecimal(result)
		if !ok {
			logger.Debug("extract.field.miss", "key", key, "result", result)
			continue
		}
		if !s.validator.Valid(key, v) {
			logger.Debug("extract.field.out_of_range", "key", key, "value", v)
			continue
		}
		res.Accept(key, v)
	}

	if d, ok := extract.ParseDate(reply.Date); ok {
		res.ReportDate = d
	} else {
		res.ReportDate = s.now()
	}
	logger.Info("llm.vision.mapped", "rows", len(reply.Rows), "values", len(res.Values), "unrecognized", len(res.UnrecognizedItems))
	return res
}

func rowNote(row llm.LabRow) string {
	return strings.TrimSpace(fmt.Sprintf("%s: %s %s", strings.TrimSpace(row.Name), row.Result, strings.TrimSpace(row.Unit)))
}

func knownLabels() []string {
	fs := fields.Fields()
	out := make([]string, 0, len(fs))
	for _, f := range fs {
		out = append(out, f.Label)
	}
	return out
}
