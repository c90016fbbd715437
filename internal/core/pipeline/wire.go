package pipeline

import (
	"log/slog"

	"github.com/joseph-ayodele/labreport-import/internal/common"
	"github.com/joseph-ayodele/labreport-import/internal/core/extract"
	"github.com/joseph-ayodele/labreport-import/internal/core/llm/openai"
	"github.com/joseph-ayodele/labreport-import/internal/core/ocr"
)

// NewFromConfig assembles the production processor. The vision strategy is
// included only when an API key is configured.
func NewFromConfig(cfg *common.Config, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	raster := ocr.NewRasterizer(ocr.RasterConfig{
		Pdftoppm: cfg.OCR.Pdftoppm,
		DPI:      cfg.OCR.DPI,
		MaxPages: cfg.OCR.MaxPages,
	}, nil, logger)
	prep := ocr.NewPreprocessor(ocr.PreprocessOptions{}, logger)
	assets := ocr.NewAssetStore(ocr.AssetConfig{
		Dir:     cfg.OCR.TessdataDir,
		BaseURL: cfg.OCR.TessdataURL,
		Timeout: cfg.OCR.TessdataTimeout,
	}, nil, logger)
	factory := ocr.NewTesseractFactory(ocr.TesseractConfig{
		Languages:         cfg.OCR.Languages,
		MinWordConfidence: cfg.OCR.MinWordConfidence,
	}, assets, logger)

	var strategies []Strategy
	if cfg.Vision.Enabled() {
		client := openai.NewClient(openai.ConfigFromVision(cfg.Vision), logger)
		strategies = append(strategies, NewVisionStage(client, logger))
	} else {
		logger.Info("pipeline.vision.disabled", "reason", "VISION_API_KEY not set")
	}
	extractor := extract.NewDocumentExtractor(extract.TuningFromConfig(cfg.Extract), logger)
	strategies = append(strategies, NewOCRStage(factory, extractor, logger))

	return NewProcessor(logger, raster, prep, cfg.Extract.Timeout, strategies...)
}
