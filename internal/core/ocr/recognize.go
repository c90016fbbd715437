package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Whitelist covers Cyrillic and Latin letters, digits and the punctuation lab
// reports use in values, ranges and units.
const Whitelist = "АБВГДЕЁЖЗИЙКЛМНОПРСТУФХЦЧШЩЪЫЬЭЮЯабвгдеёжзийклмнопрстуфхцчшщъыьэюя" +
	"ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz" +
	"0123456789.,-%<>≤≥()/"

// Recognizer turns a prepared page into words with boxes and confidences.
type Recognizer interface {
	Recognize(ctx context.Context, page PreparedPage) (PageWords, error)
	Close() error
}

// RecognizerFactory opens a recognizer for the duration of one extraction call.
type RecognizerFactory interface {
	NewRecognizer(ctx context.Context) (Recognizer, error)
}

type TesseractConfig struct {
	Languages         []string
	MinWordConfidence float64 // words below this (0..100) are dropped
}

// TesseractFactory builds gosseract-backed recognizers, making sure the
// language data is present first.
type TesseractFactory struct {
	cfg    TesseractConfig
	assets *AssetStore
	logger *slog.Logger
}

func NewTesseractFactory(cfg TesseractConfig, assets *AssetStore, logger *slog.Logger) *TesseractFactory {
	if logger == nil {
		logger = slog.Default()
	}
	if len(cfg.Languages) == 0 {
		cfg.Languages = []string{"rus", "eng"}
	}
	return &TesseractFactory{cfg: cfg, assets: assets, logger: logger}
}

func (f *TesseractFactory) NewRecognizer(ctx context.Context) (Recognizer, error) {
	dir, err := f.assets.Ensure(ctx, f.cfg.Languages...)
	if err != nil {
		return nil, err
	}

	client := gosseract.NewClient()
	if err := client.SetTessdataPrefix(dir); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("set tessdata prefix: %w", err)
	}
	if err := client.SetLanguage(f.cfg.Languages...); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("set languages: %w", err)
	}
	if err := client.SetWhitelist(Whitelist); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("set whitelist: %w", err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_AUTO); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("set page seg mode: %w", err)
	}
	return &tesseractRecognizer{client: client, minConf: f.cfg.MinWordConfidence, logger: f.logger}, nil
}

type tesseractRecognizer struct {
	client  *gosseract.Client
	minConf float64
	logger  *slog.Logger
}

func (r *tesseractRecognizer) Recognize(ctx context.Context, page PreparedPage) (PageWords, error) {
	if err := ctx.Err(); err != nil {
		return PageWords{}, err
	}
	if err := r.client.SetImageFromBytes(page.PNG); err != nil {
		return PageWords{}, fmt.Errorf("set image: %w", err)
	}
	boxes, err := r.client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return PageWords{}, fmt.Errorf("recognize page %d: %w", page.Index+1, err)
	}

	words := make([]RecognizedWord, 0, len(boxes))
	for _, b := range boxes {
		text := strings.TrimSpace(b.Word)
		if text == "" {
			continue
		}
		words = append(words, RecognizedWord{
			Text:       text,
			Box:        BBox{X1: b.Box.Min.X, Y1: b.Box.Min.Y, X2: b.Box.Max.X, Y2: b.Box.Max.Y},
			Confidence: b.Confidence,
		})
	}
	out := FilterByConfidence(page.Index, words, r.minConf)

	r.logger.Info("ocr.recognize.page",
		"page", page.Index+1,
		"words_total", len(words),
		"words_kept", len(out.Words),
		"mean_confidence", fmt.Sprintf("%.1f", out.MeanConfidence),
	)
	return out, nil
}

func (r *tesseractRecognizer) Close() error {
	return r.client.Close()
}

// FilterByConfidence drops words under minConf and computes the mean
// confidence over all recognized words.
func FilterByConfidence(index int, words []RecognizedWord, minConf float64) PageWords {
	out := PageWords{Index: index, Words: make([]RecognizedWord, 0, len(words))}
	var sum float64
	for _, w := range words {
		sum += w.Confidence
		if w.Confidence < minConf {
			continue
		}
		out.Words = append(out.Words, w)
	}
	if len(words) > 0 {
		out.MeanConfidence = sum / float64(len(words))
	}
	return out
}
